package navigation

import (
	"net/url"
	"strings"
)

const (
	RouteHome      = "/"
	RouteLogin     = "/login"
	RouteCatalog   = "/catalog"
	RouteSettings  = "/settings"
	RoutePassports = "/passports"
)

// Routes lists the application's pages. Paths outside the list are still
// guarded.
var Routes = []string{RouteHome, RouteLogin, RouteCatalog, RouteSettings, RoutePassports}

// normalize reduces a navigation target to its path, so "/login?next=x" and
// "/login/" both count as the login page.
func normalize(target string) string {
	target = strings.TrimSpace(target)
	if u, err := url.Parse(target); err == nil {
		target = u.Path
	}
	if target == "" {
		return RouteHome
	}
	if !strings.HasPrefix(target, "/") {
		target = "/" + target
	}
	if len(target) > 1 {
		target = strings.TrimRight(target, "/")
		if target == "" {
			return RouteHome
		}
	}
	return target
}

func isLogin(target string) bool {
	return normalize(target) == RouteLogin
}
