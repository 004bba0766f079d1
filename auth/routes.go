package auth

// Authentication endpoints, relative to the API base URL.
const (
	RouteAuthLogin   = "/auth/login"
	RouteAuthRefresh = "/auth/refresh"
	RouteAuthLogout  = "/auth/logout"
)

// RefreshCookieName is the HTTP-only cookie the server uses to authorize renewal.
const RefreshCookieName = "refresh_token"
