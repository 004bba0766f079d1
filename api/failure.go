package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// RequestFailure is returned when the API answers outside the 2xx range,
// after any retry has been made.
type RequestFailure struct {
	Status     int
	StatusText string
	Body       string

	Method string
	URL    string
}

func (f *RequestFailure) Error() string {
	msg := fmt.Sprintf("API request failed: %d %s", f.Status, f.StatusText)
	if body := strings.TrimSpace(f.Body); body != "" {
		msg += ": " + body
	}
	return msg
}

// Unauthorized reports whether the failure is a 401 that renewal could not
// recover from.
func (f *RequestFailure) Unauthorized() bool {
	return f.Status == 401
}

// statusText is the reason phrase the server sent, or the standard one when
// the status line carried none.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		return http.StatusText(resp.StatusCode)
	}
	return text
}
