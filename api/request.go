package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Request describes one API call. Endpoint is appended verbatim to the
// configured base URL.
type Request struct {
	Method   string
	Endpoint string

	// Body is sent as JSON. []byte and json.RawMessage go out unchanged.
	Body any

	// Header is merged under the Authorization and Content-Type headers the
	// client sets itself.
	Header http.Header
}

func (r Request) method() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(r.Method)
}

func (r Request) payload() ([]byte, error) {
	switch b := r.Body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	default:
		return json.Marshal(b)
	}
}

func mutates(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}
