package auth

import (
	"strings"

	clienterrors "github.com/jrsteele09/lakehouse-client/internal/errors"
	"github.com/jrsteele09/lakehouse-client/internal/utils"
	"github.com/jrsteele09/lakehouse-client/session"
)

// TokenResponse is the body returned by /auth/login and /auth/refresh.
type TokenResponse struct {
	// AccessToken is the short-lived JWT sent as "Authorization: Bearer <access_token>".
	AccessToken *string `json:"access_token,omitempty"`

	// RefreshToken is normally absent: the server keeps it in an HTTP-only cookie.
	RefreshToken *string `json:"refresh_token,omitempty"`

	// TokenType is "Bearer".
	TokenType string `json:"token_type,omitempty"`

	// Email is the refresh endpoint's name for the address; login sends UserEmail.
	Email     *string `json:"email,omitempty"`
	UserEmail *string `json:"user_email,omitempty"`

	UserID   *string `json:"user_id,omitempty"`
	UserRole *string `json:"user_role,omitempty"`
}

// Session maps the response onto all six session fields. A body without an
// access token is malformed; the caller must not treat it as a session.
func (r TokenResponse) Session() (session.Session, error) {
	accessToken := strings.TrimSpace(utils.Value(r.AccessToken))
	if accessToken == "" {
		return session.Session{}, clienterrors.Wrapf(ErrMalformedResponse, "missing access_token")
	}

	email := utils.Value(r.Email)
	if email == "" {
		email = utils.Value(r.UserEmail)
	}

	return session.Session{
		Email:        email,
		Role:         utils.Value(r.UserRole),
		UserID:       utils.Value(r.UserID),
		AccessToken:  accessToken,
		RefreshToken: utils.Value(r.RefreshToken),
		TokenType:    r.TokenType,
	}, nil
}
