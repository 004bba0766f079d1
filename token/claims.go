package token

import (
	"encoding/json"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	clienterrors "github.com/jrsteele09/lakehouse-client/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Claims is the subset of an access token payload the client looks at.
// Nothing here is verified; the server remains the only authority.
type Claims struct {
	Subject   string   // sub
	Email     string   // user_email
	UserID    string   // user_id
	Role      string   // user_role
	ExpiresAt *int64   // exp, seconds since epoch
	IssuedAt  *int64   // iat
	Audience  []string // aud
}

// Expired reports whether the claimed expiry lies in the past. A token
// without an expiry claim is treated as expired.
func (c *Claims) Expired() bool {
	if c == nil || c.ExpiresAt == nil {
		return true
	}
	now := float64(NowTimeFunc().UnixNano()) / float64(time.Second)
	return float64(*c.ExpiresAt) < now
}

// Expiry returns the claimed expiry as a time, or the zero time when absent.
func (c *Claims) Expiry() time.Time {
	if c == nil || c.ExpiresAt == nil {
		return time.Time{}
	}
	return time.Unix(*c.ExpiresAt, 0)
}

// Inspect decodes the payload of a compact JWS without checking its header
// or signature.
func Inspect(rawToken string) (*Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, clienterrors.ErrMalformedToken
	}

	// only the payload segment is read; the header is never consulted
	parts := strings.Split(rawToken, ".")
	if len(parts) != 3 {
		return nil, clienterrors.Wrapf(clienterrors.ErrMalformedToken, "%d segments", len(parts))
	}

	payload, err := jwtlib.NewParser().DecodeSegment(parts[1])
	if err != nil {
		return nil, clienterrors.Wrapf(clienterrors.ErrMalformedToken, "decode payload (%v)", err)
	}

	mapClaims := jwtlib.MapClaims{}
	if err := json.Unmarshal(payload, &mapClaims); err != nil {
		return nil, clienterrors.Wrapf(clienterrors.ErrMalformedToken, "unmarshal payload (%v)", err)
	}

	claims := &Claims{}
	claims.Subject, _ = mapClaims.GetSubject()
	claims.Email, _ = mapClaims["user_email"].(string)
	claims.UserID, _ = mapClaims["user_id"].(string)
	claims.Role, _ = mapClaims["user_role"].(string)
	claims.Audience, _ = mapClaims.GetAudience()

	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		v := iat.Unix()
		claims.IssuedAt = &v
	}

	exp, err := mapClaims.GetExpirationTime()
	if err != nil {
		return claims, clienterrors.Wrapf(clienterrors.ErrMissingExpiry, "exp (%v)", err)
	}
	if exp == nil {
		return claims, clienterrors.ErrMissingExpiry
	}
	v := exp.Unix()
	claims.ExpiresAt = &v

	return claims, nil
}
