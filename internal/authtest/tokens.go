package authtest

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

type tokenIssuer struct {
	key []byte
	ttl time.Duration
}

func newTokenIssuer() *tokenIssuer {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic(fmt.Sprintf("authtest: signing key: %v", err))
	}
	return &tokenIssuer{key: key, ttl: 15 * time.Minute}
}

// accessToken signs a short-lived HS256 token carrying the claims the real
// backend puts in its tokens.
func (ti *tokenIssuer) accessToken(u User) (string, error) {
	now := NowTimeFunc()
	claims := jwtlib.MapClaims{
		"sub":        u.Email,
		"user_email": u.Email,
		"user_id":    u.ID,
		"user_role":  u.Role,
		"iat":        now.Unix(),
		"exp":        now.Add(ti.ttl).Unix(),
		"jti":        uuid.NewString(),
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(ti.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signed, nil
}

// verify checks signature and expiry.
func (ti *tokenIssuer) verify(raw string) error {
	_, err := jwtlib.Parse(raw, func(t *jwtlib.Token) (interface{}, error) {
		return ti.key, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}), jwtlib.WithTimeFunc(NowTimeFunc))
	return err
}

func refreshToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("authtest: refresh token: %v", err))
	}
	return hex.EncodeToString(b)
}

// IssueAccessToken mints a valid access token for a registered user,
// bypassing login.
func (s *Server) IssueAccessToken(email string) (string, error) {
	u, ok := s.user(email)
	if !ok {
		return "", fmt.Errorf("authtest: unknown user %q", email)
	}
	raw, err := s.issuer.accessToken(u)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.accessTokens[raw] = true
	s.mu.Unlock()
	return raw, nil
}

// ExpiredAccessToken signs a token for email whose exp is already past. The
// server does not accept it.
func (s *Server) ExpiredAccessToken(email string) (string, error) {
	u, ok := s.user(email)
	if !ok {
		return "", fmt.Errorf("authtest: unknown user %q", email)
	}
	expired := &tokenIssuer{key: s.issuer.key, ttl: -time.Minute}
	return expired.accessToken(u)
}
