package session

import (
	"github.com/jrsteele09/lakehouse-client/token"
	"golang.org/x/oauth2"
)

// TokenSource exposes the shared session as an oauth2.TokenSource, so code
// built on oauth2.NewClient or oauth2.Transport sends the same bearer token
// the dispatcher does. It never renews; a stale token is still returned and
// left for the server to reject.
type TokenSource struct {
	store *Store
}

var _ oauth2.TokenSource = TokenSource{}

// NewTokenSource returns a TokenSource reading from store.
func NewTokenSource(store *Store) TokenSource {
	return TokenSource{store: store}
}

// Token returns the current access token, or ErrNotAuthenticated.
func (ts TokenSource) Token() (*oauth2.Token, error) {
	cur := ts.store.Current()
	if !cur.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	tok := &oauth2.Token{
		AccessToken:  cur.AccessToken,
		TokenType:    cur.TokenType,
		RefreshToken: cur.RefreshToken,
	}
	if tok.TokenType == "" {
		tok.TokenType = "Bearer"
	}
	if claims, err := token.Inspect(cur.AccessToken); err == nil {
		tok.Expiry = claims.Expiry()
	}
	return tok, nil
}
