package session

// Session is the client's view of the signed-in user. An empty string means
// the field is absent. The session is authenticated iff AccessToken is set.
type Session struct {
	// Identity
	Email  string
	Role   string
	UserID string

	// Credentials
	AccessToken  string
	RefreshToken string // usually absent, the server keeps it in an HTTP-only cookie
	TokenType    string
}

// Authenticated reports whether the session carries an access token.
func (s Session) Authenticated() bool {
	return s.AccessToken != ""
}

// empty is the cleared session: no identity, no credentials.
func empty() Session {
	return Session{}
}
