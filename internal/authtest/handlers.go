package authtest

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginHandler answers in the shape the backend uses at login: identity is
// under user_email and the refresh token travels only in the cookie.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.counts.logins++
		s.mu.Unlock()

		var payload loginPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSONError(w, "Invalid request body", http.StatusUnprocessableEntity)
			return
		}

		u, ok := s.user(payload.Email)
		if !ok || !u.VerifyPassword(payload.Password) {
			writeJSONError(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}

		accessToken, refresh, err := s.issue(u)
		if err != nil {
			log.Err(err).Msg("[LoginHandler] issue tokens")
			writeJSONError(w, "Internal error", http.StatusInternalServerError)
			return
		}

		s.setRefreshCookie(w, refresh)
		writeJSON(w, map[string]string{
			"access_token": accessToken,
			"token_type":   "Bearer",
			"user_id":      u.ID,
			"user_role":    u.Role,
			"user_email":   u.Email,
		})
	}
}

// RefreshHandler exchanges the refresh cookie for a new session. The cookie
// is rotated, so the old refresh token stops working.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.counts.refreshes++
		gate := s.refreshGate
		forced := s.refreshStatus
		s.mu.Unlock()

		select {
		case s.refreshSeen <- struct{}{}:
		default:
		}
		if gate != nil {
			select {
			case <-gate:
			case <-r.Context().Done():
				return
			}
		}

		if forced != 0 {
			writeJSONError(w, http.StatusText(forced), forced)
			return
		}

		cookie, err := r.Cookie(refreshCookieName)
		if err != nil || cookie.Value == "" {
			writeJSONError(w, "Missing refresh token cookie", http.StatusUnauthorized)
			return
		}

		s.mu.Lock()
		email, ok := s.refreshTokens[cookie.Value]
		delete(s.refreshTokens, cookie.Value)
		s.mu.Unlock()
		if !ok {
			writeJSONError(w, "Refresh token expired", http.StatusUnauthorized)
			return
		}

		u, ok := s.user(email)
		if !ok {
			writeJSONError(w, "Refresh token expired", http.StatusUnauthorized)
			return
		}

		accessToken, refresh, err := s.issue(u)
		if err != nil {
			log.Err(err).Msg("[RefreshHandler] issue tokens")
			writeJSONError(w, "Internal error", http.StatusInternalServerError)
			return
		}

		s.setRefreshCookie(w, refresh)
		writeJSON(w, map[string]string{
			"email":         u.Email,
			"user_role":     u.Role,
			"user_id":       u.ID,
			"access_token":  accessToken,
			"refresh_token": refresh,
			"token_type":    "Bearer",
		})
	}
}

// LogoutHandler expires the refresh cookie and forgets its token.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.counts.logouts++
		if cookie, err := r.Cookie(refreshCookieName); err == nil {
			delete(s.refreshTokens, cookie.Value)
		}
		s.mu.Unlock()

		http.SetCookie(w, &http.Cookie{
			Name:     refreshCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		writeJSON(w, map[string]string{"message": "Logged out successfully"})
	}
}

func (s *Server) issue(u User) (accessToken, refresh string, err error) {
	accessToken, err = s.issuer.accessToken(u)
	if err != nil {
		return "", "", err
	}
	refresh = refreshToken()

	s.mu.Lock()
	s.accessTokens[accessToken] = true
	s.refreshTokens[refresh] = u.Email
	s.mu.Unlock()
	return accessToken, refresh, nil
}

func (s *Server) setRefreshCookie(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
