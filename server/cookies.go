package server

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/jrsteele09/go-session-refresh/auth"
)

const (
	accessTokenCookie  = "access_token"
	refreshTokenCookie = "refresh_token"
	// refreshCookiePath limits the refresh token to the auth routes
	refreshCookiePath = "/auth"
)

// generateRandomString creates a random base64url string
func generateRandomString(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (s *Server) secureCookies(r *http.Request) bool {
	return s.config.GetSecureCookies() || getScheme(r) == "https"
}

// setSessionCookies plants the access and refresh tokens as HttpOnly cookies.
func (s *Server) setSessionCookies(w http.ResponseWriter, r *http.Request, session *auth.Session) {
	secure := s.secureCookies(r)
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    session.AccessToken.Value,
		Path:     "/",
		Expires:  session.AccessToken.ExpiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    session.RefreshToken.Token,
		Path:     refreshCookiePath,
		Expires:  session.RefreshToken.Iat.Add(s.config.GetRefreshTokenExpiry()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) clearSessionCookies(w http.ResponseWriter, r *http.Request) {
	secure := s.secureCookies(r)
	for _, c := range []struct{ name, path string }{
		{accessTokenCookie, "/"},
		{refreshTokenCookie, refreshCookiePath},
		{s.config.GetCSRFCookieName(), "/"},
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     c.name,
			Value:    "",
			Path:     c.path,
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HttpOnly: c.name != s.config.GetCSRFCookieName(),
			Secure:   secure,
		})
	}
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
