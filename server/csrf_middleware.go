package server

import (
	"crypto/subtle"
	"net/http"

	"github.com/rs/zerolog/log"
)

// issueCSRFToken sets a fresh double-submit token. The cookie is readable by scripts so
// a browser client can copy it into the request header.
func (s *Server) issueCSRFToken(w http.ResponseWriter, r *http.Request) (string, error) {
	token, err := generateRandomString(s.config.GetCSRFTokenLength())
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.GetCSRFCookieName(),
		Value:    token,
		Path:     "/",
		HttpOnly: false,
		Secure:   s.secureCookies(r),
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

// CSRFMiddleware enforces the double-submit check on state-changing requests: the header
// must carry the same value as the CSRF cookie.
func (s *Server) CSRFMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
			next(w, r)
			return
		}

		cookie := cookieValue(r, s.config.GetCSRFCookieName())
		header := r.Header.Get(s.config.GetCSRFHeaderName())
		if cookie == "" || header == "" || subtle.ConstantTimeCompare([]byte(cookie), []byte(header)) != 1 {
			log.Debug().
				Str("path", r.URL.Path).
				Bool("cookie", cookie != "").
				Bool("header", header != "").
				Msg("csrf check failed")
			writeError(w, http.StatusForbidden, "Invalid CSRF token")
			return
		}
		next(w, r)
	}
}
