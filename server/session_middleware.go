package server

import (
	"context"
	"net/http"

	apperrors "github.com/jrsteele09/go-session-refresh/internal/errors"
	"github.com/jrsteele09/go-session-refresh/token/jwt"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyClaims stores the verified access token claims
const ContextKeyClaims ContextKey = "claims"

// Messages the session guard answers with. Clients treat the first two as "refresh and retry".
const (
	msgNotAuthenticated = "Not authenticated"
	msgTokenExpired     = "Token expired"
	msgInvalidToken     = "Invalid token"
)

// RequireSession validates the access token cookie and stores its claims in the context.
func (s *Server) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := cookieValue(r, accessTokenCookie)
		if raw == "" {
			writeError(w, http.StatusUnauthorized, msgNotAuthenticated)
			return
		}

		claims, err := s.sessions.Authenticate(raw)
		switch {
		case apperrors.Is(err, apperrors.ErrTokenExpired):
			writeError(w, http.StatusUnauthorized, msgTokenExpired)
			return
		case err != nil:
			writeError(w, http.StatusUnauthorized, msgInvalidToken)
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), ContextKeyClaims, claims)))
	}
}

func claimsFromContext(ctx context.Context) *jwt.Claims {
	claims, _ := ctx.Value(ContextKeyClaims).(*jwt.Claims)
	return claims
}
