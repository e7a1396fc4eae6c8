package server

import (
	"net/http"

	"github.com/jrsteele09/go-session-refresh/auth"
	apperrors "github.com/jrsteele09/go-session-refresh/internal/errors"
	"github.com/rs/zerolog/log"
)

func (s *Server) GetProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromContext(r.Context())
		user, err := s.sessions.User(claims.Subject)
		if err != nil {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func (s *Server) UpdateProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var update auth.ProfileUpdate
		if err := decodeJSON(w, r, &update); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		claims := claimsFromContext(r.Context())
		user, err := s.sessions.UpdateProfile(claims.Subject, update)
		switch {
		case apperrors.Is(err, apperrors.ErrInvalidRequest):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case apperrors.Is(err, apperrors.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "User not found")
			return
		case err != nil:
			log.Err(err).Str("user_id", claims.Subject).Msg("profile update failed")
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}
