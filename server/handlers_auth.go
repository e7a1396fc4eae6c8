package server

import (
	"net/http"

	"github.com/jrsteele09/go-session-refresh/auth"
	apperrors "github.com/jrsteele09/go-session-refresh/internal/errors"
	"github.com/rs/zerolog/log"
)

// RegisterHandler creates the account and opens a session straight away.
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.RegisterRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		user, err := s.sessions.Register(req)
		switch {
		case apperrors.Is(err, apperrors.ErrUserExists):
			writeError(w, http.StatusConflict, "User already exists")
			return
		case apperrors.Is(err, apperrors.ErrInvalidRequest):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case err != nil:
			log.Err(err).Msg("register failed")
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		session, err := s.sessions.Login(user.Email, req.Password)
		if err != nil {
			log.Err(err).Str("user_id", user.ID).Msg("login after register failed")
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if !s.startSession(w, r, session) {
			return
		}
		writeJSON(w, http.StatusCreated, session.User)
	}
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.LoginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := s.sessions.Validator().ValidateStruct(req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		session, err := s.sessions.Login(req.Email, req.Password)
		if err != nil {
			s.metrics.login(false)
			if !apperrors.Is(err, apperrors.ErrInvalidCredentials) {
				log.Err(err).Msg("login failed")
			}
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		s.metrics.login(true)
		if !s.startSession(w, r, session) {
			return
		}
		writeJSON(w, http.StatusOK, session.User)
	}
}

// RefreshHandler rotates the refresh token cookie and issues a new access token.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := s.sessions.Refresh(cookieValue(r, refreshTokenCookie))
		if err != nil {
			s.metrics.refresh(false)
			log.Debug().Err(err).Str("request_id", requestID(r.Context())).Msg("refresh rejected")
			s.clearSessionCookies(w, r)
			writeError(w, http.StatusUnauthorized, "Invalid refresh token")
			return
		}
		s.metrics.refresh(true)
		if !s.startSession(w, r, session) {
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.sessions.Logout(cookieValue(r, accessTokenCookie), cookieValue(r, refreshTokenCookie))
		s.clearSessionCookies(w, r)
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

// CSRFTokenHandler issues a CSRF token as both a cookie and a JSON field.
func (s *Server) CSRFTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := s.issueCSRFToken(w, r)
		if err != nil {
			log.Err(err).Msg("failed to issue csrf token")
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"csrf_token": token})
	}
}

// startSession sets the session cookies and a CSRF token bound to the new session.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, session *auth.Session) bool {
	s.setSessionCookies(w, r, session)
	if _, err := s.issueCSRFToken(w, r); err != nil {
		log.Err(err).Msg("failed to issue csrf token")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return false
	}
	return true
}
