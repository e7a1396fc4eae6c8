// Package auth implements the cookie-session lifecycle: registration, password login,
// refresh token rotation and logout. Transport concerns live in the server package.
package auth

import (
	"sync"
	"time"

	"github.com/jrsteele09/go-session-refresh/internal/config"
	apperrors "github.com/jrsteele09/go-session-refresh/internal/errors"
	"github.com/jrsteele09/go-session-refresh/token/jwt"
	"github.com/jrsteele09/go-session-refresh/token/refresh"
	"github.com/jrsteele09/go-session-refresh/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Repos holds all repository dependencies for the SessionService
type Repos struct {
	Users         users.UserRepo
	RefreshTokens refresh.Repo
	Revoked       jwt.RevokedTokenCache // optional
}

// Session is what a successful login or refresh hands back to the transport layer
type Session struct {
	User         *users.User
	AccessToken  *jwt.AccessToken
	RefreshToken *refresh.StoredRefreshToken
}

type SessionService struct {
	repos     Repos
	creator   *jwt.Creator
	verifier  *jwt.Verifier
	refresh   *refresh.Manager
	validator *Validator
	nowTime   func() time.Time

	registerLock sync.Mutex
}

// SessionServiceOption defines a function type to modify the SessionService instance.
type SessionServiceOption func(*SessionService)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) SessionServiceOption {
	return func(s *SessionService) {
		s.nowTime = nowFunc
	}
}

// WithSigner replaces the HMAC signer derived from the configured secret
func WithSigner(signer jwt.Signer, cfg config.SessionConfig) SessionServiceOption {
	return func(s *SessionService) {
		s.creator = jwt.NewCreator(cfg, signer)
		s.verifier = jwt.NewVerifier(signer, cfg.GetIssuer(), s.repos.Revoked)
	}
}

func NewSessionService(repos Repos, cfg config.SessionConfig, options ...SessionServiceOption) (*SessionService, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewSessionService] Users repo is required")
	}
	if repos.RefreshTokens == nil {
		return nil, errors.New("[NewSessionService] RefreshTokens repo is required")
	}
	if cfg.GetJWTSecret() == "" {
		return nil, errors.New("[NewSessionService] a jwt secret is required")
	}
	if repos.Revoked == nil {
		repos.Revoked = jwt.NewInMemoryRevokedTokenCache()
	}

	signer := jwt.NewHMACSigner(cfg.GetJWTSecret())
	s := &SessionService{
		repos:     repos,
		creator:   jwt.NewCreator(cfg, signer),
		verifier:  jwt.NewVerifier(signer, cfg.GetIssuer(), repos.Revoked),
		refresh:   refresh.NewManager(repos.RefreshTokens, cfg),
		validator: NewValidator(),
		nowTime:   time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

func (s *SessionService) Validator() *Validator {
	return s.validator
}

// Register creates a user account. It does not log the user in.
func (s *SessionService) Register(req RegisterRequest) (*users.User, error) {
	if err := s.validator.ValidateRegistration(req); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRequest, "%v", err)
	}

	s.registerLock.Lock()
	defer s.registerLock.Unlock()

	if _, err := s.repos.Users.GetByEmail(req.Email); err == nil {
		return nil, apperrors.ErrUserExists
	}

	hash, err := users.HashPassword(req.Password)
	if err != nil {
		return nil, errors.Wrap(err, "[Register] hash password")
	}
	user := &users.User{
		Email:        users.NormaliseEmail(req.Email),
		Name:         req.Name,
		PasswordHash: hash,
		DateJoined:   s.nowTime(),
	}
	if err := s.repos.Users.Upsert(user); err != nil {
		return nil, errors.Wrap(err, "[Register] store user")
	}
	log.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Login checks the password and opens a session. Unknown users and wrong passwords
// are indistinguishable to the caller.
func (s *SessionService) Login(email, password string) (*Session, error) {
	user, err := s.repos.Users.GetByEmail(email)
	if err != nil || !user.CheckPassword(password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if user.Blocked {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidCredentials, "%v", UserBlockedErr)
	}

	session, err := s.openSession(user)
	if err != nil {
		return nil, err
	}
	user.LastLogin = s.nowTime()
	user.LoggedIn = true
	if err := s.repos.Users.Upsert(user); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record login")
	}
	return session, nil
}

// Refresh redeems a refresh token and issues a new access/refresh pair. The presented
// token cannot be used again.
func (s *SessionService) Refresh(refreshToken string) (*Session, error) {
	rt, err := s.refresh.Rotate(refreshToken)
	if err != nil {
		return nil, err
	}
	user, err := s.repos.Users.GetByID(rt.UserID)
	if err != nil {
		_ = s.refresh.Delete(rt.Token)
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRefreshToken, "user %s", rt.UserID)
	}
	if user.Blocked {
		_ = s.refresh.Delete(rt.Token)
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRefreshToken, "%v", UserBlockedErr)
	}

	access, err := s.creator.CreateAccessToken(user)
	if err != nil {
		return nil, errors.Wrap(err, "[Refresh] create access token")
	}
	return &Session{User: user, AccessToken: access, RefreshToken: rt}, nil
}

// Logout drops the refresh token and revokes the access token. Both values may be empty
// or already invalid; logout always succeeds from the caller's point of view.
func (s *SessionService) Logout(accessToken, refreshToken string) {
	if refreshToken != "" {
		if rt, err := s.refresh.Get(refreshToken); err == nil {
			_ = s.refresh.Delete(refreshToken)
			if user, err := s.repos.Users.GetByID(rt.UserID); err == nil {
				_ = s.repos.Users.SetLoggedIn(user.Email, false)
			}
		}
	}
	if accessToken != "" {
		if claims, err := s.verifier.Verify(accessToken); err == nil {
			if err := s.verifier.Revoke(claims); err != nil {
				log.Warn().Err(err).Msg("failed to revoke access token")
			}
		}
	}
}

// Authenticate validates an access token. Expired tokens return ErrTokenExpired so the
// transport can tell clients to refresh.
func (s *SessionService) Authenticate(accessToken string) (*jwt.Claims, error) {
	return s.verifier.Verify(accessToken)
}

func (s *SessionService) User(id string) (*users.User, error) {
	return s.repos.Users.GetByID(id)
}

// UpdateProfile changes the user's display name.
func (s *SessionService) UpdateProfile(id string, update ProfileUpdate) (*users.User, error) {
	if err := s.validator.ValidateStruct(update); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRequest, "%v", err)
	}
	user, err := s.repos.Users.GetByID(id)
	if err != nil {
		return nil, err
	}
	user.Name = update.Name
	if err := s.repos.Users.Upsert(user); err != nil {
		return nil, errors.Wrap(err, "[UpdateProfile] store user")
	}
	return user, nil
}

func (s *SessionService) openSession(user *users.User) (*Session, error) {
	access, err := s.creator.CreateAccessToken(user)
	if err != nil {
		return nil, errors.Wrap(err, "[Login] create access token")
	}
	rt, err := s.refresh.Create(user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "[Login] create refresh token")
	}
	return &Session{User: user, AccessToken: access, RefreshToken: rt}, nil
}
