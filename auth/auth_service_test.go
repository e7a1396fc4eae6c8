package auth_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-session-refresh/auth"
	"github.com/jrsteele09/go-session-refresh/internal/config"
	apperrors "github.com/jrsteele09/go-session-refresh/internal/errors"
	"github.com/jrsteele09/go-session-refresh/token/jwt"
	refreshrepofake "github.com/jrsteele09/go-session-refresh/token/refresh/repofake"
	"github.com/jrsteele09/go-session-refresh/users"
	fakeuserrepo "github.com/jrsteele09/go-session-refresh/users/repofake"
	"github.com/stretchr/testify/require"
)

const (
	testUserEmail    = "john.doe@example.com"
	testUserName     = "John"
	testUserPassword = "Password123"
)

type testFixture struct {
	cfg     config.Config
	users   users.UserRepo
	service *auth.SessionService
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	t.Setenv(config.ConfigPathEnvVar, "")

	cfg := config.New()
	ur := fakeuserrepo.NewFakeUserRepo()
	svc, err := auth.NewSessionService(auth.Repos{
		Users:         ur,
		RefreshTokens: refreshrepofake.NewFakeRefreshTokenRepo(),
	}, cfg)
	require.NoError(t, err)

	return &testFixture{cfg: cfg, users: ur, service: svc}
}

func (f *testFixture) registerDefault(t *testing.T) *users.User {
	t.Helper()
	u, err := f.service.Register(auth.RegisterRequest{Email: testUserEmail, Name: testUserName, Password: testUserPassword})
	require.NoError(t, err)
	return u
}

func TestNewSessionService_RequiresRepos(t *testing.T) {
	cfg := config.New()
	_, err := auth.NewSessionService(auth.Repos{}, cfg)
	require.Error(t, err)

	_, err = auth.NewSessionService(auth.Repos{Users: fakeuserrepo.NewFakeUserRepo()}, cfg)
	require.Error(t, err)
}

func TestRegister(t *testing.T) {
	f := setupTestFixture(t)

	u := f.registerDefault(t)
	require.NotEmpty(t, u.ID)
	require.Equal(t, testUserEmail, u.Email)
	require.NotEqual(t, testUserPassword, u.PasswordHash)

	t.Run("duplicate email ignores case", func(t *testing.T) {
		_, err := f.service.Register(auth.RegisterRequest{Email: "John.Doe@Example.com", Name: "J", Password: testUserPassword})
		require.ErrorIs(t, err, apperrors.ErrUserExists)
	})

	t.Run("invalid body", func(t *testing.T) {
		_, err := f.service.Register(auth.RegisterRequest{Email: "x", Name: "J", Password: "weak"})
		require.ErrorIs(t, err, apperrors.ErrInvalidRequest)
	})
}

func TestLogin(t *testing.T) {
	f := setupTestFixture(t)
	f.registerDefault(t)

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.service.Login(testUserEmail, "Wrong1234")
		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := f.service.Login("nobody@example.com", testUserPassword)
		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("success", func(t *testing.T) {
		s, err := f.service.Login(testUserEmail, testUserPassword)
		require.NoError(t, err)
		require.NotEmpty(t, s.AccessToken.Value)
		require.NotEmpty(t, s.RefreshToken.Token)
		require.True(t, s.User.LoggedIn)

		claims, err := f.service.Authenticate(s.AccessToken.Value)
		require.NoError(t, err)
		require.Equal(t, s.User.ID, claims.Subject)
	})

	t.Run("blocked", func(t *testing.T) {
		require.NoError(t, f.users.SetBlocked(testUserEmail, true))
		t.Cleanup(func() { _ = f.users.SetBlocked(testUserEmail, false) })
		_, err := f.service.Login(testUserEmail, testUserPassword)
		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})
}

func TestRefresh_RotatesToken(t *testing.T) {
	f := setupTestFixture(t)
	f.registerDefault(t)

	s, err := f.service.Login(testUserEmail, testUserPassword)
	require.NoError(t, err)

	next, err := f.service.Refresh(s.RefreshToken.Token)
	require.NoError(t, err)
	require.NotEqual(t, s.RefreshToken.Token, next.RefreshToken.Token)
	require.NotEqual(t, s.AccessToken.ID, next.AccessToken.ID)

	_, err = f.service.Refresh(s.RefreshToken.Token)
	require.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)

	_, err = f.service.Refresh("")
	require.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	f := setupTestFixture(t)
	f.registerDefault(t)

	s, err := f.service.Login(testUserEmail, testUserPassword)
	require.NoError(t, err)

	prev := jwt.NowTimeFunc
	jwt.NowTimeFunc = func() time.Time { return time.Now().Add(f.cfg.GetAccessTokenExpiry() + time.Minute) }
	t.Cleanup(func() { jwt.NowTimeFunc = prev })

	_, err = f.service.Authenticate(s.AccessToken.Value)
	require.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t)
	f.registerDefault(t)

	s, err := f.service.Login(testUserEmail, testUserPassword)
	require.NoError(t, err)

	f.service.Logout(s.AccessToken.Value, s.RefreshToken.Token)

	_, err = f.service.Authenticate(s.AccessToken.Value)
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	_, err = f.service.Refresh(s.RefreshToken.Token)
	require.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)

	u, err := f.users.GetByEmail(testUserEmail)
	require.NoError(t, err)
	require.False(t, u.LoggedIn)

	f.service.Logout("", "")
	f.service.Logout("garbage", "garbage")
}

func TestUpdateProfile(t *testing.T) {
	f := setupTestFixture(t)
	u := f.registerDefault(t)

	updated, err := f.service.UpdateProfile(u.ID, auth.ProfileUpdate{Name: "Johnny"})
	require.NoError(t, err)
	require.Equal(t, "Johnny", updated.Name)

	_, err = f.service.UpdateProfile(u.ID, auth.ProfileUpdate{})
	require.ErrorIs(t, err, apperrors.ErrInvalidRequest)

	_, err = f.service.UpdateProfile("missing", auth.ProfileUpdate{Name: "x"})
	require.ErrorIs(t, err, apperrors.ErrUserNotFound)
}
