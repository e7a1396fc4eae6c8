package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-session-refresh/internal/config"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv(config.ConfigPathEnvVar, "")
	c := config.New()

	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, "/auth/refresh", c.GetRefreshPath())
	require.Equal(t, []string{"Token expired", "Not authenticated"}, c.GetSessionExpiredMessages())
	require.Equal(t, []string{"/auth/refresh", "/auth/login", "/auth/register", "/auth/logout"}, c.GetExcludedPaths())
	require.Equal(t, 30*time.Second, c.GetRefreshTimeout())
	require.Equal(t, 15*time.Minute, c.GetAccessTokenExpiry())
	require.Equal(t, "XSRF-TOKEN", c.GetCSRFCookieName())
	require.Equal(t, "X-XSRF-TOKEN", c.GetCSRFHeaderName())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("http://localhost:3000"))
	require.Equal(t, "Content-Type, Authorization, X-XSRF-TOKEN", c.GetAllowedHeaders())
}

func TestAllowedHeaders_FollowCSRFHeader(t *testing.T) {
	t.Setenv(config.ConfigPathEnvVar, "")
	t.Setenv("CSRF_HEADER", "X-CSRF-Token")

	c, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, "X-CSRF-Token", c.GetCSRFHeaderName())
	require.Equal(t, "Content-Type, Authorization, X-CSRF-Token", c.GetAllowedHeaders())
}

func TestAllowedHeaders_NoDuplicateCSRFHeader(t *testing.T) {
	t.Setenv(config.ConfigPathEnvVar, "")
	t.Setenv("ALLOWED_HEADERS", "Content-Type, x-xsrf-token")

	c, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, "Content-Type, x-xsrf-token", c.GetAllowedHeaders())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(config.ConfigPathEnvVar, "")
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_EXPIRED_MESSAGES", "Session expired, jwt expired")
	t.Setenv("REFRESH_TIMEOUT", "5s")
	t.Setenv("CLIENT_CSRF_HEADER", "x-csrf-token")

	c, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, ":9090", c.GetPort())
	require.Equal(t, []string{"Session expired", "jwt expired"}, c.GetSessionExpiredMessages())
	require.Equal(t, 5*time.Second, c.GetRefreshTimeout())
	require.Equal(t, "x-csrf-token", c.GetClientCSRFHeaderName())
}

func TestLoad_File(t *testing.T) {
	t.Setenv(config.ConfigPathEnvVar, "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlBody := `
server:
  app_name: Reddit Clone
  env: prod
client:
  csrf_cookie: csrf_token
  csrf_header: X-CSRF-Token
  session_expired_messages:
    - Token expired
  excluded_paths:
    - /auth/refresh
    - /auth/login
`
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o600))

	c, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "Reddit Clone", c.GetAppName())
	require.Equal(t, "PROD", c.GetEnv())
	require.Equal(t, "csrf_token", c.GetClientCSRFCookieName())
	require.Equal(t, "X-CSRF-Token", c.GetClientCSRFHeaderName())
	require.Equal(t, []string{"Token expired"}, c.GetSessionExpiredMessages())
	require.Equal(t, []string{"/auth/refresh", "/auth/login"}, c.GetExcludedPaths())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
