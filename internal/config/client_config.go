package config

import (
	"strings"
	"time"
)

// ClientConfig holds the per-deployment knobs of the session-refresh client.
// Different backends use different cookie/header names and expiry messages.
type ClientConfig interface {
	GetAPIBaseURL() string
	GetRefreshPath() string
	GetClientCSRFCookieName() string
	GetClientCSRFHeaderName() string
	GetClientCSRFEndpoint() string
	GetSessionExpiredMessages() []string
	GetExcludedPaths() []string
	GetRefreshTimeout() time.Duration
	GetRequestTimeout() time.Duration
}

func (c mainConfig) GetAPIBaseURL() string {
	return strings.TrimSuffix(c.k.String("client.base_url"), "/")
}

func (c mainConfig) GetRefreshPath() string {
	return c.k.String("client.refresh_path")
}

func (c mainConfig) GetClientCSRFCookieName() string {
	return c.k.String("client.csrf_cookie")
}

func (c mainConfig) GetClientCSRFHeaderName() string {
	return c.k.String("client.csrf_header")
}

// GetClientCSRFEndpoint returns the token-issuing endpoint; empty means the cookie is read instead
func (c mainConfig) GetClientCSRFEndpoint() string {
	return c.k.String("client.csrf_endpoint")
}

func (c mainConfig) GetSessionExpiredMessages() []string {
	return c.stringsValue("client.session_expired_messages")
}

func (c mainConfig) GetExcludedPaths() []string {
	return c.stringsValue("client.excluded_paths")
}

func (c mainConfig) GetRefreshTimeout() time.Duration {
	return c.k.Duration("client.refresh_timeout")
}

func (c mainConfig) GetRequestTimeout() time.Duration {
	return c.k.Duration("client.request_timeout")
}
