package apiclient

import (
	"net/http"
	"time"

	"github.com/jrsteele09/go-session-refresh/internal/config"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

type Option func(*Client)

// WithHTTPClient takes the transport, timeout and jar (when set) of an existing client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.transport = hc.Transport
		c.requestTimeout = hc.Timeout
		if hc.Jar != nil {
			c.jar = hc.Jar
		}
	}
}

// WithTransport sets the round tripper used for both normal traffic and the refresh call.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.transport = rt
	}
}

func WithCookieJar(jar http.CookieJar) Option {
	return func(c *Client) {
		c.jar = jar
	}
}

func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.requestTimeout = d
	}
}

// WithCSRFCookie reads the anti-forgery token from the named cookie and sends it in header.
func WithCSRFCookie(cookie, header string) Option {
	return func(c *Client) {
		c.csrfSource = CookieTokenSource{Name: cookie}
		c.csrfHeader = header
	}
}

// WithCSRFEndpoint makes FetchCSRFToken the token supplier: the token is taken from field of
// the JSON body returned by path.
func WithCSRFEndpoint(path, field, header string) Option {
	return func(c *Client) {
		c.csrfSource = NewEndpointTokenSource(path, field)
		c.csrfEndpoint = path
		c.csrfHeader = header
	}
}

func WithCSRFTokenSource(src TokenSource, header string) Option {
	return func(c *Client) {
		c.csrfSource = src
		c.csrfHeader = header
	}
}

// WithSessionExpiredMessages replaces the 401 messages that trigger a refresh.
func WithSessionExpiredMessages(messages ...string) Option {
	return func(c *Client) {
		c.expiredMessages = messages
	}
}

// WithExcludedPaths replaces the routes whose failures are never refreshed.
func WithExcludedPaths(paths ...string) Option {
	return func(c *Client) {
		c.excludedPaths = paths
	}
}

// WithRefreshPath sets the refresh endpoint. It is always treated as excluded.
func WithRefreshPath(path string) Option {
	return func(c *Client) {
		c.refreshPath = path
	}
}

// WithRefreshTimeout bounds the refresh call; a refresh that runs out of time fails.
// Non-positive values keep DefaultRefreshTimeout.
func WithRefreshTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d <= 0 {
			d = DefaultRefreshTimeout
		}
		c.refreshTimeout = d
	}
}

// WithRefreshBreaker guards the refresh call with a circuit breaker so a dead auth backend
// fails fast instead of being called by every new expiry.
func WithRefreshBreaker(st gobreaker.Settings) Option {
	return func(c *Client) {
		c.breaker = gobreaker.NewCircuitBreaker[struct{}](st)
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithConfig applies the client section of the application config. Zero values keep
// the defaults.
func WithConfig(cfg config.ClientConfig) Option {
	return func(c *Client) {
		if p := cfg.GetRefreshPath(); p != "" {
			c.refreshPath = p
		}
		header := cfg.GetClientCSRFHeaderName()
		if header == "" {
			header = DefaultCSRFHeaderName
		}
		if endpoint := cfg.GetClientCSRFEndpoint(); endpoint != "" {
			WithCSRFEndpoint(endpoint, DefaultCSRFField, header)(c)
		} else if cookie := cfg.GetClientCSRFCookieName(); cookie != "" {
			WithCSRFCookie(cookie, header)(c)
		}
		if msgs := cfg.GetSessionExpiredMessages(); len(msgs) > 0 {
			c.expiredMessages = msgs
		}
		if paths := cfg.GetExcludedPaths(); len(paths) > 0 {
			c.excludedPaths = paths
		}
		if d := cfg.GetRefreshTimeout(); d > 0 {
			c.refreshTimeout = d
		}
		if d := cfg.GetRequestTimeout(); d > 0 {
			c.requestTimeout = d
		}
	}
}
