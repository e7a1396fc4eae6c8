package apiclient

import (
	"net/http"
	"net/url"
	"sync"
)

const (
	DefaultCSRFCookieName = "XSRF-TOKEN"
	DefaultCSRFHeaderName = "X-XSRF-TOKEN"
	DefaultCSRFField      = "csrf_token"
)

// TokenSource supplies the anti-forgery token for an outgoing request. An empty token
// means the request goes out without the header.
type TokenSource interface {
	Token(req *http.Request) string
}

// CookieTokenSource reads the token from a cookie the server planted in the jar.
type CookieTokenSource struct {
	Name string
}

func (s CookieTokenSource) Token(req *http.Request) string {
	c, err := req.Cookie(s.Name)
	if err != nil {
		return ""
	}
	// '+' is literal in cookie values
	if v, err := url.PathUnescape(c.Value); err == nil {
		return v
	}
	return c.Value
}

// EndpointTokenSource holds a token fetched from a dedicated endpoint.
type EndpointTokenSource struct {
	Path  string
	Field string

	mu    sync.RWMutex
	token string
}

func NewEndpointTokenSource(path, field string) *EndpointTokenSource {
	if field == "" {
		field = DefaultCSRFField
	}
	return &EndpointTokenSource{Path: path, Field: field}
}

func (s *EndpointTokenSource) Token(*http.Request) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *EndpointTokenSource) Set(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

// csrfTransport attaches the anti-forgery header to state-changing requests. It runs after
// the jar has added cookies, so a cookie-backed source always sees the latest value.
// It is also the point where a replay counts as dispatched.
type csrfTransport struct {
	next   http.RoundTripper
	source TokenSource
	header string
}

func (t *csrfTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	signalDispatch(req.Context())
	if isSafeMethod(req.Method) || t.source == nil {
		return t.next.RoundTrip(req)
	}
	token := t.source.Token(req)
	if token == "" {
		return t.next.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set(t.header, token)
	return t.next.RoundTrip(r)
}
