package apiclient

import (
	"net/http"
	"strings"
)

var (
	// DefaultSessionExpiredMessages are the 401 error messages that mean the access token is
	// stale rather than the request being unauthorised.
	DefaultSessionExpiredMessages = []string{"Token expired", "Not authenticated"}

	// DefaultExcludedPaths are the auth routes whose failures never trigger a refresh.
	DefaultExcludedPaths = []string{"/auth/refresh", "/auth/login", "/auth/register", "/auth/logout"}
)

// ExpiryPolicy decides whether a failed request may be recovered by refreshing the session.
type ExpiryPolicy struct {
	messages map[string]struct{}
	excluded []string
}

func NewExpiryPolicy(messages, excludedPaths []string) *ExpiryPolicy {
	p := &ExpiryPolicy{messages: make(map[string]struct{}, len(messages))}
	for _, m := range messages {
		p.messages[m] = struct{}{}
	}
	p.excluded = append(p.excluded, excludedPaths...)
	return p
}

// IsSessionExpired reports whether the error is a 401 carrying one of the configured
// expiry messages. Messages are compared exactly.
func (p *ExpiryPolicy) IsSessionExpired(err *ResponseError) bool {
	if err == nil || err.StatusCode != http.StatusUnauthorized {
		return false
	}
	_, ok := p.messages[err.Message]
	return ok
}

// IsExcluded reports whether the path contains any excluded route.
func (p *ExpiryPolicy) IsExcluded(path string) bool {
	for _, ex := range p.excluded {
		if ex != "" && strings.Contains(path, ex) {
			return true
		}
	}
	return false
}

// ShouldRefresh is the full eligibility check: expired session, not an auth route and not
// already retried once.
func (p *ExpiryPolicy) ShouldRefresh(req *Request, err *ResponseError) bool {
	return !req.retried && p.IsSessionExpired(err) && !p.IsExcluded(req.Path)
}

func (p *ExpiryPolicy) addExcluded(path string) {
	if !p.IsExcluded(path) {
		p.excluded = append(p.excluded, path)
	}
}
