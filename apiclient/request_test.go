package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestErrorMessage(t *testing.T) {
	require.Equal(t, "Token expired", errorMessage([]byte(`{"error":"Token expired"}`)))
	require.Empty(t, errorMessage([]byte(`{"error":{"code":1}}`)))
	require.Empty(t, errorMessage([]byte(`<html>bad gateway</html>`)))
	require.Empty(t, errorMessage(nil))
}

func TestResponseError_Error(t *testing.T) {
	req := NewRequest(http.MethodGet, "/posts", nil)
	err := newResponseError(req, &Response{StatusCode: http.StatusUnauthorized, Body: []byte(`{"error":"Token expired"}`)})
	require.Equal(t, "GET /posts: 401 Unauthorized: Token expired", err.Error())

	err = newResponseError(req, &Response{StatusCode: http.StatusBadGateway})
	require.Equal(t, "GET /posts: 502 Bad Gateway", err.Error())
}

func TestRequest_MarkRetriedCopies(t *testing.T) {
	req := NewRequest(http.MethodPut, "/profile", []byte("a"))
	req.Header.Set("X-Trace", "1")

	retry := req.markRetried()
	retry.Header.Set("X-Trace", "2")
	retry.Body[0] = 'b'

	require.True(t, retry.Retried())
	require.False(t, req.Retried())
	require.Equal(t, "1", req.Header.Get("X-Trace"))
	require.Equal(t, []byte("a"), req.Body)
}

func TestShouldRefresh_SkipsRetried(t *testing.T) {
	p := NewExpiryPolicy(DefaultSessionExpiredMessages, DefaultExcludedPaths)
	expired := &ResponseError{StatusCode: http.StatusUnauthorized, Message: "Token expired"}
	req := NewRequest(http.MethodGet, "/posts", nil)

	require.True(t, p.ShouldRefresh(req, expired))
	require.False(t, p.ShouldRefresh(req.markRetried(), expired))
}

func TestCSRFTransport(t *testing.T) {
	var seen *http.Request
	rt := &csrfTransport{
		next: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			seen = r
			return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
		}),
		source: CookieTokenSource{Name: "csrf_token"},
		header: "X-CSRF-Token",
	}

	req := httptest.NewRequest(http.MethodPost, "http://api.test/posts", nil)
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "abc%3D"})
	_, err := rt.RoundTrip(req)
	require.NoError(t, err)
	require.Equal(t, "abc=", seen.Header.Get("X-CSRF-Token"))
	require.Empty(t, req.Header.Get("X-CSRF-Token"))

	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		req := httptest.NewRequest(method, "http://api.test/posts", nil)
		req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "abc"})
		_, err := rt.RoundTrip(req)
		require.NoError(t, err)
		require.Empty(t, seen.Header.Get("X-CSRF-Token"), method)
	}
}

func TestResolve(t *testing.T) {
	c, err := New("https://api.example.com/v1")
	require.NoError(t, err)

	u, err := c.resolve("/posts?page=2")
	require.NoError(t, err)
	require.Equal(t, "https://api.example.com/v1/posts?page=2", u.String())

	u, err = c.resolve("https://other.example.com/x")
	require.NoError(t, err)
	require.Equal(t, "https://other.example.com/x", u.String())
}

func TestCSRFTransport_SignalsDispatch(t *testing.T) {
	release := make(chan struct{})
	rt := &csrfTransport{
		next: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			<-release
			return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
		}),
	}

	dispatched := make(chan struct{})
	ctx := withDispatchSignal(context.Background(), func() { close(dispatched) })
	req := httptest.NewRequest(http.MethodGet, "http://api.test/posts", nil).WithContext(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = rt.RoundTrip(req)
	}()
	<-dispatched
	close(release)
	<-done
}

func TestWithRefreshTimeout_NonPositiveKeepsDefault(t *testing.T) {
	for _, d := range []time.Duration{0, -time.Second} {
		c, err := New("https://api.example.com", WithRefreshTimeout(d))
		require.NoError(t, err)
		require.Equal(t, DefaultRefreshTimeout, c.refreshTimeout)
	}

	c, err := New("https://api.example.com", WithRefreshTimeout(time.Second))
	require.NoError(t, err)
	require.Equal(t, time.Second, c.refreshTimeout)
}
