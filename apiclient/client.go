// Package apiclient is an HTTP client for cookie-session APIs. It attaches the anti-forgery
// header to state-changing requests and recovers from an expired access token by calling the
// refresh endpoint once, parking concurrent failures until the refresh settles and replaying
// them afterwards.
package apiclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/net/publicsuffix"
)

const (
	DefaultRefreshPath    = "/auth/refresh"
	DefaultRefreshTimeout = 30 * time.Second
	DefaultCSRFEndpoint   = "/auth/csrf"
)

type Client struct {
	baseURL        *url.URL
	jar            http.CookieJar
	transport      http.RoundTripper
	requestTimeout time.Duration

	csrfSource   TokenSource
	csrfHeader   string
	csrfEndpoint string

	expiredMessages []string
	excludedPaths   []string
	refreshPath     string
	refreshTimeout  time.Duration
	breaker         *gobreaker.CircuitBreaker[struct{}]

	metrics *Metrics
	logger  zerolog.Logger

	policy        *ExpiryPolicy
	httpClient    *http.Client
	refreshClient *http.Client
	refresher     *refresher
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "parse base url %q", baseURL)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("base url %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL:         u,
		csrfHeader:      DefaultCSRFHeaderName,
		csrfEndpoint:    DefaultCSRFEndpoint,
		expiredMessages: DefaultSessionExpiredMessages,
		excludedPaths:   DefaultExcludedPaths,
		refreshPath:     DefaultRefreshPath,
		refreshTimeout:  DefaultRefreshTimeout,
		logger:          log.With().Str("component", "apiclient").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, errors.Wrap(err, "create cookie jar")
		}
		c.jar = jar
	}
	if c.transport == nil {
		c.transport = http.DefaultTransport
	}
	if c.csrfSource == nil {
		c.csrfSource = CookieTokenSource{Name: DefaultCSRFCookieName}
	}

	c.policy = NewExpiryPolicy(c.expiredMessages, c.excludedPaths)
	c.policy.addExcluded(c.refreshPath)

	c.httpClient = &http.Client{
		Transport: &csrfTransport{next: c.transport, source: c.csrfSource, header: c.csrfHeader},
		Jar:       c.jar,
		Timeout:   c.requestTimeout,
	}
	// the refresh call shares the jar but skips the interception chain
	c.refreshClient = &http.Client{Transport: c.transport, Jar: c.jar}
	c.refresher = &refresher{c: c}
	return c, nil
}

// Do sends the request. Responses with a status of 400 or above are returned as a
// *ResponseError; when the error means the session expired, the session is refreshed and
// the request is sent once more.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < http.StatusBadRequest {
		return resp, nil
	}

	respErr := newResponseError(req, resp)
	if !c.policy.ShouldRefresh(req, respErr) {
		return nil, respErr
	}
	return c.refresher.recover(ctx, req)
}

func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, NewRequest(http.MethodGet, path, nil))
}

func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, NewRequest(http.MethodDelete, path, nil))
}

// Post sends body as JSON. A []byte body is sent unchanged.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.doWithBody(ctx, http.MethodPost, path, body)
}

func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.doWithBody(ctx, http.MethodPut, path, body)
}

func (c *Client) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return c.doWithBody(ctx, http.MethodPatch, path, body)
}

func (c *Client) doWithBody(ctx context.Context, method, path string, body any) (*Response, error) {
	req := NewRequest(method, path, nil)
	switch b := body.(type) {
	case nil:
	case []byte:
		req.Body = b
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, errors.Wrapf(err, "encode %s %s body", method, path)
		}
		req.Body = data
		req.Header.Set("Content-Type", "application/json")
	}
	return c.Do(ctx, req)
}

// Refreshing reports whether a refresh is in flight.
func (c *Client) Refreshing() bool {
	return c.refresher.isRefreshing()
}

// QueueLen is the number of requests waiting for the in-flight refresh.
func (c *Client) QueueLen() int {
	return c.refresher.queueLen()
}

// Jar exposes the session cookies.
func (c *Client) Jar() http.CookieJar {
	return c.jar
}

// ExpiryPolicy returns the eligibility rules the client applies to failed requests.
func (c *Client) ExpiryPolicy() *ExpiryPolicy {
	return c.policy
}

func (c *Client) send(ctx context.Context, req *Request) (*Response, error) {
	target, err := c.resolve(req.Path)
	if err != nil {
		return nil, err
	}
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	hr, err := http.NewRequestWithContext(ctx, req.Method, target.String(), body)
	if err != nil {
		return nil, errors.Wrapf(err, "build %s %s", req.Method, req.Path)
	}
	if req.Header != nil {
		hr.Header = req.Header.Clone()
	}

	resp, err := c.httpClient.Do(hr)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", req.Method, req.Path)
	}
	return readResponse(resp)
}

func readResponse(resp *http.Response) (*Response, error) {
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response body")
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// resolve joins a relative path onto the base URL, keeping any base path prefix.
func (c *Client) resolve(path string) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, errors.Wrapf(err, "parse path %q", path)
	}
	if ref.IsAbs() {
		return ref, nil
	}
	u := *c.baseURL
	u.Path = strings.TrimSuffix(c.baseURL.Path, "/") + "/" + strings.TrimPrefix(ref.Path, "/")
	u.RawPath = ""
	u.RawQuery = ref.RawQuery
	return &u, nil
}
