package apiclient

import (
	"net/http"

	"github.com/goccy/go-json"
)

// Request is a replayable request: the body is held in memory so the same request can
// be sent again after a session refresh.
type Request struct {
	Method string
	Path   string // relative to the client base URL, or absolute
	Header http.Header
	Body   []byte

	retried bool // set once the request has been re-issued after a refresh
}

// NewRequest builds a request with an empty header set.
func NewRequest(method, path string, body []byte) *Request {
	return &Request{Method: method, Path: path, Header: http.Header{}, Body: body}
}

// Retried reports whether the request has already been re-issued after a refresh.
func (r *Request) Retried() bool {
	return r.retried
}

func (r *Request) clone() *Request {
	c := *r
	c.Header = r.Header.Clone()
	if r.Body != nil {
		c.Body = append([]byte(nil), r.Body...)
	}
	return &c
}

// markRetried returns a copy carrying the retry marker
func (r *Request) markRetried() *Request {
	c := r.clone()
	c.retried = true
	return c
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// JSON decodes the body into v.
func (r *Response) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}
