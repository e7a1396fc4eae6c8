package apiclient

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
)

// ErrRefreshFailed is matched by every error produced by a failed session refresh.
var ErrRefreshFailed = errors.New("session refresh failed")

// ResponseError is returned for any response with a status code of 400 or above.
type ResponseError struct {
	Method     string
	Path       string
	StatusCode int
	Status     string
	Message    string // the "error" field of a JSON error body, if any
	Body       []byte
}

func (e *ResponseError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %s: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Status)
}

func newResponseError(req *Request, resp *Response) *ResponseError {
	return &ResponseError{
		Method:     req.Method,
		Path:       req.Path,
		StatusCode: resp.StatusCode,
		Status:     fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		Message:    errorMessage(resp.Body),
		Body:       resp.Body,
	}
}

// errorMessage extracts the "error" string from a body shaped like {"error": "..."}.
func errorMessage(body []byte) string {
	var payload struct {
		Error any `json:"error"`
	}
	if len(body) == 0 || json.Unmarshal(body, &payload) != nil {
		return ""
	}
	msg, _ := payload.Error.(string)
	return msg
}

// RefreshError carries the cause of a failed refresh. It is delivered to the request
// that triggered the refresh and to every request queued behind it.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("%s: %v", ErrRefreshFailed, e.Err)
}

func (e *RefreshError) Unwrap() []error {
	return []error{ErrRefreshFailed, e.Err}
}
