package apiclient

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
)

const (
	LoginPath    = "/auth/login"
	RegisterPath = "/auth/register"
	LogoutPath   = "/auth/logout"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Login starts a session; the server's cookies land in the jar.
func (c *Client) Login(ctx context.Context, email, password string) (*Response, error) {
	return c.Post(ctx, LoginPath, Credentials{Email: email, Password: password})
}

func (c *Client) Register(ctx context.Context, reg Registration) (*Response, error) {
	return c.Post(ctx, RegisterPath, reg)
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.Post(ctx, LogoutPath, nil)
	if src, ok := c.csrfSource.(*EndpointTokenSource); ok {
		src.Set("")
	}
	return err
}

// FetchCSRFToken asks the server for a fresh anti-forgery token. With an endpoint token
// source the token is cached for later requests; with a cookie source the server's
// Set-Cookie updates the jar.
func (c *Client) FetchCSRFToken(ctx context.Context) (string, error) {
	field := DefaultCSRFField
	src, endpoint := c.csrfSource.(*EndpointTokenSource)
	if endpoint {
		field = src.Field
	}

	resp, err := c.Get(ctx, c.csrfEndpoint)
	if err != nil {
		return "", errors.Wrap(err, "fetch csrf token")
	}
	var body map[string]any
	if err := resp.JSON(&body); err != nil {
		return "", errors.Wrap(err, "decode csrf token")
	}
	token, _ := body[field].(string)
	if token == "" {
		return "", errors.Errorf("csrf response has no %q field", field)
	}
	if endpoint {
		src.Set(token)
	}
	return token, nil
}

// CSRFToken is the token the next state-changing request would carry.
func (c *Client) CSRFToken() string {
	hr, err := http.NewRequest(http.MethodPost, c.baseURL.String(), nil)
	if err != nil {
		return ""
	}
	for _, ck := range c.jar.Cookies(hr.URL) {
		hr.AddCookie(ck)
	}
	return c.csrfSource.Token(hr)
}
