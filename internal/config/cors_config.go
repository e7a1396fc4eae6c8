package config

import (
	"slices"
	"strings"

	"github.com/jrsteele09/go-session-refresh/internal/utils"
)

type AllowedOrigins map[string]struct{}
type nullValue = struct{}

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	_, ok := a[origin]
	return ok
}

func (a AllowedOrigins) String() string {
	var origins []string
	for k := range a {
		origins = append(origins, k)
	}
	return strings.Join(origins, ", ")
}

func (c mainConfig) GetAllowedOrigins() AllowedOrigins {
	origins := AllowedOrigins{}
	for _, o := range c.stringsValue("cors.allowed_origins") {
		origins[o] = nullValue{}
	}
	return origins
}

func (c mainConfig) GetAllowedMethods() string {
	return c.k.String("cors.allowed_methods")
}

// GetAllowedHeaders lists the configured CORS headers plus the CSRF header the server checks.
func (c mainConfig) GetAllowedHeaders() string {
	headers := utils.ToStringSlice(c.k.String("cors.allowed_headers"))
	csrf := c.GetCSRFHeaderName()
	if csrf != "" && !slices.ContainsFunc(headers, func(h string) bool { return strings.EqualFold(h, csrf) }) {
		headers = append(headers, csrf)
	}
	return strings.Join(headers, ", ")
}
