package config

type SecurityConfig interface {
	GetCSRFCookieName() string
	GetCSRFHeaderName() string
	GetCSRFTokenLength() int
	GetEnableRateLimiting() bool
	GetLoginRatePerSecond() float64
	GetLoginBurst() int
	GetSecureCookies() bool
}

func (c mainConfig) GetCSRFCookieName() string {
	return c.k.String("security.csrf_cookie")
}

func (c mainConfig) GetCSRFHeaderName() string {
	return c.k.String("security.csrf_header")
}

func (c mainConfig) GetCSRFTokenLength() int {
	return c.k.Int("security.csrf_token_length")
}

func (c mainConfig) GetEnableRateLimiting() bool {
	return c.k.Bool("security.rate_limiting")
}

func (c mainConfig) GetLoginRatePerSecond() float64 {
	return c.k.Float64("security.login_rate")
}

func (c mainConfig) GetLoginBurst() int {
	return c.k.Int("security.login_burst")
}

// GetSecureCookies forces the Secure flag on session cookies even behind plain HTTP
func (c mainConfig) GetSecureCookies() bool {
	return c.k.Bool("security.secure_cookies")
}
