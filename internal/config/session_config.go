package config

import "time"

type SessionConfig interface {
	GetJWTSecret() string
	GetIssuer() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	GetRefreshTokenLength() int
	GetRefreshStore() string
}

func (c mainConfig) GetJWTSecret() string {
	return c.k.String("session.jwt_secret")
}

func (c mainConfig) GetIssuer() string {
	return c.k.String("session.issuer")
}

func (c mainConfig) GetAccessTokenExpiry() time.Duration {
	return c.k.Duration("session.access_token_expiry")
}

func (c mainConfig) GetRefreshTokenExpiry() time.Duration {
	return c.k.Duration("session.refresh_token_expiry")
}

func (c mainConfig) GetRefreshTokenLength() int {
	return c.k.Int("session.refresh_token_length")
}

// GetRefreshStore selects the refresh token repo: "memory" or "badger"
func (c mainConfig) GetRefreshStore() string {
	return c.k.String("session.refresh_store")
}
