package jwt

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-session-refresh/internal/config"
	"github.com/jrsteele09/go-session-refresh/users"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Claims carried by a session access token
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwtlib.RegisteredClaims
}

// AccessToken is a signed token plus the metadata needed to set its cookie
type AccessToken struct {
	Value     string
	ID        string
	ExpiresAt time.Time
}

// Creator handles access token creation
type Creator struct {
	config config.SessionConfig
	signer Signer
}

// NewCreator creates a new JWT creator
func NewCreator(cfg config.SessionConfig, signer Signer) *Creator {
	return &Creator{
		config: cfg,
		signer: signer,
	}
}

// CreateAccessToken creates a short lived access token for the user
func (c *Creator) CreateAccessToken(user *users.User) (*AccessToken, error) {
	now := NowTimeFunc()
	expiresAt := now.Add(c.config.GetAccessTokenExpiry())
	jti := uuid.New().String()

	claims := Claims{
		Email: user.Email,
		Name:  user.Name,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    c.config.GetIssuer(),
			Subject:   user.ID,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			ID:        jti,
		},
	}

	signedToken, err := c.signer.Sign(claims)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return &AccessToken{Value: signedToken, ID: jti, ExpiresAt: expiresAt}, nil
}
