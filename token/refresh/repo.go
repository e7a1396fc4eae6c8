package refresh

import (
	"time"
)

// StoredRefreshToken represents the server-side storage of refresh token metadata.
// The client only receives the Token field (a random string) inside an HttpOnly cookie.
type StoredRefreshToken struct {
	Token  string    `json:"token"`   // The actual random token string (sent to client)
	UserID string    `json:"user_id"` // Server-side metadata
	Iat    time.Time `json:"iat"`     // Server-side metadata (issued at time)
}

// Repo manages server-side storage of refresh token metadata keyed by the token string.
type Repo interface {
	Upsert(refreshToken *StoredRefreshToken) error
	Delete(token string) error
	Get(token string) (*StoredRefreshToken, error)
	GetByUserID(userID string) (*StoredRefreshToken, error)
}
