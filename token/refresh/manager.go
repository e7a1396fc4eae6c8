package refresh

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/jrsteele09/go-session-refresh/internal/config"
	apperrors "github.com/jrsteele09/go-session-refresh/internal/errors"
	"github.com/rs/zerolog/log"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Manager handles refresh token creation, validation, and rotation
type Manager struct {
	repo   Repo
	config config.SessionConfig
	lock   sync.Mutex // serialises rotation so a token can only be redeemed once

	// rotated-out tokens and their owners, kept for one refresh token lifetime
	redeemed map[string]redeemedToken
}

type redeemedToken struct {
	userID string
	at     time.Time
}

// NewManager creates a new refresh token manager
func NewManager(repo Repo, cfg config.SessionConfig) *Manager {
	return &Manager{
		repo:     repo,
		config:   cfg,
		redeemed: make(map[string]redeemedToken),
	}
}

// Create generates a new refresh token and stores it
func (m *Manager) Create(userID string) (*StoredRefreshToken, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.create(userID)
}

func (m *Manager) create(userID string) (*StoredRefreshToken, error) {
	// Single refresh token per user
	if existingToken, err := m.repo.GetByUserID(userID); err == nil && existingToken != nil {
		if err := m.repo.Delete(existingToken.Token); err != nil {
			return nil, fmt.Errorf("failed to delete existing refresh token: %w", err)
		}
	}

	tokenBytes := make([]byte, m.config.GetRefreshTokenLength())
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}

	rt := &StoredRefreshToken{
		Token:  hex.EncodeToString(tokenBytes),
		UserID: userID,
		Iat:    NowTimeFunc(),
	}
	if err := m.repo.Upsert(rt); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}
	return rt, nil
}

// Rotate redeems a refresh token and issues its replacement.
// The presented token is invalid afterwards, whatever the outcome. Presenting a token that
// was already rotated out revokes the owner's live token as well.
func (m *Manager) Rotate(token string) (*StoredRefreshToken, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if token == "" {
		return nil, apperrors.ErrInvalidRefreshToken
	}
	m.pruneRedeemed()

	rt, err := m.repo.Get(token)
	if err != nil || rt == nil {
		if prev, ok := m.redeemed[token]; ok {
			m.revokeUser(prev.userID)
			return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidRefreshToken, apperrors.ErrRefreshTokenReused)
		}
		return nil, apperrors.ErrInvalidRefreshToken
	}
	if m.IsExpired(rt) {
		_ = m.repo.Delete(token)
		return nil, apperrors.ErrRefreshTokenExpired
	}
	next, err := m.create(rt.UserID)
	if err != nil {
		return nil, err
	}
	m.redeemed[token] = redeemedToken{userID: rt.UserID, at: NowTimeFunc()}
	return next, nil
}

func (m *Manager) revokeUser(userID string) {
	log.Warn().Str("user_id", userID).Msg("rotated refresh token presented again, revoking session")
	if live, err := m.repo.GetByUserID(userID); err == nil && live != nil {
		if err := m.repo.Delete(live.Token); err != nil {
			log.Err(err).Str("user_id", userID).Msg("failed to revoke refresh token")
		}
	}
}

func (m *Manager) pruneRedeemed() {
	cutoff := NowTimeFunc().Add(-m.config.GetRefreshTokenExpiry())
	for token, r := range m.redeemed {
		if r.at.Before(cutoff) {
			delete(m.redeemed, token)
		}
	}
}

// Get retrieves a refresh token from storage
func (m *Manager) Get(token string) (*StoredRefreshToken, error) {
	return m.repo.Get(token)
}

// Delete removes a refresh token from storage
func (m *Manager) Delete(token string) error {
	return m.repo.Delete(token)
}

// IsExpired checks if a refresh token is older than the configured lifetime
func (m *Manager) IsExpired(rt *StoredRefreshToken) bool {
	return NowTimeFunc().Sub(rt.Iat) > m.config.GetRefreshTokenExpiry()
}
