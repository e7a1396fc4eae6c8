// Package badgerrepo stores refresh tokens in BadgerDB so sessions survive restarts.
package badgerrepo

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	apperrors "github.com/jrsteele09/go-session-refresh/internal/errors"
	"github.com/jrsteele09/go-session-refresh/token/refresh"
)

// Key prefixes for BadgerDB storage
const (
	tokenKeyPrefix = "refresh:"
	userKeyPrefix  = "refresh_user:"
)

var _ refresh.Repo = (*BadgerRefreshTokenRepo)(nil)

type BadgerRefreshTokenRepo struct {
	db *badger.DB
}

func New(db *badger.DB) *BadgerRefreshTokenRepo {
	return &BadgerRefreshTokenRepo{db: db}
}

// Open opens (or creates) a database in dir. An empty dir gives an in-memory database.
func Open(dir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", dir, err)
	}
	return db, nil
}

func (r *BadgerRefreshTokenRepo) Upsert(rt *refresh.StoredRefreshToken) error {
	data, err := json.Marshal(rt)
	if err != nil {
		return fmt.Errorf("marshal refresh token: %w", err)
	}

	return r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(tokenKeyPrefix+rt.Token), data); err != nil {
			return fmt.Errorf("set refresh token: %w", err)
		}
		if err := txn.Set([]byte(userKeyPrefix+rt.UserID), []byte(rt.Token)); err != nil {
			return fmt.Errorf("set user mapping: %w", err)
		}
		return nil
	})
}

func (r *BadgerRefreshTokenRepo) Delete(token string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		rt, err := getToken(txn, token)
		if err != nil {
			return err
		}
		if err := txn.Delete([]byte(tokenKeyPrefix + token)); err != nil {
			return fmt.Errorf("delete refresh token: %w", err)
		}

		// Only drop the user mapping if it still points at this token
		userKey := []byte(userKeyPrefix + rt.UserID)
		item, err := txn.Get(userKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get user mapping: %w", err)
		}
		current, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if string(current) == token {
			return txn.Delete(userKey)
		}
		return nil
	})
}

func (r *BadgerRefreshTokenRepo) Get(token string) (*refresh.StoredRefreshToken, error) {
	var rt *refresh.StoredRefreshToken
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		rt, err = getToken(txn, token)
		return err
	})
	return rt, err
}

func (r *BadgerRefreshTokenRepo) GetByUserID(userID string) (*refresh.StoredRefreshToken, error) {
	var rt *refresh.StoredRefreshToken
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userKeyPrefix + userID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return apperrors.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get user mapping: %w", err)
		}
		token, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		rt, err = getToken(txn, string(token))
		return err
	})
	return rt, err
}

func getToken(txn *badger.Txn, token string) (*refresh.StoredRefreshToken, error) {
	item, err := txn.Get([]byte(tokenKeyPrefix + token))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get refresh token: %w", err)
	}

	var rt refresh.StoredRefreshToken
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rt)
	}); err != nil {
		return nil, fmt.Errorf("decode refresh token: %w", err)
	}
	return &rt, nil
}
