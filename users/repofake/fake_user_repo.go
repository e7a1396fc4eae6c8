package fakeuserrepo

import (
	"sync"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-session-refresh/internal/errors"
	"github.com/jrsteele09/go-session-refresh/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

// FakeUserRepo is an in-memory UserRepo keyed by id with an email index.
type FakeUserRepo struct {
	lock     sync.RWMutex
	users    map[string]users.User
	emailIDs map[string]string
}

func NewFakeUserRepo() users.UserRepo {
	return &FakeUserRepo{
		users:    make(map[string]users.User),
		emailIDs: make(map[string]string),
	}
}

// Upsert assigns an id to new users and stores a copy.
func (ur *FakeUserRepo) Upsert(user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.Email = users.NormaliseEmail(user.Email)
	if prev, ok := ur.users[user.ID]; ok && prev.Email != user.Email {
		delete(ur.emailIDs, prev.Email)
	}
	ur.users[user.ID] = *user
	ur.emailIDs[user.Email] = user.ID
	return nil
}

func (ur *FakeUserRepo) GetByEmail(email string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.emailIDs[users.NormaliseEmail(email)]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	u := ur.users[id]
	return &u, nil
}

func (ur *FakeUserRepo) GetByID(id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	u, ok := ur.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return &u, nil
}

func (ur *FakeUserRepo) SetBlocked(email string, blocked bool) error {
	return ur.update(email, func(u *users.User) { u.Blocked = blocked })
}

func (ur *FakeUserRepo) SetLoggedIn(email string, loggedIn bool) error {
	return ur.update(email, func(u *users.User) { u.LoggedIn = loggedIn })
}

func (ur *FakeUserRepo) update(email string, fn func(u *users.User)) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	id, ok := ur.emailIDs[users.NormaliseEmail(email)]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u := ur.users[id]
	fn(&u)
	ur.users[id] = u
	return nil
}
