package users

// UserRepo stores accounts. Implementations hand out copies, so a returned *User may be
// modified freely and persisted with Upsert.
type UserRepo interface {
	Upsert(user *User) error
	GetByEmail(email string) (*User, error)
	GetByID(id string) (*User, error)
	SetBlocked(email string, blocked bool) error
	SetLoggedIn(email string, loggedIn bool) error
}
