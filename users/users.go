package users

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// User is an account of the reference backend. It doubles as the profile resource.
type User struct {
	ID           string    `json:"id,omitempty"`
	Email        string    `json:"email,omitempty"` // unique, stored normalised
	Name         string    `json:"name,omitempty"`
	PasswordHash string    `json:"-"`
	DateJoined   time.Time `json:"date_joined,omitempty"`
	LastLogin    time.Time `json:"last_login,omitempty"`

	Blocked  bool `json:"blocked,omitempty"`
	LoggedIn bool `json:"loggedIn,omitempty"` // holds a live refresh token
}

// NormaliseEmail lower-cases and trims an email so lookups are case insensitive
func NormaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

const minPasswordLength = 8

var passwordRules = []struct {
	match func(rune) bool
	msg   string
}{
	{unicode.IsUpper, "password must contain at least one uppercase letter"},
	{unicode.IsLower, "password must contain at least one lowercase letter"},
	{unicode.IsDigit, "password must contain at least one number"},
}

// ValidatePasswordStrength requires minPasswordLength characters with upper case, lower
// case and a digit.
func ValidatePasswordStrength(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLength)
	}
	for _, rule := range passwordRules {
		if !strings.ContainsFunc(password, rule.match) {
			return errors.New(rule.msg)
		}
	}
	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CheckPassword checks a plain text password against the user's stored hash
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.PasswordHash)
}
