package users_test

import (
	"testing"

	apperrors "github.com/jrsteele09/go-session-refresh/internal/errors"
	"github.com/jrsteele09/go-session-refresh/users"
	fakeuserrepo "github.com/jrsteele09/go-session-refresh/users/repofake"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		errPart  string
	}{
		{"valid", "Password123", ""},
		{"too short", "Pa1", "at least 8 characters"},
		{"no upper", "password123", "uppercase"},
		{"no lower", "PASSWORD123", "lowercase"},
		{"no number", "Passwordxyz", "number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := users.ValidatePasswordStrength(tt.password)
			if tt.errPart == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.errPart)
		})
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := users.HashPassword("Password123")
	require.NoError(t, err)

	u := &users.User{PasswordHash: hash}
	require.True(t, u.CheckPassword("Password123"))
	require.False(t, u.CheckPassword("password123"))
}

func TestFakeUserRepo(t *testing.T) {
	repo := fakeuserrepo.NewFakeUserRepo()

	u := &users.User{Email: " Jane@Example.com ", Name: "Jane"}
	require.NoError(t, repo.Upsert(u))
	require.NotEmpty(t, u.ID)

	t.Run("lookup is case insensitive", func(t *testing.T) {
		got, err := repo.GetByEmail("jane@example.COM")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
	})

	t.Run("flags", func(t *testing.T) {
		require.NoError(t, repo.SetLoggedIn("jane@example.com", true))
		require.NoError(t, repo.SetBlocked("jane@example.com", true))
		got, err := repo.GetByID(u.ID)
		require.NoError(t, err)
		require.True(t, got.LoggedIn)
		require.True(t, got.Blocked)
	})

	t.Run("returns copies", func(t *testing.T) {
		got, err := repo.GetByID(u.ID)
		require.NoError(t, err)
		got.Name = "Changed"

		again, err := repo.GetByID(u.ID)
		require.NoError(t, err)
		require.Equal(t, "Jane", again.Name)
	})

	t.Run("email change moves the index", func(t *testing.T) {
		got, err := repo.GetByID(u.ID)
		require.NoError(t, err)
		got.Email = "jane.doe@example.com"
		require.NoError(t, repo.Upsert(got))

		_, err = repo.GetByEmail("jane@example.com")
		require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		moved, err := repo.GetByEmail("jane.doe@example.com")
		require.NoError(t, err)
		require.Equal(t, u.ID, moved.ID)
		require.ErrorIs(t, repo.SetBlocked("jane@example.com", false), apperrors.ErrUserNotFound)
	})
}
