package auth_test

import (
	"testing"

	"github.com/jrsteele09/go-session-refresh/auth"
	"github.com/stretchr/testify/require"
)

func TestValidator_ValidateRegistration(t *testing.T) {
	v := auth.NewValidator()

	t.Run("valid", func(t *testing.T) {
		err := v.ValidateRegistration(auth.RegisterRequest{Email: "ada@example.com", Name: "Ada", Password: "Secret123!"})
		require.NoError(t, err)
	})

	t.Run("missing fields", func(t *testing.T) {
		err := v.ValidateRegistration(auth.RegisterRequest{})
		require.Error(t, err)
		require.Contains(t, err.Error(), "email is required")
		require.Contains(t, err.Error(), "name is required")
		require.Contains(t, err.Error(), "password is required")
	})

	t.Run("bad email", func(t *testing.T) {
		err := v.ValidateRegistration(auth.RegisterRequest{Email: "not-an-email", Name: "Ada", Password: "Secret123!"})
		require.Error(t, err)
		require.Contains(t, err.Error(), "valid email")
	})

	t.Run("weak password", func(t *testing.T) {
		err := v.ValidateRegistration(auth.RegisterRequest{Email: "ada@example.com", Name: "Ada", Password: "alllowercase"})
		require.ErrorIs(t, err, auth.WeakPasswordErr)
		require.Contains(t, err.Error(), "uppercase")
	})
}

func TestValidator_ValidateStruct(t *testing.T) {
	v := auth.NewValidator()

	require.NoError(t, v.ValidateStruct(auth.LoginRequest{Email: "ada@example.com", Password: "x"}))

	err := v.ValidateStruct(auth.ProfileUpdate{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "name is required")
}
