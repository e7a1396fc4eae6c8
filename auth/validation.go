package auth

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jrsteele09/go-session-refresh/users"
)

// Validator checks request bodies against their struct tags and the password policy.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// ValidateStruct returns a readable message naming the first failing fields.
func (v *Validator) ValidateStruct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	}
	return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
}

// ValidateRegistration applies the struct rules and then the password strength policy.
func (v *Validator) ValidateRegistration(req RegisterRequest) error {
	if err := v.ValidateStruct(req); err != nil {
		return err
	}
	if err := users.ValidatePasswordStrength(req.Password); err != nil {
		return fmt.Errorf("%w: %v", WeakPasswordErr, err)
	}
	return nil
}
