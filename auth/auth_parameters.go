package auth

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"` // bcrypt ignores bytes past 72
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileUpdate is the body of PUT /profile
type ProfileUpdate struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}
