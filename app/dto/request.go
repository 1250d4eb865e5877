package dto

// SignupRequest carries the multipart form fields of POST /users/signup.
// The photo file travels separately as a multipart part.
type SignupRequest struct {
	Name     string `json:"name" validate:"required,max=40"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginRequest represents the data needed to login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

// ForgotPasswordRequest asks for a password reset email.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

// PasswordResetRequest carries the new credentials for a reset. The one-time
// secret arrives in the URL path, not the body.
type PasswordResetRequest struct {
	Password        string `json:"password" validate:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,min=8,max=128"`
}
