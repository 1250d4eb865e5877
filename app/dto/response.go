package dto

import (
	"time"

	"github.com/tstore-shop/account-service/app/models"
)

// AccountResponse is the wire shape of an account. The password hash is never
// present here.
type AccountResponse struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Role      string       `json:"role"`
	Photo     models.Photo `json:"photo"`
	CreatedAt string       `json:"createdAt"`
}

// AuthResponse is returned by signup, login and password reset.
type AuthResponse struct {
	User  AccountResponse `json:"user"`
	Token string          `json:"token"`
}

// MessageResponse acknowledges an operation with no payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// NewAccountResponse strips the account down to its public fields.
func NewAccountResponse(a *models.Account) AccountResponse {
	return AccountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Role:      a.Role,
		Photo:     a.Photo,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
}
