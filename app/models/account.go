package models

import "time"

// Roles assignable to an account. New signups always start as RoleUser.
const (
	RoleUser    = "user"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// Photo references an image stored in the object store. Opaque beyond
// pass-through display.
type Photo struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Account is the persisted user record. It holds no behavior; hashing and
// token logic live in the security package. PasswordHash is excluded from the
// store's default read projection and must never leave the service layer.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	Photo        Photo

	// ResetTokenHash/ResetTokenExpiry are either both set or both empty.
	// They are cleared by a successful password reset.
	ResetTokenHash   string
	ResetTokenExpiry time.Time

	CreatedAt time.Time
}

// HasPendingReset reports whether a reset secret is outstanding.
func (a *Account) HasPendingReset() bool {
	return a.ResetTokenHash != "" && !a.ResetTokenExpiry.IsZero()
}
