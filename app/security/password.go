package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the work factor the storefront has always used for
// stored credentials. Raising it invalidates no existing hashes; bcrypt
// embeds the cost in the output.
const bcryptCost = 10

// HashPassword hashes a plaintext password with bcrypt. A random salt is
// baked into every output, so two calls on the same input produce different
// hashes that both verify.
func HashPassword(plain string) (string, error) {
	if plain == "" {
		return "", fmt.Errorf("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
// Mismatches and malformed hashes both degrade to false; this function
// never returns an error to its callers.
func VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
