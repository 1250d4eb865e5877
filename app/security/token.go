package security

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims binds a session token to an account.
type SessionClaims struct {
	AccountID string `json:"id"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// TokenSigner issues and verifies bearer session tokens. It is stateless
// aside from the signing secret, which is loaded once at startup and passed
// in explicitly rather than read from the environment on every call.
type TokenSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenSigner builds a signer from the process-wide secret and token TTL.
func NewTokenSigner(secret string, ttl time.Duration) *TokenSigner {
	return &TokenSigner{secret: []byte(secret), ttl: ttl}
}

// Issue signs a time-bounded HS256 token carrying the account id and email.
func (s *TokenSigner) Issue(accountID, email string) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("signing secret is not set")
	}
	now := time.Now()
	claims := SessionClaims{
		AccountID: accountID,
		Email:     email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a bearer token and returns its claims. Tampered, expired and
// malformed tokens are all rejected.
func (s *TokenSigner) Verify(tokenStr string) (*SessionClaims, error) {
	if len(s.secret) == 0 {
		return nil, fmt.Errorf("signing secret is not set")
	}
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
