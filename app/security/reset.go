package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"
)

// resetSecretBytes is the entropy of a reset secret before hex encoding.
const resetSecretBytes = 20

// ResetTokenTTL is how long an emailed reset secret stays valid.
const ResetTokenTTL = 20 * time.Minute

// ResetToken pairs the plaintext secret handed to the user with the digest
// and expiry that get persisted. The plaintext is never stored; a database
// compromise does not reveal usable secrets.
type ResetToken struct {
	PlainSecret string
	Hash        string
	Expiry      time.Time
}

// IssueResetToken generates a random one-time secret and its storage digest.
// The secret already carries high entropy and is single-use with a short TTL,
// so a fast SHA-256 digest suffices here where passwords need salted bcrypt.
func IssueResetToken() (ResetToken, error) {
	b := make([]byte, resetSecretBytes)
	if _, err := rand.Read(b); err != nil {
		return ResetToken{}, fmt.Errorf("generate reset secret: %w", err)
	}
	secret := hex.EncodeToString(b)
	return ResetToken{
		PlainSecret: secret,
		Hash:        HashResetSecret(secret),
		Expiry:      time.Now().Add(ResetTokenTTL),
	}, nil
}

// HashResetSecret computes the storage digest of a reset secret. The store
// looks accounts up by this value.
func HashResetSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// VerifyResetToken reports whether a presented secret matches the stored
// digest and the expiry has not elapsed. Returns false on any mismatch,
// never an error.
func VerifyResetToken(presented, storedHash string, storedExpiry time.Time) bool {
	if presented == "" || storedHash == "" {
		return false
	}
	if !time.Now().Before(storedExpiry) {
		return false
	}
	digest := HashResetSecret(presented)
	return subtle.ConstantTimeCompare([]byte(digest), []byte(storedHash)) == 1
}
