package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tstore-shop/account-service/app/models"
)

// Storage bundles the persistence interfaces the service layer depends on.
type Storage struct {
	Accounts interface {
		// Create persists a new account and fills in ID and CreatedAt.
		Create(ctx context.Context, account *models.Account) error
		// GetByEmail reads an account without its password hash.
		GetByEmail(ctx context.Context, email string) (*models.Account, error)
		// GetByEmailWithPassword includes the password hash, which the
		// default projection excludes.
		GetByEmailWithPassword(ctx context.Context, email string) (*models.Account, error)
		// GetByID reads an account without its password hash.
		GetByID(ctx context.Context, id string) (*models.Account, error)
		// GetByResetTokenHash finds the account holding an unexpired reset
		// token with the given digest. Includes the password hash so the
		// reset flow can compare against the current credential.
		GetByResetTokenHash(ctx context.Context, hash string, now time.Time) (*models.Account, error)
		// SetResetToken writes only the reset token fields, overwriting any
		// previously outstanding token.
		SetResetToken(ctx context.Context, id, hash string, expiry time.Time) error
		// UpdatePassword replaces the password hash and clears both reset
		// token fields in the same write.
		UpdatePassword(ctx context.Context, id, passwordHash string) error
	}
}

// NewStorage wires the Postgres-backed stores.
func NewStorage(db *sql.DB) Storage {
	return Storage{
		Accounts: &AccountsStore{db: db},
	}
}

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation, e.g. a duplicate email at signup.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
