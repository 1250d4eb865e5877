package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/tstore-shop/account-service/app/models"
)

type AccountsStore struct {
	db *sql.DB
}

func (s *AccountsStore) Create(ctx context.Context, account *models.Account) error {
	query := `
	INSERT INTO accounts (id, name, email, password_hash, role, photo_id, photo_url)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING created_at
	`

	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if account.Role == "" {
		account.Role = models.RoleUser
	}

	return s.db.QueryRowContext(ctx, query,
		account.ID,
		account.Name,
		account.Email,
		account.PasswordHash,
		account.Role,
		account.Photo.ID,
		account.Photo.URL,
	).Scan(&account.CreatedAt)
}

func (s *AccountsStore) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT id, name, email, role, photo_id, photo_url, created_at
	FROM accounts WHERE email = $1`
	var account models.Account
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.Role,
		&account.Photo.ID,
		&account.Photo.URL,
		&account.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *AccountsStore) GetByEmailWithPassword(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT id, name, email, password_hash, role, photo_id, photo_url, created_at
	FROM accounts WHERE email = $1`
	var account models.Account
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.PasswordHash,
		&account.Role,
		&account.Photo.ID,
		&account.Photo.URL,
		&account.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *AccountsStore) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT id, name, email, role, photo_id, photo_url, created_at
	FROM accounts WHERE id = $1`
	var account models.Account
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.Role,
		&account.Photo.ID,
		&account.Photo.URL,
		&account.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *AccountsStore) GetByResetTokenHash(ctx context.Context, hash string, now time.Time) (*models.Account, error) {
	query := `SELECT id, name, email, password_hash, role, photo_id, photo_url,
	reset_token_hash, reset_token_expiry, created_at
	FROM accounts WHERE reset_token_hash = $1 AND reset_token_expiry > $2`
	var account models.Account
	var resetHash sql.NullString
	var resetExpiry sql.NullTime
	err := s.db.QueryRowContext(ctx, query, hash, now).Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.PasswordHash,
		&account.Role,
		&account.Photo.ID,
		&account.Photo.URL,
		&resetHash,
		&resetExpiry,
		&account.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	account.ResetTokenHash = resetHash.String
	account.ResetTokenExpiry = resetExpiry.Time
	return &account, nil
}

// SetResetToken touches only the reset token columns. The rest of the record
// is left alone, so a password-less partial save needs no revalidation of the
// other required fields.
func (s *AccountsStore) SetResetToken(ctx context.Context, id, hash string, expiry time.Time) error {
	query := `UPDATE accounts SET reset_token_hash = $1, reset_token_expiry = $2 WHERE id = $3`
	res, err := s.db.ExecContext(ctx, query, hash, expiry, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

// UpdatePassword replaces the credential and clears the reset token pair in a
// single statement, which is what makes a reset secret single-use.
func (s *AccountsStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query := `UPDATE accounts SET password_hash = $1,
	reset_token_hash = NULL, reset_token_expiry = NULL WHERE id = $2`
	res, err := s.db.ExecContext(ctx, query, passwordHash, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
