package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/tstore-shop/account-service/app/dto"
	appErrors "github.com/tstore-shop/account-service/app/errors"
	"github.com/tstore-shop/account-service/app/logger"
	"github.com/tstore-shop/account-service/app/models"
	"github.com/tstore-shop/account-service/app/security"
	"github.com/tstore-shop/account-service/app/store"
)

// Identical message for "no such account" and "wrong password" so the login
// endpoint gives no email-enumeration signal.
const loginFailedMessage = "user does not exist or password is incorrect"

const resetEmailSubject = "T-Store - Password reset email"

// PhotoStore is the object-store collaborator the signup flow uploads to.
type PhotoStore interface {
	Upload(ctx context.Context, data io.Reader, size int64, contentType string) (models.Photo, error)
	Delete(ctx context.Context, id string) error
}

// Mailer is the email collaborator the forgot-password flow dispatches through.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// PhotoUpload is an incoming photo file, decoupled from multipart mechanics.
type PhotoUpload struct {
	Data        io.Reader
	Size        int64
	ContentType string
}

// AccountService orchestrates signup, login, forgot-password and
// password-reset over the store and external collaborators.
type AccountService struct {
	store  store.Storage
	photos PhotoStore
	mailer Mailer
	signer *security.TokenSigner
}

// NewAccountService creates a new AccountService.
func NewAccountService(store store.Storage, photos PhotoStore, mailer Mailer, signer *security.TokenSigner) *AccountService {
	return &AccountService{
		store:  store,
		photos: photos,
		mailer: mailer,
		signer: signer,
	}
}

// Signup registers a new account. The photo must upload successfully before
// the account row is created; a stored photo reference is mandatory.
func (s *AccountService) Signup(ctx context.Context, req dto.SignupRequest, photo *PhotoUpload) (*dto.AuthResponse, *appErrors.AppError) {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, appErrors.NewValidation("name, email and password are required")
	}
	if photo == nil || photo.Data == nil {
		return nil, appErrors.NewValidation("photo is required to signup")
	}

	stored, err := s.photos.Upload(ctx, photo.Data, photo.Size, photo.ContentType)
	if err != nil {
		return nil, appErrors.NewUpload(err)
	}

	passwordHash, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, appErrors.NewInternal("error hashing password")
	}

	account := &models.Account{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         models.RoleUser,
		Photo:        stored,
	}
	if err := s.store.Accounts.Create(ctx, account); err != nil {
		// The photo is already in the object store; clean it up best-effort
		// so failed signups do not leak orphaned objects.
		if delErr := s.photos.Delete(ctx, stored.ID); delErr != nil {
			log := getLoggerFromContext(ctx)
			log.Warn().
				Err(delErr).
				Str("photo_id", stored.ID).
				Msg("failed to delete photo after signup failure")
		}
		if store.IsUniqueViolation(err) {
			return nil, appErrors.NewValidation("email already in use")
		}
		return nil, appErrors.NewInternal("error creating account")
	}

	token, err := s.signer.Issue(account.ID, account.Email)
	if err != nil {
		return nil, appErrors.NewSigning(err)
	}

	return &dto.AuthResponse{
		User:  dto.NewAccountResponse(account),
		Token: token,
	}, nil
}

// Login verifies credentials and issues a fresh session token.
func (s *AccountService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, *appErrors.AppError) {
	account, err := s.store.Accounts.GetByEmailWithPassword(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewAuthenticationFailed(loginFailedMessage)
		}
		return nil, appErrors.NewInternal("error getting account by email")
	}

	if !security.VerifyPassword(req.Password, account.PasswordHash) {
		return nil, appErrors.NewAuthenticationFailed(loginFailedMessage)
	}

	token, err := s.signer.Issue(account.ID, account.Email)
	if err != nil {
		return nil, appErrors.NewSigning(err)
	}

	return &dto.AuthResponse{
		User:  dto.NewAccountResponse(account),
		Token: token,
	}, nil
}

// ForgotPassword issues a one-time reset secret and emails the reset link.
// Reissuing overwrites any previously outstanding secret; only one hash and
// expiry pair is stored per account.
func (s *AccountService) ForgotPassword(ctx context.Context, resetBaseURL, email string) (*dto.MessageResponse, *appErrors.AppError) {
	account, err := s.store.Accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewNotFound("user")
		}
		return nil, appErrors.NewInternal("error getting account by email")
	}

	reset, err := security.IssueResetToken()
	if err != nil {
		return nil, appErrors.NewInternal("error generating reset token")
	}

	if err := s.store.Accounts.SetResetToken(ctx, account.ID, reset.Hash, reset.Expiry); err != nil {
		return nil, appErrors.NewInternal("error storing reset token")
	}

	body := fmt.Sprintf("Follow the link below to reset your password\n\n%s%s", resetBaseURL, reset.PlainSecret)
	if err := s.mailer.Send(ctx, account.Email, resetEmailSubject, body); err != nil {
		// The persisted token is not rolled back; the caller can simply
		// request forgot-password again, which reissues and overwrites it.
		log := getLoggerFromContext(ctx)
		log.Error().
			Err(err).
			Str("email", account.Email).
			Msg("reset token persisted but email delivery failed")
		return nil, appErrors.NewEmailDelivery(err)
	}

	return &dto.MessageResponse{Message: "Email sent successfully"}, nil
}

// PasswordReset consumes a reset secret and replaces the credential. A
// successful reset clears the stored token pair, so the secret is single-use.
func (s *AccountService) PasswordReset(ctx context.Context, secret string, req dto.PasswordResetRequest) (*dto.AuthResponse, *appErrors.AppError) {
	account, err := s.store.Accounts.GetByResetTokenHash(ctx, security.HashResetSecret(secret), time.Now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewInvalidOrExpiredToken()
		}
		return nil, appErrors.NewInternal("error looking up reset token")
	}
	if !security.VerifyResetToken(secret, account.ResetTokenHash, account.ResetTokenExpiry) {
		return nil, appErrors.NewInvalidOrExpiredToken()
	}

	if req.Password == "" || req.ConfirmPassword == "" || req.Password != req.ConfirmPassword {
		return nil, appErrors.NewValidation("password and confirm password do not match")
	}

	if security.VerifyPassword(req.Password, account.PasswordHash) {
		return nil, appErrors.NewValidation("new password cannot be same as old password")
	}

	newHash, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, appErrors.NewInternal("error hashing new password")
	}

	if err := s.store.Accounts.UpdatePassword(ctx, account.ID, newHash); err != nil {
		return nil, appErrors.NewInternal("error updating password")
	}
	account.PasswordHash = newHash
	account.ResetTokenHash = ""
	account.ResetTokenExpiry = time.Time{}

	token, err := s.signer.Issue(account.ID, account.Email)
	if err != nil {
		return nil, appErrors.NewSigning(err)
	}

	return &dto.AuthResponse{
		User:  dto.NewAccountResponse(account),
		Token: token,
	}, nil
}

// GetAccount loads an account by id for the authenticated-user endpoint.
func (s *AccountService) GetAccount(ctx context.Context, id string) (*dto.AccountResponse, *appErrors.AppError) {
	account, err := s.store.Accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewNotFound("user")
		}
		return nil, appErrors.NewInternal("error getting account")
	}
	resp := dto.NewAccountResponse(account)
	return &resp, nil
}

// getLoggerFromContext retrieves logger from context or returns global logger.
func getLoggerFromContext(ctx context.Context) zerolog.Logger {
	if log := zerolog.Ctx(ctx); log.GetLevel() != zerolog.Disabled {
		return *log
	}
	return logger.Logger
}
