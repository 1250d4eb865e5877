package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appmw "github.com/tstore-shop/account-service/app/middleware"
	"github.com/tstore-shop/account-service/app/models"
	"github.com/tstore-shop/account-service/app/security"
	"github.com/tstore-shop/account-service/app/services"
	"github.com/tstore-shop/account-service/app/store"
)

/*
Handler Test Cases:

1. TestSignupHandler_Success
   - Multipart signup -> 201, token in body, email stored lowercase

2. TestSignupHandler_MissingPhoto
   - 400 with the photo-required message

3. TestSignupHandler_InvalidEmail
   - Validator rejects before the service runs

4. TestLoginHandler_Success
   - JSON login -> 200 with token

5. TestLoginHandler_BadCredentials
   - 401 with AUTHENTICATION_FAILED code

6. TestForgotPasswordHandler_UnknownEmail
   - 404 NOT_FOUND passes through unmasked

7. TestPasswordResetHandler_InvalidToken
   - 400 INVALID_OR_EXPIRED_TOKEN

8. TestMeHandler_Auth
   - Missing/invalid bearer -> 401; valid token -> 200 with account
*/

type stubAccounts struct {
	createFn                 func(ctx context.Context, account *models.Account) error
	getByEmailFn             func(ctx context.Context, email string) (*models.Account, error)
	getByEmailWithPasswordFn func(ctx context.Context, email string) (*models.Account, error)
	getByIDFn                func(ctx context.Context, id string) (*models.Account, error)
	getByResetTokenHashFn    func(ctx context.Context, hash string, now time.Time) (*models.Account, error)
	setResetTokenFn          func(ctx context.Context, id, hash string, expiry time.Time) error
	updatePasswordFn         func(ctx context.Context, id, passwordHash string) error
}

func (s *stubAccounts) Create(ctx context.Context, account *models.Account) error {
	return s.createFn(ctx, account)
}

func (s *stubAccounts) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return s.getByEmailFn(ctx, email)
}

func (s *stubAccounts) GetByEmailWithPassword(ctx context.Context, email string) (*models.Account, error) {
	return s.getByEmailWithPasswordFn(ctx, email)
}

func (s *stubAccounts) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubAccounts) GetByResetTokenHash(ctx context.Context, hash string, now time.Time) (*models.Account, error) {
	return s.getByResetTokenHashFn(ctx, hash, now)
}

func (s *stubAccounts) SetResetToken(ctx context.Context, id, hash string, expiry time.Time) error {
	return s.setResetTokenFn(ctx, id, hash, expiry)
}

func (s *stubAccounts) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return s.updatePasswordFn(ctx, id, passwordHash)
}

type stubPhotos struct{}

func (stubPhotos) Upload(ctx context.Context, data io.Reader, size int64, contentType string) (models.Photo, error) {
	return models.Photo{ID: "users/test-photo", URL: "http://cdn/users/test-photo"}, nil
}

func (stubPhotos) Delete(ctx context.Context, id string) error { return nil }

type stubMailer struct{}

func (stubMailer) Send(ctx context.Context, to, subject, body string) error { return nil }

func newTestApplication(accounts *stubAccounts) *application {
	signer := security.NewTokenSigner("handler-test-secret", time.Hour)
	svc := services.NewAccountService(store.Storage{Accounts: accounts}, stubPhotos{}, stubMailer{}, signer)
	return &application{
		accounts: svc,
		signer:   signer,
	}
}

func buildSignupForm(t *testing.T, name, email, password string, withPhoto bool) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("name", name))
	require.NoError(t, writer.WriteField("email", email))
	require.NoError(t, writer.WriteField("password", password))
	if withPhoto {
		part, err := writer.CreateFormFile("photo", "avatar.jpg")
		require.NoError(t, err)
		_, err = part.Write([]byte("fake-jpeg-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) (string, string) {
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error, body.Code
}

func TestSignupHandler_Success(t *testing.T) {
	var created *models.Account
	accounts := &stubAccounts{
		createFn: func(ctx context.Context, account *models.Account) error {
			account.ID = "acc-1"
			account.CreatedAt = time.Now()
			created = account
			return nil
		},
	}
	app := newTestApplication(accounts)

	form, contentType := buildSignupForm(t, "Alice", "Alice@X.com", "Password123", true)
	req := httptest.NewRequest(http.MethodPost, "/users/signup", form)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	app.signupHandler(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, created)
	assert.Equal(t, "alice@x.com", created.Email, "stored email is lowercase")

	var resp struct {
		User struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "acc-1", resp.User.ID)
	assert.NotEmpty(t, resp.Token)
}

func TestSignupHandler_MissingPhoto(t *testing.T) {
	app := newTestApplication(&stubAccounts{})

	form, contentType := buildSignupForm(t, "Alice", "alice@x.com", "Password123", false)
	req := httptest.NewRequest(http.MethodPost, "/users/signup", form)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	app.signupHandler(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	msg, code := decodeErrorBody(t, rec)
	assert.Equal(t, "photo is required to signup", msg)
	assert.Equal(t, "VALIDATION_ERROR", code)
}

func TestSignupHandler_InvalidEmail(t *testing.T) {
	app := newTestApplication(&stubAccounts{})

	form, contentType := buildSignupForm(t, "Alice", "not-an-email", "Password123", true)
	req := httptest.NewRequest(http.MethodPost, "/users/signup", form)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	app.signupHandler(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	_, code := decodeErrorBody(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", code)
}

func TestLoginHandler_Success(t *testing.T) {
	hash, err := security.HashPassword("Password123")
	require.NoError(t, err)
	accounts := &stubAccounts{
		getByEmailWithPasswordFn: func(ctx context.Context, email string) (*models.Account, error) {
			return &models.Account{ID: "acc-1", Email: email, PasswordHash: hash, Role: models.RoleUser}, nil
		},
	}
	app := newTestApplication(accounts)

	req := httptest.NewRequest(http.MethodPost, "/users/login",
		strings.NewReader(`{"email":"alice@x.com","password":"Password123"}`))
	rec := httptest.NewRecorder()

	app.loginHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.Token)
}

func TestLoginHandler_BadCredentials(t *testing.T) {
	accounts := &stubAccounts{
		getByEmailWithPasswordFn: func(ctx context.Context, email string) (*models.Account, error) {
			return nil, sql.ErrNoRows
		},
	}
	app := newTestApplication(accounts)

	req := httptest.NewRequest(http.MethodPost, "/users/login",
		strings.NewReader(`{"email":"nobody@x.com","password":"whatever1"}`))
	rec := httptest.NewRecorder()

	app.loginHandler(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	msg, code := decodeErrorBody(t, rec)
	assert.Equal(t, "user does not exist or password is incorrect", msg)
	assert.Equal(t, "AUTHENTICATION_FAILED", code)
}

func TestForgotPasswordHandler_UnknownEmail(t *testing.T) {
	accounts := &stubAccounts{
		getByEmailFn: func(ctx context.Context, email string) (*models.Account, error) {
			return nil, sql.ErrNoRows
		},
	}
	app := newTestApplication(accounts)

	req := httptest.NewRequest(http.MethodPost, "/users/forgotPassword",
		strings.NewReader(`{"email":"nobody@x.com"}`))
	rec := httptest.NewRecorder()

	app.forgotPasswordHandler(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	_, code := decodeErrorBody(t, rec)
	assert.Equal(t, "NOT_FOUND", code)
}

func TestPasswordResetHandler_InvalidToken(t *testing.T) {
	accounts := &stubAccounts{
		getByResetTokenHashFn: func(ctx context.Context, hash string, now time.Time) (*models.Account, error) {
			return nil, sql.ErrNoRows
		},
	}
	app := newTestApplication(accounts)

	r := chi.NewRouter()
	r.Get("/users/password/reset/{token}", app.passwordResetHandler)

	req := httptest.NewRequest(http.MethodGet, "/users/password/reset/bogussecret",
		strings.NewReader(`{"password":"NewPassword1","confirmPassword":"NewPassword1"}`))
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	_, code := decodeErrorBody(t, rec)
	assert.Equal(t, "INVALID_OR_EXPIRED_TOKEN", code)
}

func TestMeHandler_Auth(t *testing.T) {
	accounts := &stubAccounts{
		getByIDFn: func(ctx context.Context, id string) (*models.Account, error) {
			return &models.Account{ID: id, Name: "Alice", Email: "alice@x.com", Role: models.RoleUser}, nil
		},
	}
	app := newTestApplication(accounts)

	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(appmw.BearerAuth(app.signer))
		pr.Get("/users/me", app.meHandler)
	})

	// no header
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// garbage token
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// valid token
	token, err := app.signer.Issue("acc-1", "alice@x.com")
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "acc-1", resp.ID)
	assert.Equal(t, "alice@x.com", resp.Email)
}
