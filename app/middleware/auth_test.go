package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tstore-shop/account-service/app/security"
)

/*
BearerAuth Test Cases:

1. TestBearerAuth_MissingHeader
   - No Authorization header -> 401, handler not reached

2. TestBearerAuth_WrongScheme
   - Non-Bearer scheme -> 401

3. TestBearerAuth_InvalidToken
   - Garbage token -> 401

4. TestBearerAuth_ExpiredToken
   - Token past its expiry -> 401

5. TestBearerAuth_ValidToken
   - Claims injected into the request context
*/

func authTestHandler(t *testing.T, wantID, wantEmail string, reached *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*reached = true
		id, ok := AccountIDFromContext(r.Context())
		assert.True(t, ok)
		assert.Equal(t, wantID, id)
		email, ok := EmailFromContext(r.Context())
		assert.True(t, ok)
		assert.Equal(t, wantEmail, email)
		w.WriteHeader(http.StatusOK)
	})
}

func TestBearerAuth_MissingHeader(t *testing.T) {
	signer := security.NewTokenSigner("mw-test-secret", time.Hour)
	reached := false
	h := BearerAuth(signer)(authTestHandler(t, "", "", &reached))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
}

func TestBearerAuth_WrongScheme(t *testing.T) {
	signer := security.NewTokenSigner("mw-test-secret", time.Hour)
	reached := false
	h := BearerAuth(signer)(authTestHandler(t, "", "", &reached))

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
}

func TestBearerAuth_InvalidToken(t *testing.T) {
	signer := security.NewTokenSigner("mw-test-secret", time.Hour)
	reached := false
	h := BearerAuth(signer)(authTestHandler(t, "", "", &reached))

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer not.a.valid.jwt")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
}

func TestBearerAuth_ExpiredToken(t *testing.T) {
	expiredSigner := security.NewTokenSigner("mw-test-secret", -time.Minute)
	token, err := expiredSigner.Issue("acc-1", "alice@x.com")
	require.NoError(t, err)

	signer := security.NewTokenSigner("mw-test-secret", time.Hour)
	reached := false
	h := BearerAuth(signer)(authTestHandler(t, "", "", &reached))

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
}

func TestBearerAuth_ValidToken(t *testing.T) {
	signer := security.NewTokenSigner("mw-test-secret", time.Hour)
	token, err := signer.Issue("acc-1", "alice@x.com")
	require.NoError(t, err)

	reached := false
	h := BearerAuth(signer)(authTestHandler(t, "acc-1", "alice@x.com", &reached))

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, reached)
}
