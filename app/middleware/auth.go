package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/tstore-shop/account-service/app/security"
)

type ctxKey string

const (
	ctxAccountID ctxKey = "accountID"
	ctxEmail     ctxKey = "email"
)

// BearerAuth validates the Authorization header against the token signer and
// injects the token's subject into the request context.
func BearerAuth(signer *security.TokenSigner) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				http.Error(w, "missing or invalid authorization header", http.StatusUnauthorized)
				return
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := signer.Verify(tokenStr)
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ctxAccountID, claims.AccountID)
			ctx = context.WithValue(ctx, ctxEmail, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AccountIDFromContext retrieves the account id set by BearerAuth.
func AccountIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxAccountID).(string)
	return v, ok && v != ""
}

// EmailFromContext retrieves the email set by BearerAuth.
func EmailFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxEmail).(string)
	return v, ok && v != ""
}
