package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tstore-shop/account-service/app/dto"
	"github.com/tstore-shop/account-service/app/errors"
	"github.com/tstore-shop/account-service/app/metrics"
	appmw "github.com/tstore-shop/account-service/app/middleware"
	"github.com/tstore-shop/account-service/app/services"
)

// signupHandler handles user registration (multipart: name, email, password, photo).
func (app *application) signupHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeErrorResponse(w, errors.NewValidation("invalid multipart form"))
		return
	}

	req := dto.SignupRequest{
		Name:     sanitizeInput(r.FormValue("name"), 40, false),
		Email:    sanitizeEmail(r.FormValue("email"), 255),
		Password: sanitizeInput(r.FormValue("password"), 128, true),
	}
	if err := validateRequest(&req); err != nil {
		writeErrorResponse(w, err)
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		writeErrorResponse(w, errors.NewValidation("photo is required to signup"))
		return
	}
	defer file.Close()

	photo := &services.PhotoUpload{
		Data:        file,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
	}

	resp, appErr := app.accounts.Signup(r.Context(), req, photo)
	if appErr != nil {
		writeErrorResponse(w, appErr)
		return
	}

	metrics.RecordSignup()
	writeJSON(w, http.StatusCreated, resp)
}

// loginHandler handles credential login.
func (app *application) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, errors.NewValidation("invalid request body"))
		return
	}

	req.Email = sanitizeEmail(req.Email, 255)
	req.Password = sanitizeInput(req.Password, 128, true)

	if err := validateRequest(&req); err != nil {
		writeErrorResponse(w, err)
		return
	}

	resp, appErr := app.accounts.Login(r.Context(), req)
	if appErr != nil {
		writeErrorResponse(w, appErr)
		return
	}

	metrics.RecordLogin()
	writeJSON(w, http.StatusOK, resp)
}

// forgotPasswordHandler kicks off the emailed reset flow. The reset link base
// is derived from the incoming request so the emailed URL points back at the
// same host the client reached us on.
func (app *application) forgotPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, errors.NewValidation("invalid request body"))
		return
	}

	req.Email = sanitizeEmail(req.Email, 255)

	if err := validateRequest(&req); err != nil {
		writeErrorResponse(w, err)
		return
	}

	resetBaseURL := requestScheme(r) + "://" + r.Host + "/users/password/reset/"

	resp, appErr := app.accounts.ForgotPassword(r.Context(), resetBaseURL, req.Email)
	if appErr != nil {
		writeErrorResponse(w, appErr)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// passwordResetHandler consumes an emailed reset secret.
func (app *application) passwordResetHandler(w http.ResponseWriter, r *http.Request) {
	secret := chi.URLParam(r, "token")

	var req dto.PasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, errors.NewValidation("invalid request body"))
		return
	}

	req.Password = sanitizeInput(req.Password, 128, true)
	req.ConfirmPassword = sanitizeInput(req.ConfirmPassword, 128, true)

	if err := validateRequest(&req); err != nil {
		writeErrorResponse(w, err)
		return
	}

	resp, appErr := app.accounts.PasswordReset(r.Context(), secret, req)
	if appErr != nil {
		writeErrorResponse(w, appErr)
		return
	}

	metrics.RecordPasswordReset()
	writeJSON(w, http.StatusOK, resp)
}

// meHandler returns the authenticated account.
func (app *application) meHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := appmw.AccountIDFromContext(r.Context())
	if !ok {
		http.Error(w, "account not found in context", http.StatusUnauthorized)
		return
	}

	resp, appErr := app.accounts.GetAccount(r.Context(), accountID)
	if appErr != nil {
		writeErrorResponse(w, appErr)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func requestScheme(r *http.Request) string {
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeErrorResponse writes an error response in a consistent format.
func writeErrorResponse(w http.ResponseWriter, appErr *errors.AppError) {
	writeJSON(w, appErr.Status, dto.ErrorResponse{
		Error: appErr.Message,
		Code:  string(appErr.Code),
	})
}
