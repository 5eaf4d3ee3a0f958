package http

import (
	"errors"
	"net/http"

	"github.com/jjxapp/authic/internal/authic/service"
	"github.com/jjxapp/authic/pkg/authsdk"
	"github.com/jjxapp/authic/pkg/httpx"
	"github.com/jjxapp/authic/pkg/slogx"
)

type RegisterHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP creates an unverified account and triggers delivery of its email
// verification code.
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "Invalid form data")
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")

	if email == "" {
		writeError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "email is required")
		return
	}
	if password == "" {
		writeError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "password is required")
		return
	}

	account, err := h.AccountService.Register(ctx, email, password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			writeError(w, http.StatusConflict, authsdk.ErrorCodeEmailTaken,
				"Email is already registered")
		case errors.Is(err, service.ErrInvalidEmail):
			writeError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest,
				"Invalid email address")
		case errors.Is(err, service.ErrInvalidPassword):
			writeError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest,
				"Password does not meet requirements")
		default:
			log.Error("failed to register account", "err", err)
			writeError(w, http.StatusInternalServerError, authsdk.ErrorCodeServerError,
				"Failed to register account")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.RegisterResponse{
		AccountID: account.ID,
		Email:     account.Email,
		Status:    string(account.Status),
	})
}
