package http

import (
	"errors"
	"net/http"

	"github.com/jjxapp/authic/internal/authic/service"
	"github.com/jjxapp/authic/pkg/authsdk"
	"github.com/jjxapp/authic/pkg/httpx"
)

type ResetPasswordHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP redeems a password reset code and replaces the account's
// credential.
func (h *ResetPasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "Invalid form data")
		return
	}

	email := r.FormValue("email")
	code := r.FormValue("code")
	newPassword := r.FormValue("new_password")

	if email == "" || code == "" || newPassword == "" {
		writeError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest,
			"email, code and new_password are required")
		return
	}

	if err := h.AccountService.ResetPassword(ctx, email, code, newPassword); err != nil {
		if errors.Is(err, service.ErrInvalidPassword) {
			writeError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest,
				"Password does not meet requirements")
			return
		}
		writeRedeemError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{
		Message: "Password updated",
	})
}
