package http

import (
	"net/http"

	"github.com/jjxapp/authic/internal/authic/service"
	"github.com/jjxapp/authic/pkg/authsdk"
	"github.com/jjxapp/authic/pkg/httpx"
)

type VerifyEmailHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP redeems an email verification code and marks the account
// verified.
func (h *VerifyEmailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "Invalid form data")
		return
	}

	email := r.FormValue("email")
	code := r.FormValue("code")

	if email == "" || code == "" {
		writeError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest,
			"email and code are required")
		return
	}

	if err := h.AccountService.VerifyEmail(ctx, email, code); err != nil {
		writeRedeemError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{
		Message: "Email verified",
	})
}
