package http

import (
	"net/http"

	"github.com/jjxapp/authic/internal/authic/service"
	"github.com/jjxapp/authic/pkg/authsdk"
	"github.com/jjxapp/authic/pkg/httpx"
)

type ForgotPasswordHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP issues a password reset code for the account behind the email.
// The 202 body is identical whether or not the email is registered.
func (h *ForgotPasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "Invalid form data")
		return
	}

	email := r.FormValue("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "email is required")
		return
	}

	if err := h.AccountService.ForgotPassword(ctx, email); err != nil {
		writeIssueError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusAccepted, authsdk.MessageResponse{
		Message: "If the account exists, a code has been sent",
	})
}
