package http

import (
	"net/http"

	"github.com/jjxapp/authic/internal/authic/domain"
	"github.com/jjxapp/authic/internal/authic/service"
	"github.com/jjxapp/authic/pkg/authsdk"
	"github.com/jjxapp/authic/pkg/httpx"
)

type ResendCodeHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP supersedes the pair's active challenge and re-delivers a fresh
// code. The 202 body is identical whether or not anything was sent.
func (h *ResendCodeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "Invalid form data")
		return
	}

	email := r.FormValue("email")
	purpose := domain.Purpose(r.FormValue("purpose"))

	if email == "" {
		writeError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "email is required")
		return
	}
	if !purpose.Valid() {
		writeError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest,
			"purpose must be email_verify or password_reset")
		return
	}

	if err := h.AccountService.ResendCode(ctx, email, purpose); err != nil {
		writeIssueError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusAccepted, authsdk.MessageResponse{
		Message: "If the account exists, a code has been sent",
	})
}
