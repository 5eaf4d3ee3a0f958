package http

import (
	"errors"
	"net/http"

	"github.com/jjxapp/authic/internal/authic/service"
	"github.com/jjxapp/authic/pkg/authsdk"
	"github.com/jjxapp/authic/pkg/httpx"
	"github.com/jjxapp/authic/pkg/slogx"
)

type LoginHandler struct {
	LoginService *service.LoginService
}

// ServeHTTP exchanges email and password for an access token. Unknown email
// and wrong password produce the same response.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "Invalid form data")
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")

	if email == "" || password == "" {
		writeError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest,
			"email and password are required")
		return
	}

	token, err := h.LoginService.Login(ctx, email, password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, authsdk.ErrorCodeInvalidGrant,
				"Invalid email or password")
		case errors.Is(err, service.ErrTooManyAttempts):
			writeError(w, http.StatusTooManyRequests, authsdk.ErrorCodeTooManyAttempts,
				"Too many attempts, try again later")
		default:
			log.Error("failed to log in", "err", err)
			writeError(w, http.StatusInternalServerError, authsdk.ErrorCodeServerError,
				"Failed to process login")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresIn:   token.ExpiresIn,
	})
}
