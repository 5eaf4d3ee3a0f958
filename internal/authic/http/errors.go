package http

import (
	"errors"
	"net/http"

	"github.com/jjxapp/authic/internal/authic/service"
	"github.com/jjxapp/authic/pkg/authsdk"
	"github.com/jjxapp/authic/pkg/httpx"
	"github.com/jjxapp/authic/pkg/slogx"
)

func writeError(w http.ResponseWriter, status int, code, desc string) {
	httpx.WriteJSON(w, status, authsdk.ErrorResponse{
		Error:            code,
		ErrorDescription: desc,
	})
}

// writeRedeemError maps a redemption failure onto the wire. Every credential
// failure collapses into the same body so a caller cannot distinguish
// unknown-email from no-challenge from wrong-code from expired-code.
func writeRedeemError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrTooManyAttempts):
		writeError(w, http.StatusTooManyRequests, authsdk.ErrorCodeTooManyAttempts,
			"Too many attempts, try again later")
	case errors.Is(err, service.ErrNoActiveChallenge),
		errors.Is(err, service.ErrChallengeExpired),
		errors.Is(err, service.ErrCodeMismatch),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidPurpose):
		writeError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidCode,
			"Code is invalid or expired")
	default:
		slogx.FromContext(r.Context()).Error("redemption failed", "err", err)
		writeError(w, http.StatusInternalServerError, authsdk.ErrorCodeServerError,
			"Failed to process request")
	}
}

// writeIssueError maps an issuance failure onto the wire.
func writeIssueError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrResendCooldown):
		writeError(w, http.StatusTooManyRequests, authsdk.ErrorCodeCooldown,
			"A code was sent recently, wait before requesting another")
	case errors.Is(err, service.ErrDeliveryFailed):
		slogx.FromContext(r.Context()).Error("code delivery failed", "err", err)
		writeError(w, http.StatusInternalServerError, authsdk.ErrorCodeServerError,
			"Failed to deliver code")
	case errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidPurpose):
		writeError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest,
			"Invalid request parameters")
	default:
		slogx.FromContext(r.Context()).Error("code issuance failed", "err", err)
		writeError(w, http.StatusInternalServerError, authsdk.ErrorCodeServerError,
			"Failed to process request")
	}
}
