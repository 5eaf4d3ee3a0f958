package http

import (
	"net/http"

	"github.com/jjxapp/authic/pkg/authsdk"
	"github.com/jjxapp/authic/pkg/httpx"
	"github.com/jjxapp/authic/pkg/jwtx"
)

// UserInfoHandler returns the authenticated account's profile from the token
// claims. It sits behind AuthnMiddleware, which has already verified the
// token and populated the context.
func UserInfoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := r.Context().Value(httpx.CtxKeyClaims).(*jwtx.Claims)
		if !ok {
			writeError(w, http.StatusUnauthorized, authsdk.ErrorCodeInvalidToken,
				"Missing token claims")
			return
		}

		httpx.WriteJSON(w, http.StatusOK, authsdk.UserInfoResponse{
			AccountID:     claims.Subject,
			Email:         claims.Email,
			EmailVerified: claims.EmailVerified,
		})
	}
}
