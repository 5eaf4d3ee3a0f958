package http

import (
	"net/http"
	"time"

	"github.com/jjxapp/authic/internal/authic/store"
	"github.com/jjxapp/authic/pkg/authsdk"
	"github.com/jjxapp/authic/pkg/httpx"
	"github.com/jjxapp/authic/pkg/jwtx"
)

// ReadyzHandler is the readiness probe. It checks the database connection and
// the signing keypair and returns 503 when either is unavailable.
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	keys *jwtx.Keypair,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &authsdk.HealthChecks{
			Database: "ok",
			Signer:   "ok",
		}
		status := "ok"
		code := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "unavailable"
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		if keys == nil {
			checks.Signer = "unavailable"
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, authsdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
