package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jjxapp/authic/internal/authic/service"
	"github.com/jjxapp/authic/internal/authic/store"
	"github.com/jjxapp/authic/pkg/httpx"
	"github.com/jjxapp/authic/pkg/jwtx"
	"github.com/jjxapp/authic/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.Keypair
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store          store.Store
	AccountService *service.AccountService
	LoginService   *service.LoginService
}

func NewRouter(
	keys *jwtx.Keypair,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAccounts()
	r.registerCodes()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAccounts() {
	// POST /v1/register - strict rate limit (account creation)
	r.Mux.Handle("POST /v1/register",
		httpx.Chain(&RegisterHandler{AccountService: r.AccountService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /v1/login - strict rate limit keyed by IP and email so one
	// address cannot spread attempts across source IPs unchecked
	r.Mux.Handle("POST /v1/login",
		httpx.Chain(&LoginHandler{LoginService: r.LoginService},
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "email"),
		),
	)

	// GET /v1/me - moderate rate limit, bearer token required
	r.Mux.Handle("GET /v1/me",
		httpx.Chain(UserInfoHandler(),
			httpx.RateLimitByIP(httpx.ModerateLimit),
			httpx.AuthnMiddleware(r.keys),
		),
	)
}

func (r *Router) registerCodes() {
	// All code endpoints take credentials, so they share the strict
	// profile keyed by IP and email.
	limit := func() httpx.Middleware {
		return httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "email")
	}

	r.Mux.Handle("POST /v1/verify-email",
		httpx.Chain(&VerifyEmailHandler{AccountService: r.AccountService}, limit()),
	)
	r.Mux.Handle("POST /v1/resend-code",
		httpx.Chain(&ResendCodeHandler{AccountService: r.AccountService}, limit()),
	)
	r.Mux.Handle("POST /v1/forgot-password",
		httpx.Chain(&ForgotPasswordHandler{AccountService: r.AccountService}, limit()),
	)
	r.Mux.Handle("POST /v1/reset-password",
		httpx.Chain(&ResetPasswordHandler{AccountService: r.AccountService}, limit()),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
