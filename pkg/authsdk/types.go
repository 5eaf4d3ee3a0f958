package authsdk

// ErrorResponse is the standard error payload returned by the service. Error
// bodies are deliberately generic: a failed code redemption never reveals
// whether the account exists, which check failed, or how many attempts remain.
type ErrorResponse struct {
	// Error is the machine-readable error code (e.g., "invalid_request",
	// "invalid_code")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`
}

// RegisterResponse is returned from POST /v1/register.
type RegisterResponse struct {
	// AccountID is the ULID of the newly created account
	AccountID string `json:"account_id"`

	// Email is the normalized registered email
	Email string `json:"email"`

	// Status is always "unverified" at registration
	Status string `json:"status"`
}

// TokenResponse is returned from POST /v1/login.
type TokenResponse struct {
	// AccessToken is the EdDSA-signed JWT used to authenticate API requests
	AccessToken string `json:"access_token"`

	// TokenType is always "Bearer"
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token
	ExpiresIn int `json:"expires_in"`
}

// MessageResponse is a minimal acknowledgement body. Code issuance endpoints
// return the same body whether or not a code was actually sent, so they leak
// no account state.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserInfoResponse is returned from GET /v1/me.
type UserInfoResponse struct {
	AccountID     string `json:"account_id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// HealthChecks reports the status of critical dependencies.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// HealthResponse is returned from the /livez and /readyz probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
