package authsdk

import "fmt"

// Error codes used by the service. The surface is intentionally small:
// distinct internal failures collapse into the same code so responses cannot
// be used to probe account state.
const (
	ErrorCodeInvalidRequest  = "invalid_request"
	ErrorCodeInvalidCode     = "invalid_code"
	ErrorCodeInvalidGrant    = "invalid_grant"
	ErrorCodeTooManyAttempts = "too_many_attempts"
	ErrorCodeCooldown        = "cooldown_active"
	ErrorCodeEmailTaken      = "email_taken"
	ErrorCodeServerError     = "server_error"
	ErrorCodeInvalidToken    = "invalid_token"
)

// APIError is the typed error the SDK client returns for non-2xx responses.
type APIError struct {
	// StatusCode is the HTTP status code of the response
	StatusCode int `json:"-"`

	// Code is the machine-readable error code
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}
