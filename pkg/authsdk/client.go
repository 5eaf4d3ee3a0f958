// Package authsdk provides a small client SDK for the authic service, plus
// the wire types its HTTP handlers encode. Keeping both in one package means
// the server and its clients can never drift apart on field names.
package authsdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SDKClient is a client for the authic service. All credential-bearing
// operations are unauthenticated by design; only GetUserInfo requires a
// bearer token from a prior login.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a client for the service at baseURL.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Register creates a new account. The verification code is delivered by
// email out-of-band.
func (c *SDKClient) Register(ctx context.Context, email, password string) (*RegisterResponse, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)

	var out RegisterResponse
	if err := c.postForm(ctx, "/v1/register", form, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges email and password for an access token.
func (c *SDKClient) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)

	var out TokenResponse
	if err := c.postForm(ctx, "/v1/login", form, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyEmail redeems an email verification code.
func (c *SDKClient) VerifyEmail(ctx context.Context, email, code string) error {
	form := url.Values{}
	form.Set("email", email)
	form.Set("code", code)

	var out MessageResponse
	return c.postForm(ctx, "/v1/verify-email", form, &out, http.StatusOK)
}

// ResendCode requests a fresh code for the given purpose
// ("email_verify" or "password_reset").
func (c *SDKClient) ResendCode(ctx context.Context, email, purpose string) error {
	form := url.Values{}
	form.Set("email", email)
	form.Set("purpose", purpose)

	var out MessageResponse
	return c.postForm(ctx, "/v1/resend-code", form, &out, http.StatusAccepted)
}

// ForgotPassword requests a password reset code for the email. The response
// is the same whether or not the email is registered.
func (c *SDKClient) ForgotPassword(ctx context.Context, email string) error {
	form := url.Values{}
	form.Set("email", email)

	var out MessageResponse
	return c.postForm(ctx, "/v1/forgot-password", form, &out, http.StatusAccepted)
}

// ResetPassword redeems a password reset code and sets a new password.
func (c *SDKClient) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	form := url.Values{}
	form.Set("email", email)
	form.Set("code", code)
	form.Set("new_password", newPassword)

	var out MessageResponse
	return c.postForm(ctx, "/v1/reset-password", form, &out, http.StatusOK)
}

// GetUserInfo fetches the authenticated account's profile.
func (c *SDKClient) GetUserInfo(ctx context.Context, accessToken string) (*UserInfoResponse, error) {
	var out UserInfoResponse
	headers := map[string]string{"Authorization": "Bearer " + accessToken}
	if err := c.getJSON(ctx, "/v1/me", headers, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLiveness checks the service liveness probe.
func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.getJSON(ctx, "/livez", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetReadiness checks the service readiness probe.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.getJSON(ctx, "/readyz", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
