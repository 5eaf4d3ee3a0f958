package service

import (
	"fmt"
	"time"

	"github.com/jjxapp/authic/internal/authic/domain"
	"github.com/jjxapp/authic/pkg/mailx"
)

// codeEmail builds the per-purpose delivery message carrying a one-time code.
// The raw code appears nowhere else: not in logs, not in API responses, not
// at rest.
func codeEmail(purpose domain.Purpose, to, code string, ttl time.Duration) mailx.Message {
	minutes := int(ttl.Minutes())

	var subject, body string
	switch purpose {
	case domain.PurposePasswordReset:
		subject = "Reset your password - Authic"
		body = fmt.Sprintf(`Hello,

We received a request to reset your password.

Your password reset code is: %s

This code will expire in %d minutes.

If you didn't request this, please ignore this email and your password will remain unchanged.

Best regards,
The Authic Team
`, code, minutes)

	default: // domain.PurposeEmailVerify
		subject = "Verify your email - Authic"
		body = fmt.Sprintf(`Hello,

Thank you for signing up!

Your email verification code is: %s

This code will expire in %d minutes.

If you didn't request this code, please ignore this email.

Best regards,
The Authic Team
`, code, minutes)
	}

	return mailx.Message{
		To:       []string{to},
		Subject:  subject,
		TextBody: body,
	}
}
