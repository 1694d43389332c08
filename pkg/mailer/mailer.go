package mailer

import (
	"context"
	"fmt"
	"time"
)

// Recipient is the subset of the user record an email needs.
type Recipient struct {
	Username string
	Email    string
}

// Mailer is the mail-dispatch collaborator used by the auth core. Both calls
// are synchronous: a send failure must reach the caller so the reset-token
// rollback can run.
type Mailer interface {
	SendWelcome(ctx context.Context, to Recipient, verificationURL string) error
	SendPasswordReset(ctx context.Context, to Recipient, resetURL string, expiresIn time.Duration) error
}

func welcomeBody(to Recipient, verificationURL string) (subject, text string) {
	subject = "Welcome to Pulse!"
	text = fmt.Sprintf(
		"Hi %s,\n\nWelcome aboard! Please confirm your email address by opening the link below:\n\n%s\n\nThe link is valid for one hour. If you did not sign up, you can ignore this email.\n",
		to.Username, verificationURL,
	)
	return subject, text
}

func passwordResetBody(to Recipient, resetURL string, expiresIn time.Duration) (subject, text string) {
	subject = fmt.Sprintf("Your password reset token (valid for %d min)", int(expiresIn.Minutes()))
	text = fmt.Sprintf(
		"Hi %s,\n\nForgot your password? Submit a PATCH request with your new password to:\n\n%s\n\nThe link expires in %s. If you didn't forget your password, please ignore this email.\n",
		to.Username, resetURL, expiresIn,
	)
	return subject, text
}
