// Package mail delivers the account emails: verification links and password
// reset links.
package mail

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

var (
	ErrFailedToSend  = errors.New("mail: failed to send")
	ErrInvalidConfig = errors.New("mail: invalid config")
	ErrInvalidParams = errors.New("mail: invalid message")
)

// Message is a plain text transactional email.
type Message struct {
	To      string
	Subject string
	Text    string
	Tag     string
}

func (m Message) Validate() error {
	if _, err := mail.ParseAddress(m.To); err != nil {
		return fmt.Errorf("%w: recipient: %w", ErrInvalidParams, err)
	}
	if strings.TrimSpace(m.Subject) == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidParams)
	}
	if strings.TrimSpace(m.Text) == "" {
		return fmt.Errorf("%w: body is required", ErrInvalidParams)
	}
	return nil
}

// Tags identify message kinds in delivery dashboards.
const (
	TagEmailVerification = "email-verification"
	TagPasswordReset     = "password-reset"
)

// VerificationMessage builds the email carrying the address confirmation link.
func VerificationMessage(to, username, link string) Message {
	return Message{
		To:      to,
		Subject: "Confirm your email address",
		Tag:     TagEmailVerification,
		Text: fmt.Sprintf(
			"Hi %s,\n\nConfirm your email address by opening the link below:\n\n%s\n\nIf you did not create an account you can ignore this email.\n",
			username, link,
		),
	}
}

// PasswordResetMessage builds the email carrying the password reset link.
func PasswordResetMessage(to, username, link string) Message {
	return Message{
		To:      to,
		Subject: "Password reset request",
		Tag:     TagPasswordReset,
		Text: fmt.Sprintf(
			"Hi %s,\n\nClick the link to reset your password:\n\n%s\n\nThe link can be used once. If you did not ask for a reset you can ignore this email.\n",
			username, link,
		),
	}
}
