package service

import (
	"context"
	"time"

	"github.com/aussiebroadwan/authguard/internal/auth/domain"
	"github.com/aussiebroadwan/authguard/internal/auth/mail"
)

// PasswordHasher hashes and checks passwords. Verify returns nil only on a
// match.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) error
}

// Mailer delivers outbound notifications.
type Mailer interface {
	Send(ctx context.Context, msg mail.Message) error
}

// SessionIssuer mints the session handed out after a completed login.
type SessionIssuer interface {
	Issue(u domain.User, amr []string, now time.Time) (domain.Session, error)
}

func clock(now func() time.Time) time.Time {
	if now != nil {
		return now().UTC()
	}
	return time.Now().UTC()
}
