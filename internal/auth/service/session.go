package service

import (
	"fmt"
	"time"

	"github.com/aussiebroadwan/authguard/internal/auth/domain"
	"github.com/aussiebroadwan/authguard/pkg/jwtx"
)

// JWTSessionIssuer issues signed access tokens as sessions.
type JWTSessionIssuer struct {
	Signer jwtx.Signer
	Issuer string
	TTL    time.Duration
}

func (s *JWTSessionIssuer) Issue(u domain.User, amr []string, now time.Time) (domain.Session, error) {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}

	claims := jwtx.NewSessionClaims(u.ID, u.Username, amr, ttl, s.Issuer, now)
	token, err := s.Signer.Sign(claims)
	if err != nil {
		return domain.Session{}, fmt.Errorf("sign session: %w", err)
	}

	return domain.Session{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(ttl / time.Second),
		AMR:         amr,
	}, nil
}
