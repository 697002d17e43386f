package domain

import "time"

// MFAChallenge is the pending state between a successful password check and
// the second factor for a user with two-factor enabled. No session exists
// until the challenge is completed.
type MFAChallenge struct {
	ID        string // fingerprint of the challenge token handed to the client
	UserID    string
	SourceIP  string
	Attempts  int // failed second-factor attempts so far
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (c MFAChallenge) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
