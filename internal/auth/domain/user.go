package domain

import "time"

type User struct {
	ID               string
	Username         string
	Email            string
	PasswordHash     string // argon2 encoded
	EmailVerified    bool
	TwoFactorEnabled bool   // mirrors "user has a confirmed device"
	LastLoginIP      string // empty until the first successful login
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
