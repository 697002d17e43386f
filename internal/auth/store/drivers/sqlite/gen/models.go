package gen

import "database/sql"

// Timestamps are unix nanoseconds.

type User struct {
	ID               string
	Username         string
	Email            string
	PasswordHash     string
	EmailVerified    bool
	TwoFactorEnabled bool
	LastLoginIp      sql.NullString
	CreatedAt        int64
	UpdatedAt        int64
}

type Device struct {
	ID          string
	UserID      string
	Label       string
	Secret      string
	CreatedAt   int64
	ConfirmedAt sql.NullInt64
	LastUsedAt  sql.NullInt64
}

type EphemeralToken struct {
	UserID    string
	Purpose   string
	TokenHash string
	IssuedAt  int64
	ExpiresAt int64
}

type Attempt struct {
	ID        string
	Scope     string
	UserID    sql.NullString
	SourceIp  string
	Succeeded bool
	CreatedAt int64
}

type Activity struct {
	ID        string
	UserID    string
	Kind      string
	SourceIp  string
	Detail    string
	CreatedAt int64
}

type MfaChallenge struct {
	ID        string
	UserID    string
	SourceIp  string
	Attempts  int64
	CreatedAt int64
	ExpiresAt int64
}

type RefreshToken struct {
	ID        string
	UserID    string
	SessionID string
	Amr       string
	CreatedAt int64
	ExpiresAt int64
}
