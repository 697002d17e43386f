package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/authguard/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and so a transaction can only be opened from the root store.
type Store interface {
	Users() Users
	Devices() Devices
	Tokens() Tokens
	Attempts() Attempts
	Activities() Activities
	MFAChallenges() MFAChallenges
	RefreshTokens() RefreshTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed. Called on a Tx it
	// opens a nested savepoint instead.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used during login.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// GetUserByEmail is used by the password reset request.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the username or email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// MarkEmailVerified sets email_verified and bumps updated_at.
	MarkEmailVerified(ctx context.Context, userID string) error

	// SetTwoFactorEnabled flips the two_factor_enabled flag.
	SetTwoFactorEnabled(ctx context.Context, userID string, enabled bool) error

	// UpdateLastLoginIP records the source address of the last successful login.
	UpdateLastLoginIP(ctx context.Context, userID string, ip string) error
}

type Devices interface {
	// CreateDevice inserts a new unconfirmed device.
	CreateDevice(ctx context.Context, d domain.Device) error

	// GetDeviceByID returns a device in either state.
	GetDeviceByID(ctx context.Context, id string) (domain.Device, error)

	// GetConfirmedDevice returns the user's confirmed device.
	GetConfirmedDevice(ctx context.Context, userID string) (domain.Device, error)

	// GetPendingDevice returns the user's unconfirmed device.
	GetPendingDevice(ctx context.Context, userID string) (domain.Device, error)

	// ConfirmDevice moves an unconfirmed device to confirmed. It is a
	// conditional update: when the device is missing or already confirmed
	// no row changes and ErrNotFound is returned. A second confirmed device
	// for the same user yields ErrAlreadyExists.
	ConfirmDevice(ctx context.Context, id string, at time.Time) error

	// TouchDevice sets last_used_at.
	TouchDevice(ctx context.Context, id string, at time.Time) error

	// DeleteUnconfirmedDevices removes pending enrollments for a user.
	DeleteUnconfirmedDevices(ctx context.Context, userID string) error

	// DeleteUserDevices removes every device for a user and reports how many
	// rows were deleted.
	DeleteUserDevices(ctx context.Context, userID string) (int64, error)
}

type Tokens interface {
	// UpsertToken stores t, replacing any token with the same
	// (user_id, purpose).
	UpsertToken(ctx context.Context, t domain.EphemeralToken) error

	// ConsumeToken deletes and returns the token matching hash and purpose
	// in a single statement. Only one caller can observe a given row.
	ConsumeToken(ctx context.Context, hash string, purpose domain.TokenPurpose) (domain.EphemeralToken, error)

	// DeleteExpiredTokens is housekeeping.
	DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}

type Attempts interface {
	// AppendAttempt writes an attempt record. Records are never updated.
	AppendAttempt(ctx context.Context, a domain.AttemptRecord) error

	// CountAttemptsSince counts records for (scope, source) created at or
	// after since. It also returns the creation time of the oldest counted
	// record, or the zero time when the count is zero.
	CountAttemptsSince(ctx context.Context, scope domain.Scope, sourceIP string, since time.Time) (int, time.Time, error)

	// ListUserAttempts returns a user's most recent attempts, newest first.
	ListUserAttempts(ctx context.Context, userID string, limit int) ([]domain.AttemptRecord, error)
}

type Activities interface {
	// AppendActivity writes an activity entry.
	AppendActivity(ctx context.Context, a domain.Activity) error

	// ListUserActivities returns a user's most recent activity, newest first.
	ListUserActivities(ctx context.Context, userID string, limit int) ([]domain.Activity, error)
}

type MFAChallenges interface {
	// CreateMFAChallenge creates a new second-factor challenge.
	CreateMFAChallenge(ctx context.Context, c domain.MFAChallenge) error

	// GetMFAChallenge retrieves a challenge by id (including expired ones).
	GetMFAChallenge(ctx context.Context, id string) (domain.MFAChallenge, error)

	// IncrementMFAChallengeAttempts bumps the failed attempt counter and
	// returns the updated challenge.
	IncrementMFAChallengeAttempts(ctx context.Context, id string) (domain.MFAChallenge, error)

	// DeleteMFAChallenge removes a challenge. Returns ErrNotFound when no
	// row was deleted, so completing a challenge happens at most once.
	DeleteMFAChallenge(ctx context.Context, id string) error

	// DeleteExpiredMFAChallenges is housekeeping.
	DeleteExpiredMFAChallenges(ctx context.Context, now time.Time) (int64, error)
}

type RefreshTokens interface {
	// CreateRefreshToken stores a token keyed by its fingerprint.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// ConsumeRefreshToken deletes and returns the token in one statement, so
	// a value can be exchanged once. Expired rows are returned as well; the
	// caller decides.
	ConsumeRefreshToken(ctx context.Context, id string) (domain.RefreshToken, error)

	// DeleteUserRefreshTokens ends every session of a user.
	DeleteUserRefreshTokens(ctx context.Context, userID string) (int64, error)

	// DeleteExpiredRefreshTokens is housekeeping.
	DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error)
}
