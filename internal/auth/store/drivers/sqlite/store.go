package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/authguard/internal/auth/domain"
	"github.com/aussiebroadwan/authguard/internal/auth/store"
	"github.com/aussiebroadwan/authguard/internal/auth/store/drivers/sqlite/gen"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type Store struct {
	db  *sql.DB
	q   *gen.Queries
	dsn string
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// A single connection serializes writers, which gives every
	// read-modify-write in the repos a single winner and lets :memory:
	// databases survive across calls.
	db.SetMaxOpenConns(1)

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:  db,
		q:   gen.New(db),
		dsn: dsn,
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx), nil
}

// WithTx runs fn in a transaction. A WithTx on the returned Tx nests via
// SAVEPOINT.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return runInTx(ctx, s, fn)
}

func (s *Store) Users() store.Users                 { return &usersRepo{q: s.q} }
func (s *Store) Devices() store.Devices             { return &devicesRepo{q: s.q} }
func (s *Store) Tokens() store.Tokens               { return &tokensRepo{q: s.q} }
func (s *Store) Attempts() store.Attempts           { return &attemptsRepo{q: s.q} }
func (s *Store) Activities() store.Activities       { return &activitiesRepo{q: s.q} }
func (s *Store) MFAChallenges() store.MFAChallenges { return &mfaChallengesRepo{q: s.q} }
func (s *Store) RefreshTokens() store.RefreshTokens { return &refreshTokensRepo{q: s.q} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// mapConstraint turns unique and primary key violations into
// store.ErrAlreadyExists.
func mapConstraint(err error) error {
	var se *msqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return errors.Join(store.ErrAlreadyExists, err)
		}
	}
	return err
}

// requireRow reports store.ErrNotFound when an update touched no rows.
func requireRow(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func toUnix(t time.Time) int64 { return t.UTC().UnixNano() }

func fromUnix(n int64) time.Time { return time.Unix(0, n).UTC() }

func mapNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func mapStringNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

func mapNullStringPtr(ns sql.NullString) *string {
	if ns.Valid {
		val := ns.String
		return &val
	}
	return nil
}

func mapOptionalString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: *s, Valid: true}
}

func mapNullTimePtr(n sql.NullInt64) *time.Time {
	if n.Valid {
		val := fromUnix(n.Int64)
		return &val
	}
	return nil
}

func mapUser(row gen.User) domain.User {
	return domain.User{
		ID:               row.ID,
		Username:         row.Username,
		Email:            row.Email,
		PasswordHash:     row.PasswordHash,
		EmailVerified:    row.EmailVerified,
		TwoFactorEnabled: row.TwoFactorEnabled,
		LastLoginIP:      mapNullString(row.LastLoginIp),
		CreatedAt:        fromUnix(row.CreatedAt),
		UpdatedAt:        fromUnix(row.UpdatedAt),
	}
}

func mapDevice(row gen.Device) domain.Device {
	return domain.Device{
		ID:          row.ID,
		UserID:      row.UserID,
		Label:       row.Label,
		Secret:      row.Secret,
		CreatedAt:   fromUnix(row.CreatedAt),
		ConfirmedAt: mapNullTimePtr(row.ConfirmedAt),
		LastUsedAt:  mapNullTimePtr(row.LastUsedAt),
	}
}

func mapToken(row gen.EphemeralToken) domain.EphemeralToken {
	return domain.EphemeralToken{
		UserID:    row.UserID,
		Purpose:   domain.TokenPurpose(row.Purpose),
		TokenHash: row.TokenHash,
		IssuedAt:  fromUnix(row.IssuedAt),
		ExpiresAt: fromUnix(row.ExpiresAt),
	}
}

func mapAttempt(row gen.Attempt) domain.AttemptRecord {
	return domain.AttemptRecord{
		ID:        row.ID,
		Scope:     domain.Scope(row.Scope),
		UserID:    mapNullStringPtr(row.UserID),
		SourceIP:  row.SourceIp,
		Succeeded: row.Succeeded,
		CreatedAt: fromUnix(row.CreatedAt),
	}
}

func mapActivity(row gen.Activity) domain.Activity {
	return domain.Activity{
		ID:        row.ID,
		UserID:    row.UserID,
		Kind:      domain.ActivityKind(row.Kind),
		SourceIP:  row.SourceIp,
		Detail:    row.Detail,
		CreatedAt: fromUnix(row.CreatedAt),
	}
}

func mapMFAChallenge(row gen.MfaChallenge) domain.MFAChallenge {
	return domain.MFAChallenge{
		ID:        row.ID,
		UserID:    row.UserID,
		SourceIP:  row.SourceIp,
		Attempts:  int(row.Attempts),
		CreatedAt: fromUnix(row.CreatedAt),
		ExpiresAt: fromUnix(row.ExpiresAt),
	}
}
