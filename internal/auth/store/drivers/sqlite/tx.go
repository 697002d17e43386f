package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aussiebroadwan/authguard/internal/auth/store"
	"github.com/aussiebroadwan/authguard/internal/auth/store/drivers/sqlite/gen"
)

// txStore scopes every repository to one *sql.Tx. Nested transactions are
// emulated with SAVEPOINTs named after their depth, so an inner WithTx can
// fail and roll back without discarding the outer work.
type txStore struct {
	tx    *sql.Tx
	q     *gen.Queries
	depth int
	done  bool
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx, q: gen.New(tx)}
}

func (t *txStore) savepoint() string { return fmt.Sprintf("sp_%d", t.depth) }

func (t *txStore) Commit() error {
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true
	if t.depth == 0 {
		return t.tx.Commit()
	}
	_, err := t.tx.Exec("RELEASE SAVEPOINT " + t.savepoint())
	return err
}

// Rollback after Commit returns sql.ErrTxDone, matching *sql.Tx.
func (t *txStore) Rollback() error {
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true
	if t.depth == 0 {
		return t.tx.Rollback()
	}
	if _, err := t.tx.Exec("ROLLBACK TO SAVEPOINT " + t.savepoint()); err != nil {
		return err
	}
	_, err := t.tx.Exec("RELEASE SAVEPOINT " + t.savepoint())
	return err
}

// Close leaves the outer database open. The caller still commits or rolls back.
func (t *txStore) Close() error { return nil }

// Ping is a no-op, the connection is already held.
func (t *txStore) Ping(context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	if t.done {
		return nil, sql.ErrTxDone
	}
	inner := &txStore{tx: t.tx, q: t.q, depth: t.depth + 1}
	if _, err := t.tx.ExecContext(ctx, "SAVEPOINT "+inner.savepoint()); err != nil {
		return nil, fmt.Errorf("sqlite: savepoint: %w", err)
	}
	return inner, nil
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return runInTx(ctx, t, fn)
}

func (t *txStore) Users() store.Users                 { return &usersRepo{q: t.q} }
func (t *txStore) Devices() store.Devices             { return &devicesRepo{q: t.q} }
func (t *txStore) Tokens() store.Tokens               { return &tokensRepo{q: t.q} }
func (t *txStore) Attempts() store.Attempts           { return &attemptsRepo{q: t.q} }
func (t *txStore) Activities() store.Activities       { return &activitiesRepo{q: t.q} }
func (t *txStore) MFAChallenges() store.MFAChallenges { return &mfaChallengesRepo{q: t.q} }
func (t *txStore) RefreshTokens() store.RefreshTokens { return &refreshTokensRepo{q: t.q} }

// ApplyMigrations is a no-op, migrations run before any transaction opens.
func (t *txStore) ApplyMigrations() error { return nil }

type txBeginner interface {
	Tx(ctx context.Context) (store.Tx, error)
}

// runInTx commits when fn returns nil and rolls back otherwise, including
// when fn panics.
func runInTx(ctx context.Context, b txBeginner, fn func(tx store.Tx) error) error {
	tx, err := b.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
