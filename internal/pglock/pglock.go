// Package pglock provides keyed locks shared by every process connected to
// the same Postgres database.
package pglock

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/Black-And-White-Club/step-bot/internal/keylock"
	"github.com/uptrace/bun"
)

const (
	minPoll = 5 * time.Millisecond
	maxPoll = 200 * time.Millisecond
)

// Locker takes a transaction-scoped advisory lock per key. Keys are hashed
// with hashtext inside namespace, so different namespaces never contend.
//
// Each held key pins one pooled connection. Goroutines of one process
// queue on an in-process lock first so waiting does not tie up the pool.
type Locker struct {
	db        bun.IDB
	namespace string
	local     *keylock.Locker
}

// New returns a Locker over db.
func New(db bun.IDB, namespace string) *Locker {
	return &Locker{db: db, namespace: namespace, local: keylock.New()}
}

// Lock blocks until key is held by this process or ctx is done. The lock is
// released when the returned func is called or the connection drops.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	unlockLocal, err := l.local.Lock(ctx, key)
	if err != nil {
		return nil, err
	}

	// The transaction outlives ctx: the caller decides when to release.
	tx, err := l.db.BeginTx(context.WithoutCancel(ctx), &sql.TxOptions{})
	if err != nil {
		unlockLocal()
		return nil, fmt.Errorf("pglock.Lock: begin: %w", err)
	}

	if err := l.acquire(ctx, tx, l.namespace+":"+key); err != nil {
		_ = tx.Rollback()
		unlockLocal()
		return nil, fmt.Errorf("pglock.Lock %q: %w", key, err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			_ = tx.Rollback()
			unlockLocal()
		})
	}, nil
}

// acquire polls pg_try_advisory_xact_lock until it succeeds or ctx is done.
func (l *Locker) acquire(ctx context.Context, tx bun.Tx, key string) error {
	poll := minPoll
	for {
		var ok bool
		if err := tx.QueryRowContext(ctx, "SELECT pg_try_advisory_xact_lock(hashtext(?))", key).Scan(&ok); err != nil {
			return err
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(poll):
		}
		poll = min(poll*2, maxPoll)
	}
}
