package engine

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"schema-mend/internal/dialect"
)

// WithAdvisoryLock runs fn while holding the dialect's named session lock on
// a dedicated connection, so two runs against one database do not interleave
// their DDL. Engines without such a lock run fn unguarded.
func WithAdvisoryLock(ctx context.Context, db *sql.DB, d dialect.Dialect, key string, log *zap.Logger, fn func(context.Context) error) error {
	if log == nil {
		log = zap.NewNop()
	}
	lockQuery, unlockQuery := d.AdvisoryLockQueries(key)
	if lockQuery == "" {
		log.Warn("Dialect has no advisory lock, running without one", zap.String("dialect", d.Name()))
		return fn(ctx)
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to reserve connection for lock: %w", err)
	}
	defer conn.Close()

	log.Info("Waiting for advisory lock", zap.String("key", key))
	var held sql.NullInt64
	if err := conn.QueryRowContext(ctx, lockQuery).Scan(&held); err != nil {
		return fmt.Errorf("failed to take advisory lock %q: %w", key, err)
	}
	if !held.Valid || held.Int64 != 1 {
		return fmt.Errorf("advisory lock %q was not granted", key)
	}
	log.Debug("Advisory lock held", zap.String("key", key))

	defer func() {
		// The run context may already be cancelled; release regardless.
		if _, err := conn.ExecContext(context.Background(), unlockQuery); err != nil {
			log.Warn("Failed to release advisory lock", zap.String("key", key), zap.Error(err))
		}
	}()

	return fn(ctx)
}
