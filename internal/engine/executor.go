package engine

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"schema-mend/internal/dialect"
	"schema-mend/internal/schema"
)

type CommitMode string

const (
	// CommitBatch runs every statement in one transaction, each inside its
	// own savepoint, and commits once at the end.
	CommitBatch CommitMode = "batch"
	// CommitStatement runs every statement on its own.
	CommitStatement CommitMode = "statement"
)

// DefaultCommitMode is batch for engines with transactional DDL.
func DefaultCommitMode(d dialect.Dialect) CommitMode {
	if d.TransactionalDDL() {
		return CommitBatch
	}
	return CommitStatement
}

// ParseCommitMode accepts "", "batch" and "statement".
func ParseCommitMode(s string) (CommitMode, error) {
	switch CommitMode(s) {
	case "":
		return "", nil
	case CommitBatch, CommitStatement:
		return CommitMode(s), nil
	}
	return "", fmt.Errorf("unknown commit mode %q (want batch or statement)", s)
}

// Execer is satisfied by *sql.DB and *sql.Conn.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type ApplyOptions struct {
	Mode             CommitMode
	StatementTimeout time.Duration
	OnProgress       func(Outcome)
	Logger           *zap.Logger
}

// Apply runs the plan one column at a time. A failing column is recorded and
// the next one is attempted; nothing here drops or alters existing columns.
// Outcomes are returned in plan order.
func Apply(ctx context.Context, db Execer, d dialect.Dialect, plan *Plan, opts ApplyOptions) []Outcome {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Mode == "" {
		opts.Mode = DefaultCommitMode(d)
	}

	if opts.Mode == CommitBatch && d.TransactionalDDL() {
		return applyBatch(ctx, db, d, plan, opts)
	}
	if opts.Mode == CommitBatch {
		opts.Logger.Warn("Dialect auto-commits DDL, falling back to per-statement commits", zap.String("dialect", d.Name()))
	}
	return applyEach(ctx, db, plan, opts)
}

func applyEach(ctx context.Context, db Execer, plan *Plan, opts ApplyOptions) []Outcome {
	outcomes := make([]Outcome, 0, len(plan.Actions))
	for _, a := range plan.Actions {
		o, done := pending(ctx, a)
		if !done {
			o = result(a, execStatement(ctx, db, a.Statement, opts.StatementTimeout))
		}
		outcomes = append(outcomes, o)
		progress(opts, o)
	}
	return outcomes
}

func applyBatch(ctx context.Context, db Execer, d dialect.Dialect, plan *Plan, opts ApplyOptions) []Outcome {
	log := opts.Logger
	outcomes := make([]Outcome, 0, len(plan.Actions))
	if len(plan.Actions) == 0 {
		return outcomes
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		beginErr := fmt.Errorf("failed to begin transaction: %w", err)
		for _, a := range plan.Actions {
			o, done := pending(ctx, a)
			if !done {
				o = result(a, beginErr)
			}
			outcomes = append(outcomes, o)
			progress(opts, o)
		}
		return outcomes
	}
	defer func() {
		if tx != nil {
			tx.Rollback()
		}
	}()

	for i, a := range plan.Actions {
		o, done := pending(ctx, a)
		if !done {
			sp := fmt.Sprintf("schema_mend_%d", i+1)
			o = result(a, applyInSavepoint(ctx, tx, d, sp, a.Statement, opts.StatementTimeout, log))
		}
		outcomes = append(outcomes, o)
		progress(opts, o)
	}

	if err := tx.Commit(); err != nil {
		commitErr := fmt.Errorf("failed to commit transaction: %w", err)
		for i, o := range outcomes {
			if o.Status == StatusAdded {
				outcomes[i] = result(plan.Actions[i], commitErr)
			}
		}
		log.Error("Commit failed, no column was added", zap.Error(err))
	}
	tx = nil

	return outcomes
}

func applyInSavepoint(ctx context.Context, tx *sql.Tx, d dialect.Dialect, sp, stmt string, timeout time.Duration, log *zap.Logger) error {
	if _, err := tx.ExecContext(ctx, d.SavepointQuery(sp)); err != nil {
		return fmt.Errorf("failed to create savepoint: %w", err)
	}
	if err := execStatement(ctx, tx, stmt, timeout); err != nil {
		if _, rbErr := tx.ExecContext(ctx, d.RollbackToSavepointQuery(sp)); rbErr != nil {
			log.Warn("Failed to roll back to savepoint", zap.String("savepoint", sp), zap.Error(rbErr))
		}
		return err
	}
	if q := d.ReleaseSavepointQuery(sp); q != "" {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			log.Warn("Failed to release savepoint", zap.String("savepoint", sp), zap.Error(err))
		}
	}
	return nil
}

type execContexter interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func execStatement(ctx context.Context, e execContexter, stmt string, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	_, err := e.ExecContext(ctx, stmt)
	return err
}

// pending returns the outcome of an action that must not be executed.
func pending(ctx context.Context, a Action) (Outcome, bool) {
	if a.Rejected != nil {
		return result(a, a.Rejected), true
	}
	if err := ctx.Err(); err != nil {
		return Outcome{
			Table:     a.Table,
			Column:    a.Column,
			Status:    StatusSkipped,
			Reason:    fmt.Sprintf("not attempted: %v", err),
			Statement: a.Statement,
			Err:       err,
		}, true
	}
	return Outcome{}, false
}

func result(a Action, err error) Outcome {
	if err == nil {
		return Outcome{Table: a.Table, Column: a.Column, Status: StatusAdded, Statement: a.Statement}
	}
	applyErr := &schema.DDLApplyError{Table: a.Table, Column: a.Column, Statement: a.Statement, Err: err}
	return Outcome{
		Table:     a.Table,
		Column:    a.Column,
		Status:    StatusAddFailed,
		Reason:    applyErr.Error(),
		Statement: a.Statement,
		Err:       applyErr,
	}
}

func progress(opts ApplyOptions, o Outcome) {
	log := opts.Logger.With(zap.String("table", o.Table), zap.String("column", o.Column))
	switch o.Status {
	case StatusAdded:
		log.Info("Column added", zap.String("statement", o.Statement))
	case StatusAddFailed:
		log.Warn("Failed to add column", zap.String("statement", o.Statement), zap.Error(o.Err))
	case StatusSkipped:
		log.Warn("Column not attempted", zap.String("reason", o.Reason))
	}
	if opts.OnProgress != nil {
		opts.OnProgress(o)
	}
}
