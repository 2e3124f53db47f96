package engine_test

import (
	"context"
	"errors"
	"testing"

	"schema-mend/internal/dialect"
	"schema-mend/internal/engine"
)

func usersPlan(d dialect.Dialect, columns ...string) *engine.Plan {
	plan := &engine.Plan{}
	for _, c := range columns {
		rule := engine.InferType(c, engine.DefaultRules)
		plan.Actions = append(plan.Actions, engine.Action{
			Table:     "users",
			Column:    c,
			Rule:      rule.Name,
			Type:      rule.Type,
			Statement: d.AddColumnQuery("users", c, rule.Type),
		})
	}
	return plan
}

func TestApplyCancelledContextSkipsRemaining(t *testing.T) {
	for _, mode := range []engine.CommitMode{engine.CommitBatch, engine.CommitStatement} {
		t.Run(string(mode), func(t *testing.T) {
			db := setupTestDB(t, `CREATE TABLE users (id INTEGER PRIMARY KEY)`)
			d := &dialect.SQLiteDialect{}
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			outcomes := engine.Apply(ctx, db, d, usersPlan(d, "email", "role"), engine.ApplyOptions{Mode: mode})

			if len(outcomes) != 2 {
				t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
			}
			for _, o := range outcomes {
				if o.Status != engine.StatusSkipped {
					t.Errorf("%s = %s, want skipped", o.Column, o.Status)
				}
				if !errors.Is(o.Err, context.Canceled) {
					t.Errorf("%s err = %v, want context.Canceled", o.Column, o.Err)
				}
			}
			if got := columnsOf(t, db, "users"); len(got) != 1 {
				t.Errorf("columns = %v, nothing should have been added", got)
			}
		})
	}
}

func TestApplyRecordsRejectedActions(t *testing.T) {
	db := setupTestDB(t, `CREATE TABLE users (id INTEGER PRIMARY KEY)`)
	d := &dialect.SQLiteDialect{}
	plan := usersPlan(d, "email")
	plan.Actions = append([]engine.Action{{Table: "users", Column: "bad name", Rejected: errors.New("refusing to embed column name")}}, plan.Actions...)

	outcomes := engine.Apply(context.Background(), db, d, plan, engine.ApplyOptions{})

	if outcomes[0].Status != engine.StatusAddFailed || outcomes[0].Reason != "refusing to embed column name" {
		t.Errorf("rejected outcome = %+v", outcomes[0])
	}
	if outcomes[1].Status != engine.StatusAdded {
		t.Errorf("email outcome = %+v", outcomes[1])
	}
}

// autocommitSQLite behaves like an engine whose DDL cannot be rolled back.
type autocommitSQLite struct {
	dialect.SQLiteDialect
}

func (d *autocommitSQLite) TransactionalDDL() bool { return false }

func TestApplyBatchFallsBackWithoutTransactionalDDL(t *testing.T) {
	db := setupTestDB(t, `CREATE TABLE users (id INTEGER PRIMARY KEY)`)
	d := &autocommitSQLite{}

	if got := engine.DefaultCommitMode(d); got != engine.CommitStatement {
		t.Errorf("DefaultCommitMode = %s, want statement", got)
	}

	outcomes := engine.Apply(context.Background(), db, d, usersPlan(d, "id", "email"), engine.ApplyOptions{Mode: engine.CommitBatch})
	if outcomes[0].Status != engine.StatusAddFailed || outcomes[1].Status != engine.StatusAdded {
		t.Errorf("outcomes = %+v", outcomes)
	}
}

func TestParseCommitMode(t *testing.T) {
	for _, s := range []string{"", "batch", "statement"} {
		if _, err := engine.ParseCommitMode(s); err != nil {
			t.Errorf("ParseCommitMode(%q) = %v", s, err)
		}
	}
	if _, err := engine.ParseCommitMode("per-table"); err == nil {
		t.Error("expected an error for an unknown mode")
	}
	if got := engine.DefaultCommitMode(&dialect.PostgresDialect{}); got != engine.CommitBatch {
		t.Errorf("postgres default = %s, want batch", got)
	}
}
