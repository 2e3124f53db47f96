package engine

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"schema-mend/internal/dialect"
	"schema-mend/internal/schema"
)

type Options struct {
	// Catalog overrides the schema/database inspected. Empty means the one
	// the connection is currently using.
	Catalog string
	// CaseSensitive overrides the dialect's default name comparison.
	CaseSensitive    *bool
	CommitMode       CommitMode
	StatementTimeout time.Duration
	// DryRun stops after planning and reports the statements that would run.
	DryRun bool
	// Rules defaults to DefaultRules.
	Rules      []Rule
	OnPlan     func(*Plan)
	OnProgress func(Outcome)
}

// Reconciler runs one inspect, diff, plan and apply cycle per Run call.
// Nothing is carried over between runs.
type Reconciler struct {
	db    *sql.DB
	d     dialect.Dialect
	def   *schema.Definition
	opts  Options
	log   *zap.Logger
	state State
}

func New(db *sql.DB, d dialect.Dialect, def *schema.Definition, opts Options, log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Rules == nil {
		opts.Rules = DefaultRules
	}
	return &Reconciler{db: db, d: d, def: def, opts: opts, log: log, state: StateStart}
}

// State is the state the last run ended in.
func (r *Reconciler) State() State {
	return r.state
}

// Run reconciles the database once. The returned error is non-nil only when
// the run was aborted; per-table and per-column failures are in the report.
func (r *Reconciler) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:     uuid.NewString(),
		Dialect:   r.d.Name(),
		DryRun:    r.opts.DryRun,
		StartedAt: time.Now(),
	}
	log := r.log.With(zap.String("run_id", report.RunID))
	r.transition(log, StateStart)

	// --- INSPECTING ---
	r.transition(log, StateInspecting)
	if err := r.db.PingContext(ctx); err != nil {
		return r.abort(log, report, &schema.ConnectionError{Err: err})
	}
	catalog, err := schema.ResolveCatalog(ctx, r.db, r.d, r.opts.Catalog)
	if err != nil {
		return r.abort(log, report, &schema.ConnectionError{Err: err})
	}
	report.Catalog = catalog
	log = log.With(zap.String("catalog", catalog))

	snap := schema.Inspect(ctx, r.db, r.d, catalog)
	if snap.ListErr != nil {
		log.Warn("Failed to list tables", zap.Error(snap.ListErr))
	}
	for table, err := range snap.Errors {
		log.Warn("Failed to read columns", zap.String("table", table), zap.Error(err))
	}

	// --- DIFFING ---
	r.transition(log, StateDiffing)
	caseSensitive := r.d.CaseSensitive()
	if r.opts.CaseSensitive != nil {
		caseSensitive = *r.opts.CaseSensitive
	}
	diff := schema.Diff(r.def, snap, schema.DiffOptions{CaseSensitive: caseSensitive})
	log.Debug("Diff computed",
		zap.Int("tables", len(diff.Tables)),
		zap.Int("missing_columns", diff.MissingColumnCount()),
		zap.Bool("drift", diff.HasDrift()))

	// --- PLANNING ---
	r.transition(log, StatePlanning)
	plan := BuildPlan(r.def, diff, r.d, r.opts.Rules)
	if r.opts.OnPlan != nil {
		r.opts.OnPlan(plan)
	}

	var applied []Outcome
	if r.opts.DryRun {
		applied = planned(plan)
	} else {
		// --- EXECUTING ---
		r.transition(log, StateExecuting)
		applied = Apply(ctx, r.db, r.d, plan, ApplyOptions{
			Mode:             r.opts.CommitMode,
			StatementTimeout: r.opts.StatementTimeout,
			OnProgress:       r.opts.OnProgress,
			Logger:           log,
		})
	}

	report.Outcomes = assemble(r.def, diff, applied)
	r.transition(log, StateReported)
	report.State = StateReported
	report.FinishedAt = time.Now()
	report.summarize()

	log.Info("Reconciliation finished",
		zap.Int("added", report.Summary.Added),
		zap.Int("failed", report.Summary.Failed),
		zap.Int("already_present", report.Summary.AlreadyPresent),
		zap.Int("tables_missing", report.Summary.TablesMissing),
		zap.Bool("success", report.Success))
	return report, nil
}

func (r *Reconciler) transition(log *zap.Logger, s State) {
	r.state = s
	log.Debug("State changed", zap.String("state", string(s)))
}

func (r *Reconciler) abort(log *zap.Logger, report *Report, err error) (*Report, error) {
	r.transition(log, StateAborted)
	report.State = StateAborted
	report.Error = err.Error()
	report.FinishedAt = time.Now()
	report.summarize()
	log.Error("Reconciliation aborted", zap.Error(err))
	return report, err
}

func planned(plan *Plan) []Outcome {
	out := make([]Outcome, 0, len(plan.Actions))
	for _, a := range plan.Actions {
		if a.Rejected != nil {
			out = append(out, result(a, a.Rejected))
			continue
		}
		out = append(out, Outcome{Table: a.Table, Column: a.Column, Status: StatusPlanned, Statement: a.Statement})
	}
	return out
}

// assemble lists every table and column of the definition in order, taking
// the status of acted-on columns from applied.
func assemble(def *schema.Definition, diff *schema.SchemaDiff, applied []Outcome) []Outcome {
	type key struct{ table, column string }
	byColumn := make(map[key]Outcome, len(applied))
	for _, o := range applied {
		byColumn[key{o.Table, o.Column}] = o
	}

	var out []Outcome
	for _, td := range diff.Tables {
		switch {
		case td.TableMissing:
			out = append(out, Outcome{Table: td.Table, Status: StatusTableMissing})
			continue
		case td.Unreadable():
			out = append(out, Outcome{Table: td.Table, Status: StatusCatalogUnreadable, Reason: td.ReadErr.Error(), Err: td.ReadErr})
			continue
		}

		present := make(map[string]bool, len(td.PresentColumns))
		for _, c := range td.PresentColumns {
			present[c] = true
		}
		want, _ := def.Table(td.Table)
		for _, c := range want.Columns {
			if present[c] {
				out = append(out, Outcome{Table: td.Table, Column: c, Status: StatusAlreadyPresent})
				continue
			}
			if o, ok := byColumn[key{td.Table, c}]; ok {
				out = append(out, o)
			}
		}
	}
	return out
}
