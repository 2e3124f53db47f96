package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"schema-mend/internal/engine"
	"schema-mend/internal/metrics"
)

var (
	dryRun     bool
	jsonOutput bool
	useLock    bool
	tables     []string
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Add the columns the database is missing",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := runReconcile(cmd, reconcileRun{dryRun: dryRun, json: jsonOutput, lock: useLock})
		return err
	},
}

type reconcileRun struct {
	dryRun bool
	json   bool
	lock   bool
}

// runReconcile wires configuration, definition and database into one
// reconciliation run and prints its report. The error is non-nil only for
// configuration problems and aborted runs.
func runReconcile(cmd *cobra.Command, run reconcileRun) (*engine.Report, error) {
	log, err := newLogger()
	if err != nil {
		return nil, err
	}
	defer log.Sync()

	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	targetTables := settings.Tables
	if len(tables) > 0 {
		targetTables = tables
	}
	def, err := loadDefinition(settings.SchemaFile, targetTables)
	if err != nil {
		return nil, err
	}

	conn, err := resolveConnection()
	if err != nil {
		return nil, err
	}
	db, d, err := openDB(conn)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	out := cmd.OutOrStdout()
	if !run.json {
		fmt.Fprintf(out, "Connected via %s (%s)\n", conn.Driver, conn.Display)
	}
	log.Debug("Using dialect", zap.String("dialect", d.Name()), zap.Int("tables", len(def.Tables)))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var bar *uiprogress.Bar
	opts := engine.Options{
		Catalog:          settings.Catalog,
		CaseSensitive:    settings.CaseSensitive,
		CommitMode:       settings.CommitMode,
		StatementTimeout: settings.StatementTimeout,
		DryRun:           run.dryRun,
		OnPlan: func(plan *engine.Plan) {
			if run.dryRun || run.json || len(plan.Actions) == 0 {
				return
			}
			uiprogress.Start()
			bar = uiprogress.AddBar(len(plan.Actions)).AppendCompleted().PrependElapsed()
			bar.PrependFunc(func(b *uiprogress.Bar) string {
				return "Adding columns: "
			})
		},
		OnProgress: func(o engine.Outcome) {
			if bar != nil {
				bar.Incr()
			}
		},
	}

	r := engine.New(db, d, def, opts, log)
	var report *engine.Report
	reconcile := func(ctx context.Context) error {
		var err error
		report, err = r.Run(ctx)
		return err
	}
	if run.lock && !run.dryRun {
		err = engine.WithAdvisoryLock(ctx, db, d, settings.LockKey, log, reconcile)
	} else {
		err = reconcile(ctx)
	}
	if bar != nil {
		uiprogress.Stop()
	}
	if report == nil {
		return nil, err
	}

	if renderErr := render(out, report, run.json); renderErr != nil {
		return report, renderErr
	}
	pushMetrics(ctx, settings.Pushgateway, report, log)
	return report, err
}

func render(w io.Writer, report *engine.Report, asJSON bool) error {
	if asJSON {
		return engine.RenderJSON(w, report)
	}
	return engine.RenderText(w, report)
}

func pushMetrics(ctx context.Context, url string, report *engine.Report, log *zap.Logger) {
	if url == "" {
		return
	}
	m := metrics.NewRunMetrics()
	m.Observe(report)
	if err := m.Push(ctx, url, report); err != nil {
		log.Warn("Failed to push metrics", zap.Error(err))
		return
	}
	log.Debug("Metrics pushed", zap.String("pushgateway", url))
}

func init() {
	RootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the statements without running them")
	reconcileCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON")
	reconcileCmd.Flags().BoolVar(&useLock, "lock", false, "Hold a database advisory lock for the run")
	reconcileCmd.Flags().StringSliceVarP(&tables, "tables", "t", []string{}, "Only reconcile these tables (comma-separated)")
	reconcileCmd.Flags().String("schema", "", "Schema definition YAML (default: built-in QuestEd schema)")
	reconcileCmd.Flags().String("catalog", "", "Catalog/schema to inspect (default: the connection's current one)")
	reconcileCmd.Flags().String("commit-mode", "", "batch or statement (default depends on the database)")
	reconcileCmd.Flags().Duration("statement-timeout", 0, "Timeout per ALTER statement (0 = none)")
}
