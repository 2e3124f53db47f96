package cmd

import (
	"bytes"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	_ "github.com/mattn/go-sqlite3"
)

// setupWorkspace creates a SQLite database file with a drifted activity_logs
// table and a matching definition file.
func setupWorkspace(t *testing.T) (dbPath, schemaPath string) {
	t.Helper()
	dir := t.TempDir()
	dbPath = filepath.Join(dir, "quested.db")
	schemaPath = filepath.Join(dir, "schema.yaml")

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(`CREATE TABLE activity_logs (id INTEGER PRIMARY KEY, student_id INTEGER, timestamp DATETIME)`); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	doc := "tables:\n  activity_logs: [id, student_id, activity, timestamp]\n"
	if err := os.WriteFile(schemaPath, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return dbPath, schemaPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
	resetViper(t)

	var buf bytes.Buffer
	RootCmd.SetOut(&buf)
	RootCmd.SetArgs(args)
	t.Cleanup(func() {
		RootCmd.SetOut(nil)
		RootCmd.SetArgs(nil)
	})
	err := RootCmd.Execute()
	return buf.String(), err
}

func TestCheckThenReconcile(t *testing.T) {
	dbPath, schemaPath := setupWorkspace(t)

	out, err := execute(t, "check", "--strict", "--dsn", dbPath, "--driver", "sqlite3", "--schema", schemaPath)
	if !errors.Is(err, errDrift) {
		t.Fatalf("check --strict err = %v, want drift\n%s", err, out)
	}
	if !strings.Contains(out, `Would add column 'activity': ALTER TABLE "activity_logs" ADD COLUMN "activity" TEXT`) {
		t.Errorf("check output:\n%s", out)
	}

	out, err = execute(t, "reconcile", "--dsn", dbPath, "--driver", "sqlite3", "--schema", schemaPath)
	if err != nil {
		t.Fatalf("reconcile: %v\n%s", err, out)
	}
	for _, want := range []string{
		"Table 'activity_logs' is missing columns: activity",
		"Column 'activity' added",
		"Reconciliation finished: 1 added, 0 failed, 3 already present, 0 tables missing",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("reconcile output missing %q:\n%s", want, out)
		}
	}

	out, err = execute(t, "check", "--strict", "--dsn", dbPath, "--driver", "sqlite3", "--schema", schemaPath)
	if err != nil {
		t.Errorf("check after reconcile: %v\n%s", err, out)
	}
}

func TestReconcileUnreachableDatabase(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no", "such", "dir", "quested.db")

	out, err := execute(t, "reconcile", "--schema=", "--dsn", "file:"+missing+"?mode=ro", "--driver", "sqlite3")
	if err == nil {
		t.Fatalf("expected an error for an unreachable database\n%s", out)
	}
	if !strings.Contains(out, "Reconciliation aborted") {
		t.Errorf("output should carry the aborted summary:\n%s", out)
	}
}

func TestRulesCommand(t *testing.T) {
	out, err := execute(t, "rules", "--dialect", "postgres")
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	for _, want := range []string{"primary_key", "SERIAL PRIMARY KEY", "*_id", "VARCHAR(120)"} {
		if !strings.Contains(out, want) {
			t.Errorf("rules output missing %q:\n%s", want, out)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil || !strings.HasPrefix(out, "schema-mend ") {
		t.Errorf("version = %q, %v", out, err)
	}
}
