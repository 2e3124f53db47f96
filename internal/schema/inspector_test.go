package schema_test

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"schema-mend/internal/dialect"
	"schema-mend/internal/schema"
)

// setupTestDB creates an in-memory database holding the given tables.
func setupTestDB(t *testing.T, ddl ...string) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// Every pooled connection to :memory: is a separate database.
	testDB.SetMaxOpenConns(1)

	for _, stmt := range ddl {
		if _, err := testDB.Exec(stmt); err != nil {
			t.Fatalf("failed to create schema: %v", err)
		}
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

func TestInspect(t *testing.T) {
	db := setupTestDB(t,
		`CREATE TABLE activity_logs (id INTEGER PRIMARY KEY, student_id INTEGER, timestamp DATETIME)`,
		`CREATE TABLE users (id INTEGER PRIMARY KEY, username TEXT)`,
	)

	snap := schema.Inspect(context.Background(), db, &dialect.SQLiteDialect{}, "main")

	if snap.ListErr != nil {
		t.Fatalf("ListErr = %v", snap.ListErr)
	}
	if len(snap.Errors) != 0 {
		t.Fatalf("Errors = %v", snap.Errors)
	}
	want := map[string][]string{
		"activity_logs": {"id", "student_id", "timestamp"},
		"users":         {"id", "username"},
	}
	if !reflect.DeepEqual(snap.Tables, want) {
		t.Errorf("Tables = %v, want %v", snap.Tables, want)
	}
}

func TestInspectEmptyCatalog(t *testing.T) {
	db := setupTestDB(t)

	snap := schema.Inspect(context.Background(), db, &dialect.SQLiteDialect{}, "main")
	if snap.ListErr != nil || len(snap.Tables) != 0 {
		t.Errorf("expected empty snapshot, got %+v", snap)
	}
}

func TestInspectListFailure(t *testing.T) {
	db := setupTestDB(t)
	db.Close()

	snap := schema.Inspect(context.Background(), db, &dialect.SQLiteDialect{}, "main")

	var readErr *schema.CatalogReadError
	if !errors.As(snap.ListErr, &readErr) {
		t.Fatalf("ListErr = %v, want CatalogReadError", snap.ListErr)
	}
	if readErr.Table != "" {
		t.Errorf("list failure should not name a table, got %q", readErr.Table)
	}
}

func TestInspectAttachedDatabase(t *testing.T) {
	db := setupTestDB(t,
		`CREATE TABLE users (id INTEGER PRIMARY KEY)`,
		`ATTACH DATABASE ':memory:' AS archive`,
		`CREATE TABLE archive.users (id INTEGER PRIMARY KEY, email TEXT)`,
		`CREATE TABLE archive.notes (id INTEGER PRIMARY KEY)`,
	)

	snap := schema.Inspect(context.Background(), db, &dialect.SQLiteDialect{}, "archive")
	if snap.ListErr != nil {
		t.Fatalf("ListErr = %v", snap.ListErr)
	}
	want := map[string][]string{
		"notes": {"id"},
		"users": {"id", "email"},
	}
	if !reflect.DeepEqual(snap.Tables, want) {
		t.Errorf("Tables = %v, want %v", snap.Tables, want)
	}

	snap = schema.Inspect(context.Background(), db, &dialect.SQLiteDialect{}, "no_such_db")
	if snap.ListErr == nil {
		t.Error("expected a list error for an unknown database")
	}
}

// brokenColumns fails the column query for one table only.
type brokenColumns struct {
	dialect.SQLiteDialect
	table string
}

func (d *brokenColumns) GetColumnsQuery(schemaName, table string) (string, []any) {
	if table == d.table {
		return `SELECT name FROM no_such_catalog_table`, nil
	}
	return d.SQLiteDialect.GetColumnsQuery(schemaName, table)
}

func TestInspectPerTableFailure(t *testing.T) {
	db := setupTestDB(t,
		`CREATE TABLE classes (id INTEGER PRIMARY KEY)`,
		`CREATE TABLE users (id INTEGER PRIMARY KEY)`,
	)

	snap := schema.Inspect(context.Background(), db, &brokenColumns{table: "classes"}, "main")

	var readErr *schema.CatalogReadError
	if !errors.As(snap.Errors["classes"], &readErr) || readErr.Table != "classes" {
		t.Errorf("classes error = %v, want CatalogReadError for classes", snap.Errors["classes"])
	}
	if _, ok := snap.Tables["classes"]; ok {
		t.Error("unreadable table should not appear in Tables")
	}
	if want := []string{"id"}; !reflect.DeepEqual(snap.Tables["users"], want) {
		t.Errorf("users columns = %v, want %v", snap.Tables["users"], want)
	}
}

func TestResolveCatalog(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	d := &dialect.SQLiteDialect{}

	got, err := schema.ResolveCatalog(ctx, db, d, "")
	if err != nil || got != "main" {
		t.Errorf("ResolveCatalog() = %q, %v; want main", got, err)
	}

	got, err = schema.ResolveCatalog(ctx, db, &dialect.PostgresDialect{}, "quested")
	if err != nil || got != "quested" {
		t.Errorf("ResolveCatalog(configured) = %q, %v; want quested", got, err)
	}
}
