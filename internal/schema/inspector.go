package schema

import (
	"context"
	"database/sql"
	"fmt"

	"schema-mend/internal/dialect"
)

// Querier is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ResolveCatalog picks the catalog to inspect: the configured name if any,
// otherwise whatever the connection is currently using, otherwise the
// dialect default.
func ResolveCatalog(ctx context.Context, q Querier, d dialect.Dialect, configured string) (string, error) {
	if configured != "" {
		return d.GetSchemaName(configured), nil
	}
	if query := d.CurrentSchemaQuery(); query != "" {
		var name sql.NullString
		if err := q.QueryRowContext(ctx, query).Scan(&name); err != nil {
			return "", fmt.Errorf("failed to get current schema name: %w", err)
		}
		if name.Valid && name.String != "" {
			return name.String, nil
		}
	}
	name := d.GetSchemaName("")
	if name == "" {
		return "", fmt.Errorf("no database selected in DSN")
	}
	return name, nil
}

// Inspect reads every base table of catalog and then the columns of each.
// It never writes. Failures are recorded on the snapshot rather than
// returned so the remaining tables can still be checked.
func Inspect(ctx context.Context, q Querier, d dialect.Dialect, catalog string) *Snapshot {
	snap := &Snapshot{
		Catalog: catalog,
		Tables:  make(map[string][]string),
		Errors:  make(map[string]error),
	}

	// --- Step 1: Fetch Tables ---
	names, err := listTables(ctx, q, d, catalog)
	if err != nil {
		snap.ListErr = &CatalogReadError{Err: err}
		return snap
	}

	// --- Step 2: Fetch Columns, per table ---
	for _, name := range names {
		cols, err := listColumns(ctx, q, d, catalog, name)
		if err != nil {
			snap.Errors[name] = &CatalogReadError{Table: name, Err: err}
			continue
		}
		snap.Tables[name] = cols
	}
	return snap
}

func listTables(ctx context.Context, q Querier, d dialect.Dialect, catalog string) ([]string, error) {
	query, args := d.GetTablesQuery(catalog)
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}
	return names, nil
}

func listColumns(ctx context.Context, q Querier, d dialect.Dialect, catalog, table string) ([]string, error) {
	query, args := d.GetColumnsQuery(catalog, table)
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := []string{}
	for rows.Next() {
		var name sql.NullString
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		if !name.Valid {
			continue
		}
		cols = append(cols, name.String)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns: %w", err)
	}
	return cols, nil
}
