package dialect

import (
	"fmt"
)

// SQLiteDialect serves both the mattn/go-sqlite3 ("sqlite3") and
// modernc.org/sqlite ("sqlite") drivers.
type SQLiteDialect struct{}

func (d *SQLiteDialect) Name() string {
	return "sqlite"
}

// The schema names a database of the connection: main, temp or an ATTACHed one.
func (d *SQLiteDialect) GetTablesQuery(schema string) (string, []any) {
	return fmt.Sprintf(`SELECT name FROM %s.sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%%' ORDER BY name`,
		d.QuoteIdent(d.GetSchemaName(schema))), nil
}

func (d *SQLiteDialect) GetColumnsQuery(schema, table string) (string, []any) {
	return `SELECT name FROM pragma_table_info(?, ?) ORDER BY cid`, []any{table, d.GetSchemaName(schema)}
}

func (d *SQLiteDialect) CurrentSchemaQuery() string {
	return ""
}

func (d *SQLiteDialect) GetSchemaName(input string) string {
	if input == "" {
		return "main"
	}
	return input
}

func (d *SQLiteDialect) CaseSensitive() bool {
	return false
}

func (d *SQLiteDialect) QuoteIdent(name string) string {
	return quoteWith(name, `"`, `"`)
}

// SQLite refuses ADD COLUMN with PRIMARY KEY or a non-constant default, so
// the primary key rule fails at apply time and timestamps get no default.
func (d *SQLiteDialect) ColumnDefinition(t ColumnType) string {
	switch t.Kind {
	case KindPrimaryKey:
		return "INTEGER PRIMARY KEY AUTOINCREMENT"
	case KindInteger:
		return "INTEGER"
	case KindTimestamp:
		return "DATETIME"
	case KindString:
		return fmt.Sprintf("VARCHAR(%d)", t.Length)
	case KindBoolean:
		return "BOOLEAN NOT NULL DEFAULT 0"
	default:
		return "TEXT"
	}
}

func (d *SQLiteDialect) AddColumnQuery(table, column string, t ColumnType) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", d.QuoteIdent(table), d.QuoteIdent(column), d.ColumnDefinition(t))
}

func (d *SQLiteDialect) TransactionalDDL() bool {
	return true
}

func (d *SQLiteDialect) SavepointQuery(name string) string {
	return "SAVEPOINT " + name
}

func (d *SQLiteDialect) RollbackToSavepointQuery(name string) string {
	return "ROLLBACK TO SAVEPOINT " + name
}

func (d *SQLiteDialect) ReleaseSavepointQuery(name string) string {
	return "RELEASE SAVEPOINT " + name
}

// Writers are serialized by the database file lock.
func (d *SQLiteDialect) AdvisoryLockQueries(key string) (string, string) {
	return "", ""
}

func (d *SQLiteDialect) Placeholder(index int) string {
	return "?"
}
