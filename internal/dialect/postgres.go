package dialect

import (
	"fmt"
)

type PostgresDialect struct{}

func (d *PostgresDialect) Name() string {
	return "postgres"
}

func (d *PostgresDialect) GetTablesQuery(schema string) (string, []any) {
	return fmt.Sprintf(`SELECT table_name FROM information_schema.tables WHERE table_schema = %s AND table_type = 'BASE TABLE' ORDER BY table_name`,
		d.Placeholder(0)), []any{d.GetSchemaName(schema)}
}

func (d *PostgresDialect) GetColumnsQuery(schema, table string) (string, []any) {
	return fmt.Sprintf(`SELECT column_name FROM information_schema.columns WHERE table_schema = %s AND table_name = %s ORDER BY ordinal_position`,
		d.Placeholder(0), d.Placeholder(1)), []any{d.GetSchemaName(schema), table}
}

func (d *PostgresDialect) CurrentSchemaQuery() string {
	return "SELECT current_schema()"
}

func (d *PostgresDialect) GetSchemaName(input string) string {
	if input == "" {
		return "public"
	}
	return input
}

// Identifiers are quoted in generated DDL, so catalog names are compared verbatim.
func (d *PostgresDialect) CaseSensitive() bool {
	return true
}

func (d *PostgresDialect) QuoteIdent(name string) string {
	return quoteWith(name, `"`, `"`)
}

func (d *PostgresDialect) ColumnDefinition(t ColumnType) string {
	switch t.Kind {
	case KindPrimaryKey:
		return "SERIAL PRIMARY KEY"
	case KindInteger:
		return "INTEGER"
	case KindTimestamp:
		return "TIMESTAMP DEFAULT CURRENT_TIMESTAMP"
	case KindString:
		return fmt.Sprintf("VARCHAR(%d)", t.Length)
	case KindBoolean:
		return "BOOLEAN DEFAULT FALSE"
	default:
		return "TEXT"
	}
}

func (d *PostgresDialect) AddColumnQuery(table, column string, t ColumnType) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", d.QuoteIdent(table), d.QuoteIdent(column), d.ColumnDefinition(t))
}

func (d *PostgresDialect) TransactionalDDL() bool {
	return true
}

func (d *PostgresDialect) SavepointQuery(name string) string {
	return "SAVEPOINT " + name
}

func (d *PostgresDialect) RollbackToSavepointQuery(name string) string {
	return "ROLLBACK TO SAVEPOINT " + name
}

func (d *PostgresDialect) ReleaseSavepointQuery(name string) string {
	return "RELEASE SAVEPOINT " + name
}

func (d *PostgresDialect) AdvisoryLockQueries(key string) (string, string) {
	return fmt.Sprintf("SELECT 1 FROM (SELECT pg_advisory_lock(hashtext(%s))) AS l", quoteLiteral(key)),
		fmt.Sprintf("SELECT pg_advisory_unlock(hashtext(%s))", quoteLiteral(key))
}

func (d *PostgresDialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index+1)
}
