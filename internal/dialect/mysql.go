package dialect

import (
	"fmt"
)

type MysqlDialect struct{}

func (d *MysqlDialect) Name() string {
	return "mysql"
}

func (d *MysqlDialect) GetTablesQuery(schema string) (string, []any) {
	return `SELECT TABLE_NAME FROM information_schema.TABLES WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME`, []any{schema}
}

func (d *MysqlDialect) GetColumnsQuery(schema, table string) (string, []any) {
	return `SELECT COLUMN_NAME FROM information_schema.COLUMNS WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ? ORDER BY ORDINAL_POSITION`, []any{schema, table}
}

func (d *MysqlDialect) CurrentSchemaQuery() string {
	return "SELECT DATABASE()"
}

func (d *MysqlDialect) GetSchemaName(input string) string {
	return DefaultGetSchemaName(input)
}

// Column names are case-insensitive in MySQL regardless of lower_case_table_names.
func (d *MysqlDialect) CaseSensitive() bool {
	return false
}

func (d *MysqlDialect) QuoteIdent(name string) string {
	return quoteWith(name, "`", "`")
}

func (d *MysqlDialect) ColumnDefinition(t ColumnType) string {
	switch t.Kind {
	case KindPrimaryKey:
		return "INT AUTO_INCREMENT PRIMARY KEY"
	case KindInteger:
		return "INT"
	case KindTimestamp:
		return "DATETIME DEFAULT CURRENT_TIMESTAMP"
	case KindString:
		return fmt.Sprintf("VARCHAR(%d)", t.Length)
	case KindBoolean:
		return "BOOLEAN DEFAULT FALSE"
	default:
		return "TEXT"
	}
}

func (d *MysqlDialect) AddColumnQuery(table, column string, t ColumnType) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", d.QuoteIdent(table), d.QuoteIdent(column), d.ColumnDefinition(t))
}

// DDL causes an implicit commit in MySQL.
func (d *MysqlDialect) TransactionalDDL() bool {
	return false
}

func (d *MysqlDialect) SavepointQuery(name string) string {
	return "SAVEPOINT " + name
}

func (d *MysqlDialect) RollbackToSavepointQuery(name string) string {
	return "ROLLBACK TO SAVEPOINT " + name
}

func (d *MysqlDialect) ReleaseSavepointQuery(name string) string {
	return "RELEASE SAVEPOINT " + name
}

func (d *MysqlDialect) AdvisoryLockQueries(key string) (string, string) {
	// -1 waits indefinitely (MySQL 5.7+).
	return fmt.Sprintf("SELECT GET_LOCK(%s, -1)", quoteLiteral(key)),
		fmt.Sprintf("SELECT RELEASE_LOCK(%s)", quoteLiteral(key))
}

func (d *MysqlDialect) Placeholder(index int) string {
	return "?"
}
