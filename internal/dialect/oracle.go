package dialect

import (
	"fmt"
	"strings"
)

type OracleDialect struct{}

func (d *OracleDialect) Name() string {
	return "oracle"
}

func (d *OracleDialect) GetTablesQuery(schema string) (string, []any) {
	// ALL_TABLES instead of USER_TABLES so another owner's schema can be reconciled.
	return `SELECT TABLE_NAME FROM ALL_TABLES WHERE OWNER = UPPER(:1) ORDER BY TABLE_NAME`, []any{schema}
}

func (d *OracleDialect) GetColumnsQuery(schema, table string) (string, []any) {
	return `SELECT COLUMN_NAME FROM ALL_TAB_COLUMNS WHERE OWNER = UPPER(:1) AND TABLE_NAME = :2 ORDER BY COLUMN_ID`, []any{schema, table}
}

func (d *OracleDialect) CurrentSchemaQuery() string {
	return "SELECT USER FROM DUAL"
}

func (d *OracleDialect) GetSchemaName(input string) string {
	return input
}

// Unquoted identifiers are stored upper case.
func (d *OracleDialect) CaseSensitive() bool {
	return false
}

// QuoteIdent upper-cases before quoting so the result names the same object
// an unquoted identifier would, while still escaping reserved words such as
// TIMESTAMP.
func (d *OracleDialect) QuoteIdent(name string) string {
	return quoteWith(strings.ToUpper(name), `"`, `"`)
}

func (d *OracleDialect) ColumnDefinition(t ColumnType) string {
	switch t.Kind {
	case KindPrimaryKey:
		return "NUMBER GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY"
	case KindInteger:
		return "NUMBER(10)"
	case KindTimestamp:
		return "TIMESTAMP DEFAULT CURRENT_TIMESTAMP"
	case KindString:
		return fmt.Sprintf("VARCHAR2(%d)", t.Length)
	case KindBoolean:
		return "NUMBER(1) DEFAULT 0"
	default:
		return "CLOB"
	}
}

func (d *OracleDialect) AddColumnQuery(table, column string, t ColumnType) string {
	return fmt.Sprintf("ALTER TABLE %s ADD (%s %s)", d.QuoteIdent(table), d.QuoteIdent(column), d.ColumnDefinition(t))
}

// Note: In Oracle, DDL (ALTER) implicitly commits the transaction.
func (d *OracleDialect) TransactionalDDL() bool {
	return false
}

func (d *OracleDialect) SavepointQuery(name string) string {
	return "SAVEPOINT " + name
}

func (d *OracleDialect) RollbackToSavepointQuery(name string) string {
	return "ROLLBACK TO SAVEPOINT " + name
}

func (d *OracleDialect) ReleaseSavepointQuery(name string) string {
	return ""
}

// DBMS_LOCK needs an explicit grant, so no advisory lock is offered.
func (d *OracleDialect) AdvisoryLockQueries(key string) (string, string) {
	return "", ""
}

func (d *OracleDialect) Placeholder(index int) string {
	// Oracle uses :1, :2, etc. (1-based index)
	return fmt.Sprintf(":%d", index+1)
}
