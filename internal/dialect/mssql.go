package dialect

import (
	"fmt"

	_ "github.com/denisenkom/go-mssqldb" // SQL Server Driver
)

type MSSQLDialect struct{}

// Helper: MSSQL Driver (go-mssqldb) often prefers @p1, @p2 named parameters over ?
// especially when prepared statements are involved or simple Exec.

func (d *MSSQLDialect) Name() string {
	return "sqlserver"
}

func (d *MSSQLDialect) GetTablesQuery(schema string) (string, []any) {
	return `SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = @p1 AND TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME`,
		[]any{d.GetSchemaName(schema)}
}

func (d *MSSQLDialect) GetColumnsQuery(schema, table string) (string, []any) {
	return `SELECT COLUMN_NAME FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_SCHEMA = @p1 AND TABLE_NAME = @p2 ORDER BY ORDINAL_POSITION`,
		[]any{d.GetSchemaName(schema), table}
}

func (d *MSSQLDialect) CurrentSchemaQuery() string {
	return "SELECT SCHEMA_NAME()"
}

func (d *MSSQLDialect) GetSchemaName(input string) string {
	if input == "" {
		return "dbo"
	}
	return input
}

// Default SQL Server collations are case-insensitive.
func (d *MSSQLDialect) CaseSensitive() bool {
	return false
}

func (d *MSSQLDialect) QuoteIdent(name string) string {
	return quoteWith(name, "[", "]")
}

func (d *MSSQLDialect) ColumnDefinition(t ColumnType) string {
	switch t.Kind {
	case KindPrimaryKey:
		return "INT IDENTITY(1,1) PRIMARY KEY"
	case KindInteger:
		return "INT"
	case KindTimestamp:
		return "DATETIME2 DEFAULT SYSDATETIME()"
	case KindString:
		return fmt.Sprintf("NVARCHAR(%d)", t.Length)
	case KindBoolean:
		return "BIT NOT NULL DEFAULT 0"
	default:
		return "NVARCHAR(MAX)"
	}
}

// T-SQL has no COLUMN keyword in ALTER TABLE ... ADD.
func (d *MSSQLDialect) AddColumnQuery(table, column string, t ColumnType) string {
	return fmt.Sprintf("ALTER TABLE %s ADD %s %s", d.QuoteIdent(table), d.QuoteIdent(column), d.ColumnDefinition(t))
}

func (d *MSSQLDialect) TransactionalDDL() bool {
	return true
}

func (d *MSSQLDialect) SavepointQuery(name string) string {
	return "SAVE TRANSACTION " + name
}

func (d *MSSQLDialect) RollbackToSavepointQuery(name string) string {
	return "ROLLBACK TRANSACTION " + name
}

// T-SQL savepoints are released by the enclosing COMMIT.
func (d *MSSQLDialect) ReleaseSavepointQuery(name string) string {
	return ""
}

func (d *MSSQLDialect) AdvisoryLockQueries(key string) (string, string) {
	lock := fmt.Sprintf("DECLARE @r INT; EXEC @r = sp_getapplock @Resource = %s, @LockMode = 'Exclusive', @LockOwner = 'Session'; SELECT CASE WHEN @r >= 0 THEN 1 ELSE 0 END", quoteLiteral(key))
	unlock := fmt.Sprintf("DECLARE @r INT; EXEC @r = sp_releaseapplock @Resource = %s, @LockOwner = 'Session'; SELECT @r", quoteLiteral(key))
	return lock, unlock
}

func (d *MSSQLDialect) Placeholder(index int) string {
	return fmt.Sprintf("@p%d", index+1)
}
