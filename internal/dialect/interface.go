package dialect

// Dialect abstracts database-specific catalog reads and additive DDL.
type Dialect interface {
	Name() string

	// Metadata Queries (Catalog Introspection)
	GetTablesQuery(catalog string) (string, []any)
	GetColumnsQuery(catalog, table string) (string, []any)
	CurrentSchemaQuery() string
	GetSchemaName(input string) string
	CaseSensitive() bool

	// DDL Generation
	QuoteIdent(name string) string
	ColumnDefinition(t ColumnType) string
	AddColumnQuery(table, column string, t ColumnType) string

	// Transaction Hooks
	// TransactionalDDL reports whether DDL can be rolled back inside a
	// transaction. Engines that auto-commit DDL return false.
	TransactionalDDL() bool
	SavepointQuery(name string) string
	RollbackToSavepointQuery(name string) string
	ReleaseSavepointQuery(name string) string

	// AdvisoryLockQueries returns the statements that take and release a
	// session-level named lock. The lock query returns a single row whose
	// first column is 1 once the lock is held. Both are empty when the
	// engine has none.
	AdvisoryLockQueries(key string) (lock, unlock string)

	Placeholder(index int) string // Returns ?, $1, @p1, etc.
}
