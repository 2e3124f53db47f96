package schema

import "fmt"

// ConnectionError means the database could not be reached at all. It is the
// only error that aborts a reconciliation run.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to db: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// CatalogReadError is a failed catalog query. Table is empty when the table
// enumeration itself failed.
type CatalogReadError struct {
	Table string
	Err   error
}

func (e *CatalogReadError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("failed to query tables: %v", e.Err)
	}
	return fmt.Sprintf("failed to query columns of %s: %v", e.Table, e.Err)
}

func (e *CatalogReadError) Unwrap() error {
	return e.Err
}

// DDLApplyError is a single corrective statement that did not apply.
type DDLApplyError struct {
	Table     string
	Column    string
	Statement string
	Err       error
}

func (e *DDLApplyError) Error() string {
	return e.Err.Error()
}

func (e *DDLApplyError) Unwrap() error {
	return e.Err
}
