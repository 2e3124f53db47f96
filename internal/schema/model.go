package schema

// Definition is the declared shape of a database: tables in declaration
// order, each with its columns in declaration order.
type Definition struct {
	Tables []TableDef
}

type TableDef struct {
	Name    string
	Columns []string
}

// Snapshot is the live catalog as read at the start of a run.
type Snapshot struct {
	Catalog string
	Tables  map[string][]string // table -> columns in catalog order
	Errors  map[string]error    // per-table column read failures
	ListErr error               // table enumeration failure
}

// TableDiff is the gap between one expected table and the snapshot.
type TableDiff struct {
	Table          string
	TableMissing   bool
	ReadErr        error
	MissingColumns []string
	PresentColumns []string
}

// Unreadable reports whether the table's columns could not be determined.
func (t TableDiff) Unreadable() bool {
	return t.ReadErr != nil
}

type SchemaDiff struct {
	Tables []TableDiff
}

// HasDrift reports whether anything in the definition is absent or unknown.
func (d *SchemaDiff) HasDrift() bool {
	for _, t := range d.Tables {
		if t.TableMissing || t.Unreadable() || len(t.MissingColumns) > 0 {
			return true
		}
	}
	return false
}

// MissingColumnCount is the number of columns the planner will act on.
func (d *SchemaDiff) MissingColumnCount() int {
	n := 0
	for _, t := range d.Tables {
		n += len(t.MissingColumns)
	}
	return n
}
