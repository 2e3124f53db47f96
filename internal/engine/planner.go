package engine

import (
	"fmt"

	"schema-mend/internal/dialect"
	"schema-mend/internal/schema"
)

// Action is one column to add.
type Action struct {
	Table     string
	Column    string
	Rule      string
	Type      dialect.ColumnType
	Statement string
	// Rejected is set when the identifiers failed the allow-list check; no
	// statement is generated for a rejected action.
	Rejected error
}

type Plan struct {
	Actions []Action
}

// BuildPlan turns every missing column of every present, readable table into
// an Action. Missing or unreadable tables produce nothing. Identifiers are
// embedded in DDL only if the definition declares them and they pass
// ValidIdentifier.
func BuildPlan(def *schema.Definition, diff *schema.SchemaDiff, d dialect.Dialect, rules []Rule) *Plan {
	plan := &Plan{}
	for _, td := range diff.Tables {
		if td.TableMissing || td.Unreadable() {
			continue
		}
		for _, col := range td.MissingColumns {
			rule := InferType(col, rules)
			a := Action{
				Table:  td.Table,
				Column: col,
				Rule:   rule.Name,
				Type:   rule.Type,
			}
			if err := checkIdentifiers(def, td.Table, col); err != nil {
				a.Rejected = err
			} else {
				a.Statement = d.AddColumnQuery(td.Table, col, rule.Type)
			}
			plan.Actions = append(plan.Actions, a)
		}
	}
	return plan
}

func checkIdentifiers(def *schema.Definition, table, column string) error {
	if !schema.ValidIdentifier(table) {
		return fmt.Errorf("refusing to embed table name %q in DDL", table)
	}
	if !schema.ValidIdentifier(column) {
		return fmt.Errorf("refusing to embed column name %q in DDL", column)
	}
	if !def.Allows(table, column) {
		return fmt.Errorf("%s.%s is not declared in the schema definition", table, column)
	}
	return nil
}
