package schema

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed quested.yaml
var questedDefinition []byte

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether name is safe to embed in DDL once quoted.
func ValidIdentifier(name string) bool {
	return len(name) <= 63 && identifierPattern.MatchString(name)
}

// DefaultDefinition returns the built-in QuestEd schema.
func DefaultDefinition() *Definition {
	def, err := ParseDefinition(questedDefinition)
	if err != nil {
		panic(fmt.Sprintf("built-in definition is invalid: %v", err))
	}
	return def
}

// LoadDefinition reads a YAML definition file.
func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema definition: %w", err)
	}
	def, err := ParseDefinition(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// ParseDefinition parses a document of the form
//
//	tables:
//	  activity_logs: [id, student_id, activity, timestamp]
//
// keeping tables and columns in the order they are written.
func ParseDefinition(data []byte) (*Definition, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse schema definition: %w", err)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("schema definition must be a mapping with a 'tables' key")
	}

	var tablesNode *yaml.Node
	root := doc.Content[0]
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == "tables" {
			tablesNode = root.Content[i+1]
			break
		}
	}
	if tablesNode == nil {
		return nil, fmt.Errorf("schema definition has no 'tables' key")
	}
	if tablesNode.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: 'tables' must map table names to column lists", tablesNode.Line)
	}

	def := &Definition{}
	for i := 0; i+1 < len(tablesNode.Content); i += 2 {
		key, value := tablesNode.Content[i], tablesNode.Content[i+1]
		if value.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("line %d: columns of table %q must be a list", value.Line, key.Value)
		}
		table := TableDef{Name: key.Value}
		for _, col := range value.Content {
			if col.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: column names of table %q must be scalars", col.Line, key.Value)
			}
			table.Columns = append(table.Columns, col.Value)
		}
		def.Tables = append(def.Tables, table)
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

// Validate checks identifiers and rejects duplicate tables or columns.
func (d *Definition) Validate() error {
	if len(d.Tables) == 0 {
		return fmt.Errorf("schema definition declares no tables")
	}
	seenTables := make(map[string]bool)
	for _, t := range d.Tables {
		if !ValidIdentifier(t.Name) {
			return fmt.Errorf("invalid table name %q", t.Name)
		}
		if seenTables[t.Name] {
			return fmt.Errorf("table %q declared twice", t.Name)
		}
		seenTables[t.Name] = true

		if len(t.Columns) == 0 {
			return fmt.Errorf("table %q declares no columns", t.Name)
		}
		seenCols := make(map[string]bool)
		for _, c := range t.Columns {
			if !ValidIdentifier(c) {
				return fmt.Errorf("invalid column name %q in table %q", c, t.Name)
			}
			if seenCols[c] {
				return fmt.Errorf("column %q declared twice in table %q", c, t.Name)
			}
			seenCols[c] = true
		}
	}
	return nil
}

// Table returns the declared table with the given name.
func (d *Definition) Table(name string) (TableDef, bool) {
	for _, t := range d.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return TableDef{}, false
}

// Allows reports whether table.column is declared, which is what makes the
// pair eligible to appear in generated DDL.
func (d *Definition) Allows(table, column string) bool {
	t, ok := d.Table(table)
	if !ok {
		return false
	}
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Filter returns a copy restricted to the named tables, in definition order.
func (d *Definition) Filter(names []string) (*Definition, error) {
	if len(names) == 0 {
		return d, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	out := &Definition{}
	for _, t := range d.Tables {
		if want[t.Name] {
			out.Tables = append(out.Tables, TableDef{Name: t.Name, Columns: append([]string(nil), t.Columns...)})
			delete(want, t.Name)
		}
	}
	for _, n := range names {
		if want[n] {
			return nil, fmt.Errorf("table %q is not in the schema definition", n)
		}
	}
	return out, nil
}
