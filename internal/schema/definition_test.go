package schema_test

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"schema-mend/internal/schema"
)

func TestParseDefinitionKeepsOrder(t *testing.T) {
	def, err := schema.ParseDefinition([]byte(`
tables:
  users: [id, username, email]
  activity_logs:
    - id
    - student_id
    - activity
    - timestamp
  classes: [id, name]
`))
	if err != nil {
		t.Fatalf("ParseDefinition() error = %v", err)
	}

	var names []string
	for _, tbl := range def.Tables {
		names = append(names, tbl.Name)
	}
	if want := []string{"users", "activity_logs", "classes"}; !reflect.DeepEqual(names, want) {
		t.Errorf("table order = %v, want %v", names, want)
	}

	logs, ok := def.Table("activity_logs")
	if !ok {
		t.Fatal("activity_logs not found")
	}
	if want := []string{"id", "student_id", "activity", "timestamp"}; !reflect.DeepEqual(logs.Columns, want) {
		t.Errorf("activity_logs columns = %v, want %v", logs.Columns, want)
	}
}

func TestParseDefinitionRejects(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{"no tables key", "users: [id]", "no 'tables' key"},
		{"not a mapping", "- users", "must be a mapping"},
		{"columns not a list", "tables:\n  users: id", "must be a list"},
		{"duplicate table", "tables:\n  users: [id]\n  users: [name]", "\"users\""},
		{"duplicate column", "tables:\n  users: [id, id]", "declared twice"},
		{"bad table name", "tables:\n  \"users; DROP TABLE x\": [id]", "invalid table name"},
		{"bad column name", "tables:\n  users: [\"na-me\"]", "invalid column name"},
		{"empty table", "tables:\n  users: []", "declares no columns"},
		{"empty definition", "tables: {}", "declares no tables"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schema.ParseDefinition([]byte(tt.doc))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidIdentifier(t *testing.T) {
	valid := []string{"id", "student_id", "_hidden", "Table1"}
	invalid := []string{"", "1table", "drop table", "a;b", "na-me", `a"b`, strings.Repeat("x", 64)}

	for _, s := range valid {
		if !schema.ValidIdentifier(s) {
			t.Errorf("ValidIdentifier(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if schema.ValidIdentifier(s) {
			t.Errorf("ValidIdentifier(%q) = true, want false", s)
		}
	}
}

func TestDefaultDefinition(t *testing.T) {
	def := schema.DefaultDefinition()

	if !def.Allows("activity_logs", "activity") {
		t.Error("built-in definition should declare activity_logs.activity")
	}
	if def.Allows("activity_logs", "nope") {
		t.Error("Allows should reject undeclared columns")
	}
	if def.Allows("nope", "id") {
		t.Error("Allows should reject undeclared tables")
	}
}

func TestLoadDefinition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	if err := os.WriteFile(path, []byte("tables:\n  classes: [id, name]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	def, err := schema.LoadDefinition(path)
	if err != nil {
		t.Fatalf("LoadDefinition() error = %v", err)
	}
	if len(def.Tables) != 1 || def.Tables[0].Name != "classes" {
		t.Errorf("unexpected definition: %+v", def)
	}

	if _, err := schema.LoadDefinition(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFilter(t *testing.T) {
	def := schema.DefaultDefinition()

	sub, err := def.Filter([]string{"classes", "users"})
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	// Definition order wins over argument order.
	if len(sub.Tables) != 2 || sub.Tables[0].Name != "users" || sub.Tables[1].Name != "classes" {
		t.Errorf("Filter() tables = %+v", sub.Tables)
	}

	if _, err := def.Filter([]string{"classes", "nope"}); err == nil {
		t.Error("expected error for unknown table")
	}
}
