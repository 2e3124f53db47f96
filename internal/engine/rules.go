package engine

import (
	"strings"

	"schema-mend/internal/dialect"
)

// Rule maps a column naming convention to a column type.
type Rule struct {
	Name    string
	Pattern string // human-readable form of Match
	Match   func(column string) bool
	Type    dialect.ColumnType
}

func exact(names ...string) func(string) bool {
	return func(column string) bool {
		c := strings.ToLower(column)
		for _, n := range names {
			if c == n {
				return true
			}
		}
		return false
	}
}

func suffix(s string) func(string) bool {
	return func(column string) bool {
		return strings.HasSuffix(strings.ToLower(column), s)
	}
}

func prefix(ps ...string) func(string) bool {
	return func(column string) bool {
		c := strings.ToLower(column)
		for _, p := range ps {
			if strings.HasPrefix(c, p) {
				return true
			}
		}
		return false
	}
}

func always(string) bool { return true }

// DefaultRules is evaluated top to bottom and the first match wins: exact
// names, then suffixes and prefixes, then the text fallback.
var DefaultRules = []Rule{
	{Name: "primary_key", Pattern: "id", Match: exact("id"), Type: dialect.ColumnType{Kind: dialect.KindPrimaryKey}},
	{Name: "created_timestamp", Pattern: "timestamp | created_at", Match: exact("timestamp", "created_at"), Type: dialect.ColumnType{Kind: dialect.KindTimestamp}},
	{Name: "password", Pattern: "password", Match: exact("password"), Type: dialect.ColumnType{Kind: dialect.KindString, Length: 128}},
	{Name: "username", Pattern: "username", Match: exact("username"), Type: dialect.ColumnType{Kind: dialect.KindString, Length: 80}},
	{Name: "email", Pattern: "email", Match: exact("email"), Type: dialect.ColumnType{Kind: dialect.KindString, Length: 120}},
	{Name: "role", Pattern: "role", Match: exact("role"), Type: dialect.ColumnType{Kind: dialect.KindString, Length: 20}},
	{Name: "foreign_key", Pattern: "*_id", Match: suffix("_id"), Type: dialect.ColumnType{Kind: dialect.KindInteger}},
	{Name: "flag", Pattern: "is_* | has_*", Match: prefix("is_", "has_"), Type: dialect.ColumnType{Kind: dialect.KindBoolean}},
	{Name: "text", Pattern: "*", Match: always, Type: dialect.ColumnType{Kind: dialect.KindText}},
}

// InferType returns the first rule matching column. A rule list without a
// catch-all falls back to unbounded text.
func InferType(column string, rules []Rule) Rule {
	for _, r := range rules {
		if r.Match(column) {
			return r
		}
	}
	return Rule{Name: "text", Pattern: "*", Match: always, Type: dialect.ColumnType{Kind: dialect.KindText}}
}
