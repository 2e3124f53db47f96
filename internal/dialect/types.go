package dialect

// Kind is the abstract storage class a column is created with.
type Kind int

const (
	KindText Kind = iota
	KindPrimaryKey
	KindInteger
	KindTimestamp
	KindString
	KindBoolean
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindPrimaryKey:
		return "primary_key"
	case KindInteger:
		return "integer"
	case KindTimestamp:
		return "timestamp"
	case KindString:
		return "string"
	case KindBoolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// ColumnType is an engine-neutral column type. Timestamps default to the
// current time and booleans default to false; Length only applies to
// KindString.
type ColumnType struct {
	Kind   Kind
	Length int
}

func (t ColumnType) String() string {
	if t.Kind == KindString && t.Length > 0 {
		return t.Kind.String() + "(" + itoa(t.Length) + ")"
	}
	return t.Kind.String()
}
