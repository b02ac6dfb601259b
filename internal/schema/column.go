package schema

import "math"

// ColumnType is the declared scalar type of an output column.
type ColumnType int

const (
	TypeInt64 ColumnType = iota
	TypeFloat64
	TypeString
)

func (t ColumnType) String() string {
	switch t {
	case TypeInt64:
		return "int64"
	case TypeFloat64:
		return "float64"
	case TypeString:
		return "string"
	default:
		return "unknown"
	}
}

// Sentinel identifies the missing-value marker a column uses.
type Sentinel int

const (
	// SentinelNaN marks numeric columns whose absence is not-a-number.
	SentinelNaN Sentinel = iota
	// SentinelNull marks categorical/string columns whose absence is null.
	SentinelNull
	// SentinelZero marks count-like columns that default to zero.
	SentinelZero
)

func (s Sentinel) String() string {
	switch s {
	case SentinelNaN:
		return "NaN"
	case SentinelNull:
		return "null"
	case SentinelZero:
		return "0"
	default:
		return "unknown"
	}
}

// Value returns the concrete missing-value marker for this sentinel.
func (s Sentinel) Value() any {
	switch s {
	case SentinelNaN:
		return math.NaN()
	case SentinelZero:
		return int64(0)
	default:
		return nil
	}
}

// Column describes one output column. Once registered a column is never
// removed or retyped; Index is its discovery order.
type Column struct {
	Name        string
	Type        ColumnType
	Sentinel    Sentinel
	Description string
	Index       int
}

// maxColumnNameLen bounds generated names so downstream storage never sees
// unbounded identifiers.
const maxColumnNameLen = 120

// ValidColumnName reports whether a name is a usable column identifier:
// letters, digits, and underscores, not starting with a digit.
func ValidColumnName(name string) bool {
	if len(name) == 0 || len(name) > maxColumnNameLen {
		return false
	}
	first := name[0]
	if (first < 'a' || first > 'z') && (first < 'A' || first > 'Z') && first != '_' {
		return false
	}
	for i := 1; i < len(name); i++ {
		c := name[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') && (c < '0' || c > '9') && c != '_' {
			return false
		}
	}
	return true
}

// SanitizeName lowercases an attribute name and folds every non-identifier
// character to an underscore so generated column names stay deterministic.
func SanitizeName(name string) string {
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'A' && c <= 'Z':
			out = append(out, c+('a'-'A'))
		case (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_':
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "_"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = append([]byte{'_'}, out...)
	}
	if len(out) > maxColumnNameLen {
		out = out[:maxColumnNameLen]
	}
	return string(out)
}
