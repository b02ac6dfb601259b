package project

import (
	"fmt"
	"log/slog"
	"strconv"

	"sc2dataset/internal/logging"
	"sc2dataset/internal/schema"
)

// Row holds one sampled frame keyed by column name. Every registered column
// is present in every row; cells with no observation carry the column's
// missing-value marker.
type Row map[string]any

// Projector materializes rows against a column registry. Projection never
// fails a frame: a value that cannot be coerced to its column's type is
// replaced by the column's sentinel and logged.
type Projector struct {
	registry *schema.Registry
	logger   *slog.Logger

	coercions int
}

// NewProjector returns a projector bound to a registry.
func NewProjector(registry *schema.Registry, logger *slog.Logger) *Projector {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Projector{registry: registry, logger: logger}
}

// NewRow returns a row with every registered column set to its sentinel.
func (p *Projector) NewRow() Row {
	row := make(Row, p.registry.Len())
	for _, col := range p.registry.Columns() {
		row[col.Name] = col.Sentinel.Value()
	}
	return row
}

// Set writes a value into row. Unknown columns are rejected so callers catch
// registration gaps; bad values degrade to the sentinel.
func (p *Projector) Set(row Row, column string, value any) error {
	col, ok := p.registry.Lookup(column)
	if !ok {
		return fmt.Errorf("column %q not registered", column)
	}
	coerced, ok := coerce(col.Type, value)
	if !ok {
		p.coercions++
		p.logger.Warn("value does not fit column type, using missing-value marker",
			logging.String("column", column),
			logging.String("value", fmt.Sprintf("%v", value)),
			logging.String("type", col.Type.String()))
		coerced = col.Sentinel.Value()
	}
	row[col.Name] = coerced
	return nil
}

// Coercions reports how many values were replaced by sentinels so far.
func (p *Projector) Coercions() int {
	return p.coercions
}

// Validate confirms the row's key set matches the registry exactly. Rows from
// NewRow always pass; a failure means a caller wrote past the registry.
func (p *Projector) Validate(row Row) error {
	if len(row) != p.registry.Len() {
		return fmt.Errorf("row has %d cells, registry has %d columns", len(row), p.registry.Len())
	}
	for name := range row {
		if _, ok := p.registry.Lookup(name); !ok {
			return fmt.Errorf("row cell %q has no registered column", name)
		}
	}
	return nil
}

// coerce converts value to the column's representation. Int64 columns accept
// any integral numeric; float columns accept any numeric; string columns
// accept strings and stringify numerics.
func coerce(typ schema.ColumnType, value any) (any, bool) {
	switch typ {
	case schema.TypeInt64:
		switch v := value.(type) {
		case int:
			return int64(v), true
		case int64:
			return v, true
		case float64:
			if v != float64(int64(v)) {
				return nil, false
			}
			return int64(v), true
		default:
			return nil, false
		}
	case schema.TypeFloat64:
		switch v := value.(type) {
		case int:
			return float64(v), true
		case int64:
			return float64(v), true
		case float64:
			return v, true
		default:
			return nil, false
		}
	case schema.TypeString:
		switch v := value.(type) {
		case string:
			return v, true
		case float64:
			return strconv.FormatFloat(v, 'g', -1, 64), true
		case int64:
			return strconv.FormatInt(v, 10), true
		case int:
			return strconv.Itoa(v), true
		default:
			return nil, false
		}
	default:
		return nil, false
	}
}
