package schema

import (
	"github.com/apache/arrow-go/v18/arrow"
)

// ArrowType maps a registry column to its Arrow physical type. Int64 columns
// whose missing-value marker is NaN are widened to Float64, since NaN has no
// integer representation. Zero-sentinel columns stay Int64.
func ArrowType(col Column) arrow.DataType {
	switch col.Type {
	case TypeInt64:
		if col.Sentinel == SentinelNaN {
			return arrow.PrimitiveTypes.Float64
		}
		return arrow.PrimitiveTypes.Int64
	case TypeFloat64:
		return arrow.PrimitiveTypes.Float64
	default:
		return arrow.BinaryTypes.String
	}
}

// Arrow builds the Arrow schema for the registered columns, annotating each
// field with its logical type and missing-value marker so downstream readers
// can reconstruct the registry's intent.
func (r *Registry) Arrow() *arrow.Schema {
	fields := make([]arrow.Field, len(r.columns))
	for i, col := range r.columns {
		fields[i] = arrow.Field{
			Name:     col.Name,
			Type:     ArrowType(col),
			Nullable: true,
			Metadata: arrow.NewMetadata(
				[]string{"logical_type", "missing_value"},
				[]string{col.Type.String(), col.Sentinel.String()},
			),
		}
	}
	return arrow.NewSchema(fields, nil)
}
