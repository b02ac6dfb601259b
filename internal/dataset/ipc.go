package dataset

import (
	"fmt"
	"math"
	"os"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"sc2dataset/internal/extract"
	"sc2dataset/internal/project"
)

// writeIPC persists rows as an Arrow IPC file, batching chunkSize rows per
// record so very long games never materialize a single giant batch.
func writeIPC(path string, result *extract.Result, chunkSize int) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dataset file: %w", err)
	}
	defer file.Close()

	arrowSchema := result.Registry.Arrow()
	writer, err := ipc.NewFileWriter(file,
		ipc.WithSchema(arrowSchema),
		ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return fmt.Errorf("open ipc writer: %w", err)
	}

	builder := array.NewRecordBuilder(memory.DefaultAllocator, arrowSchema)
	defer builder.Release()

	rows := result.Rows
	for start := 0; start < len(rows); start += chunkSize {
		end := start + chunkSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := appendChunk(builder, result, rows[start:end]); err != nil {
			_ = writer.Close()
			return err
		}
		record := builder.NewRecord()
		err := writer.Write(record)
		record.Release()
		if err != nil {
			_ = writer.Close()
			return fmt.Errorf("write record batch: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("close ipc writer: %w", err)
	}
	return nil
}

func appendChunk(builder *array.RecordBuilder, result *extract.Result, rows []project.Row) error {
	for i, col := range result.Registry.Columns() {
		field := builder.Field(i)
		switch fb := field.(type) {
		case *array.Int64Builder:
			for _, row := range rows {
				if v, ok := row[col.Name].(int64); ok {
					fb.Append(v)
				} else {
					fb.AppendNull()
				}
			}
		case *array.Float64Builder:
			for _, row := range rows {
				appendFloat(fb, row[col.Name])
			}
		case *array.StringBuilder:
			for _, row := range rows {
				if v, ok := row[col.Name].(string); ok {
					fb.Append(v)
				} else {
					fb.AppendNull()
				}
			}
		default:
			return fmt.Errorf("column %q: unsupported builder %T", col.Name, field)
		}
	}
	return nil
}

// appendFloat accepts both native floats and integral cells from columns
// widened to Float64 because their missing-value marker is NaN. The NaN
// sentinel itself is kept as NaN rather than converted to null, matching the
// documented missing-value convention.
func appendFloat(fb *array.Float64Builder, value any) {
	switch v := value.(type) {
	case float64:
		fb.Append(v)
	case int64:
		fb.Append(float64(v))
	case int:
		fb.Append(float64(v))
	default:
		fb.Append(math.NaN())
	}
}
