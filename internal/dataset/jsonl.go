package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"sc2dataset/internal/extract"
)

// writeJSONLines persists rows as one JSON object per line. JSON has no NaN,
// so NaN sentinels become null; the schema documentation still records which
// convention each column uses.
func writeJSONLines(path string, result *extract.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dataset file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	enc := json.NewEncoder(w)
	for i, row := range result.Rows {
		encodable := make(map[string]any, len(row))
		for name, value := range row {
			if f, ok := value.(float64); ok && math.IsNaN(f) {
				encodable[name] = nil
				continue
			}
			encodable[name] = value
		}
		if err := enc.Encode(encodable); err != nil {
			return fmt.Errorf("encode row %d: %w", i, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush dataset file: %w", err)
	}
	return nil
}
