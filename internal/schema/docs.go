package schema

import (
	"encoding/json"
	"fmt"
	"os"
)

// columnDoc is the per-column entry in the exported documentation.
type columnDoc struct {
	Description  string `json:"description"`
	Type         string `json:"type"`
	MissingValue string `json:"missing_value"`
}

// docsFile is the on-disk layout of the schema documentation export.
type docsFile struct {
	Columns       []string             `json:"columns"`
	Dtypes        map[string]string    `json:"dtypes"`
	Documentation map[string]columnDoc `json:"documentation"`
}

// Docs renders the registry as a JSON document describing every column's
// order, type, and missing-value convention.
func (r *Registry) Docs() ([]byte, error) {
	out := docsFile{
		Columns:       make([]string, 0, len(r.columns)),
		Dtypes:        make(map[string]string, len(r.columns)),
		Documentation: make(map[string]columnDoc, len(r.columns)),
	}
	for _, col := range r.columns {
		out.Columns = append(out.Columns, col.Name)
		out.Dtypes[col.Name] = col.Type.String()
		out.Documentation[col.Name] = columnDoc{
			Description:  col.Description,
			Type:         col.Type.String(),
			MissingValue: col.Sentinel.String(),
		}
	}
	return json.MarshalIndent(out, "", "  ")
}

// WriteDocs writes the schema documentation to path.
func (r *Registry) WriteDocs(path string) error {
	data, err := r.Docs()
	if err != nil {
		return fmt.Errorf("encode schema docs: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write schema docs: %w", err)
	}
	return nil
}
