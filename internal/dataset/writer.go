package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sc2dataset/internal/extract"
)

// Formats accepted by Write.
const (
	FormatIPC  = "ipc"
	FormatJSON = "json"
)

// Options controls where and how a result is persisted.
type Options struct {
	Dir    string
	Format string
	// ChunkSize bounds how many rows go into one Arrow record batch.
	ChunkSize       int
	WriteSchemaDocs bool
}

// Output reports what Write produced.
type Output struct {
	DataPath string
	DocsPath string
	Rows     int
}

// Write persists an extraction result under opts.Dir. The data file is named
// after the recording; schema documentation lands next to it when requested.
func Write(result *extract.Result, opts Options) (*Output, error) {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 4096
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	stem := sourceStem(result.Source)
	out := &Output{Rows: len(result.Rows)}

	switch opts.Format {
	case FormatIPC, "":
		out.DataPath = filepath.Join(opts.Dir, stem+".arrow")
		if err := writeIPC(out.DataPath, result, opts.ChunkSize); err != nil {
			return nil, err
		}
	case FormatJSON:
		out.DataPath = filepath.Join(opts.Dir, stem+".jsonl")
		if err := writeJSONLines(out.DataPath, result); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown output format %q", opts.Format)
	}

	if opts.WriteSchemaDocs {
		out.DocsPath = filepath.Join(opts.Dir, stem+".schema.json")
		if err := result.Registry.WriteDocs(out.DocsPath); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func sourceStem(source string) string {
	base := filepath.Base(source)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" || base == "." {
		base = "dataset"
	}
	return base
}
