package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"sc2dataset/internal/replay"
)

// Manifest is the on-disk recording document replay.JSONDecoder consumes.
type Manifest struct {
	Metadata replay.Metadata `json:"metadata"`
	Frames   []replay.Frame  `json:"frames"`
}

// WriteRecording marshals a manifest to path so tests can feed the real file
// decoder instead of the in-memory one.
func WriteRecording(t testing.TB, path string, meta replay.Metadata, frames []replay.Frame) string {
	t.Helper()

	data, err := json.MarshalIndent(Manifest{Metadata: meta, Frames: frames}, "", "  ")
	if err != nil {
		t.Fatalf("marshal recording: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
