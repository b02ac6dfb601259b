package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"sc2dataset/internal/services"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"unknown": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestConsoleHandlerOutput(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl, false))

	logger = NewComponentLogger(logger, "tracker")
	logger.Info("entity created", String(FieldJobID, "job-1"), Int64(FieldFrame, 120))

	out := buf.String()
	for _, fragment := range []string{"INFO", "[tracker]", "entity created", "job_id: job-1", "frame: 120"} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected %q in output %q", fragment, out)
		}
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, lvl, false))

	logger.Info("quiet")
	if buf.Len() != 0 {
		t.Fatalf("expected info suppressed, got %q", buf.String())
	}
	logger.Warn("loud")
	if !strings.Contains(buf.String(), "loud") {
		t.Fatalf("expected warn emitted, got %q", buf.String())
	}
}

func TestJSONHandlerKeyRemap(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newJSONHandler(&buf, lvl, false))

	logger.Info("row emitted", String(FieldJobID, "job-2"))

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode json log line: %v", err)
	}
	if decoded["msg"] != "row emitted" {
		t.Fatalf("unexpected msg: %v", decoded["msg"])
	}
	if decoded["level"] != "info" {
		t.Fatalf("unexpected level: %v", decoded["level"])
	}
	if _, ok := decoded["ts"]; !ok {
		t.Fatal("expected ts key")
	}
	if decoded[FieldJobID] != "job-2" {
		t.Fatalf("unexpected job_id: %v", decoded[FieldJobID])
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl, false))

	ctx := services.WithJobID(context.Background(), "job-3")
	ctx = services.WithStage(ctx, "extract")

	WithContext(ctx, logger).Info("working")
	out := buf.String()
	if !strings.Contains(out, "job_id: job-3") || !strings.Contains(out, "stage: extract") {
		t.Fatalf("expected context fields in output %q", out)
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(Options{
		Level:       "info",
		Format:      "json",
		OutputPaths: []string{filepath.Join(dir, "nested", "run.log")},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("persisted")
}
