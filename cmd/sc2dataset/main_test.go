package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sc2dataset/internal/replay"
	"sc2dataset/internal/testsupport"
)

func fixtureRecording() (replay.Metadata, []replay.Frame) {
	meta := replay.Metadata{
		DurationLoops: 100,
		MapName:       "Test Map",
		Players: []replay.PlayerInfo{
			{Owner: 1, Name: "one", Race: "terran"},
			{Owner: 2, Name: "two", Race: "zerg"},
		},
	}
	frames := []replay.Frame{
		{Loop: 0, Entities: []replay.EntitySnapshot{
			{Tag: 100, Type: 48, Owner: 1, X: 10, Y: 20, Health: 45},
		}},
		{Loop: 22, Entities: []replay.EntitySnapshot{
			{Tag: 100, Type: 48, Owner: 1, X: 11, Y: 20, Health: 40},
			{Tag: 200, Type: 21, Owner: 2, X: 30, Y: 40, BuildProgress: 0.2},
		}},
	}
	return meta, frames
}

func writeFixtures(t *testing.T) (configPath, replayPath, outputDir string) {
	t.Helper()
	dir := t.TempDir()
	outputDir = filepath.Join(dir, "out")

	configPath = filepath.Join(dir, "config.toml")
	content := fmt.Sprintf(`[paths]
output_dir = %q
log_dir = %q
ledger_dir = %q

[output]
format = "json"
write_schema_docs = true

[validation]
enabled = true
`, outputDir, filepath.Join(dir, "logs"), filepath.Join(dir, "ledger"))
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	meta, frames := fixtureRecording()
	replayPath = testsupport.WriteRecording(t, filepath.Join(dir, "game_one.json"), meta, frames)
	return configPath, replayPath, outputDir
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestExtractCommandEndToEnd(t *testing.T) {
	configPath, replayPath, outputDir := writeFixtures(t)

	out, err := runCommand(t, "--config", configPath, "extract", replayPath)
	if err != nil {
		t.Fatalf("extract: %v\n%s", err, out)
	}
	if !strings.Contains(out, "2 rows") {
		t.Fatalf("summary missing row count:\n%s", out)
	}

	if _, err := os.Stat(filepath.Join(outputDir, "game_one.jsonl")); err != nil {
		t.Fatalf("dataset missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "game_one.schema.json")); err != nil {
		t.Fatalf("schema docs missing: %v", err)
	}
}

func TestExtractCommandMissingReplay(t *testing.T) {
	configPath, _, _ := writeFixtures(t)

	out, err := runCommand(t, "--config", configPath, "extract", "/nonexistent/replay.json")
	if err == nil {
		t.Fatalf("expected failure, got:\n%s", out)
	}
}

func TestBatchAndStatusCommands(t *testing.T) {
	configPath, replayPath, _ := writeFixtures(t)

	out, err := runCommand(t, "--config", configPath, "batch", replayPath)
	if err != nil {
		t.Fatalf("batch: %v\n%s", err, out)
	}
	if !strings.Contains(out, "1 completed") {
		t.Fatalf("batch summary missing:\n%s", out)
	}

	out, err = runCommand(t, "--config", configPath, "status")
	if err != nil {
		t.Fatalf("status: %v\n%s", err, out)
	}
	if !strings.Contains(out, "completed 1") {
		t.Fatalf("status stats missing:\n%s", out)
	}
	if !strings.Contains(out, "game_one.json") {
		t.Fatalf("status table missing replay:\n%s", out)
	}
}

func TestSchemaCommandJSON(t *testing.T) {
	configPath, replayPath, _ := writeFixtures(t)

	out, err := runCommand(t, "--config", configPath, "schema", replayPath, "--json")
	if err != nil {
		t.Fatalf("schema: %v\n%s", err, out)
	}
	for _, want := range []string{"game_loop", "p1_marine_001_health", "p2_barracks_001_progress"} {
		if !strings.Contains(out, want) {
			t.Fatalf("schema output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	target := filepath.Join(dir, "config.toml")

	out, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v\n%s", err, out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config missing: %v", err)
	}

	if out, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatalf("second init without --overwrite succeeded:\n%s", out)
	}

	out, err = runCommand(t, "--config", target, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Configuration valid") {
		t.Fatalf("validate output:\n%s", out)
	}
}
