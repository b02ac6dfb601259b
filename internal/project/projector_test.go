package project

import (
	"math"
	"testing"

	"sc2dataset/internal/logging"
	"sc2dataset/internal/replay"
	"sc2dataset/internal/schema"
	"sc2dataset/internal/track"
)

func newRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	r := schema.NewRegistry()
	r.RegisterBaseColumns()
	r.RegisterEntityColumns(track.StableID{Owner: 1, Type: "marine", Seq: 0}, replay.KindUnit)
	r.RegisterEconomyColumns(1)
	return r
}

func TestNewRowInitializesSentinels(t *testing.T) {
	reg := newRegistry(t)
	p := NewProjector(reg, logging.NewNop())
	row := p.NewRow()

	if len(row) != reg.Len() {
		t.Fatalf("row has %d cells, want %d", len(row), reg.Len())
	}
	if got := row["game_loop"]; got != int64(0) {
		t.Fatalf("game_loop sentinel = %v, want int64(0)", got)
	}
	if v, ok := row["p1_marine_000_health"].(float64); !ok || !math.IsNaN(v) {
		t.Fatalf("health sentinel = %v, want NaN", row["p1_marine_000_health"])
	}
	if row["p1_marine_000_state"] != nil {
		t.Fatalf("state sentinel = %v, want nil", row["p1_marine_000_state"])
	}
	if err := p.Validate(row); err != nil {
		t.Fatalf("fresh row invalid: %v", err)
	}
}

func TestSetCoercesNumerics(t *testing.T) {
	reg := newRegistry(t)
	p := NewProjector(reg, logging.NewNop())
	row := p.NewRow()

	if err := p.Set(row, "game_loop", 160); err != nil {
		t.Fatalf("set game_loop: %v", err)
	}
	if got := row["game_loop"]; got != int64(160) {
		t.Fatalf("game_loop = %v (%T)", got, got)
	}
	if err := p.Set(row, "p1_marine_000_health", int64(45)); err != nil {
		t.Fatalf("set health: %v", err)
	}
	if got := row["p1_marine_000_health"]; got != float64(45) {
		t.Fatalf("health = %v (%T)", got, got)
	}
}

func TestSetBadValueFallsBackToSentinel(t *testing.T) {
	reg := newRegistry(t)
	p := NewProjector(reg, logging.NewNop())
	row := p.NewRow()

	if err := p.Set(row, "game_loop", "not a number"); err != nil {
		t.Fatalf("set returned error: %v", err)
	}
	if got := row["game_loop"]; got != int64(0) {
		t.Fatalf("game_loop = %v, want sentinel", got)
	}
	// Fractional values do not silently truncate into integer columns.
	if err := p.Set(row, "p1_minerals", 50.5); err != nil {
		t.Fatalf("set returned error: %v", err)
	}
	if v, ok := row["p1_minerals"].(float64); !ok || !math.IsNaN(v) {
		t.Fatalf("minerals = %v, want NaN sentinel", row["p1_minerals"])
	}
	if p.Coercions() != 2 {
		t.Fatalf("coercions = %d, want 2", p.Coercions())
	}
}

func TestSetUnknownColumnRejected(t *testing.T) {
	reg := newRegistry(t)
	p := NewProjector(reg, logging.NewNop())
	row := p.NewRow()

	if err := p.Set(row, "p9_ghost_000_health", 1.0); err == nil {
		t.Fatal("expected error for unregistered column")
	}
}

func TestValidateDetectsStrayCells(t *testing.T) {
	reg := newRegistry(t)
	p := NewProjector(reg, logging.NewNop())
	row := p.NewRow()
	row["stray"] = 1

	if err := p.Validate(row); err == nil {
		t.Fatal("expected validation failure for stray cell")
	}

	delete(row, "stray")
	delete(row, "game_loop")
	if err := p.Validate(row); err == nil {
		t.Fatal("expected validation failure for missing cell")
	}
}
