package extract

import (
	"errors"
	"testing"

	"sc2dataset/internal/project"
	"sc2dataset/internal/schema"
	"sc2dataset/internal/services"
	"sc2dataset/internal/track"
)

func validationResult(t *testing.T, loops []int64, minerals []int64) *Result {
	t.Helper()
	reg := schema.NewRegistry()
	reg.RegisterBaseColumns()
	reg.RegisterEconomyColumns(1)

	rows := make([]project.Row, 0, len(loops))
	for i, loop := range loops {
		row := make(project.Row, reg.Len())
		for _, col := range reg.Columns() {
			row[col.Name] = col.Sentinel.Value()
		}
		row[schema.ColGameLoop] = loop
		if i < len(minerals) {
			row["p1_minerals"] = minerals[i]
		}
		rows = append(rows, row)
	}
	return &Result{Registry: reg, Rows: rows, FramesRead: len(loops)}
}

func TestValidateCleanDataset(t *testing.T) {
	result := validationResult(t, []int64{0, 22, 44}, []int64{50, 100, 150})
	report := Validate(result, ValidationOptions{Enabled: true, PervasiveWarningRatio: 0.01})

	if !report.OK() {
		t.Fatalf("clean dataset failed: %v", report.Errors)
	}
	if len(report.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", report.Warnings)
	}
	if report.Err() != nil {
		t.Fatalf("Err() = %v, want nil", report.Err())
	}
}

func TestValidateDuplicateFrameKey(t *testing.T) {
	result := validationResult(t, []int64{0, 22, 22}, nil)
	report := Validate(result, ValidationOptions{Enabled: true})

	if report.OK() {
		t.Fatal("duplicate game_loop not flagged as error")
	}
	if !errors.Is(report.Err(), services.ErrValidation) {
		t.Fatalf("Err() = %v, want validation marker", report.Err())
	}
}

func TestValidateRaggedRow(t *testing.T) {
	result := validationResult(t, []int64{0, 22}, nil)
	delete(result.Rows[1], "p1_minerals")
	report := Validate(result, ValidationOptions{Enabled: true})

	if report.OK() {
		t.Fatal("ragged row not flagged as error")
	}
}

func TestValidateNegativeResourcesWarn(t *testing.T) {
	result := validationResult(t, []int64{0, 22}, []int64{50, -10})
	report := Validate(result, ValidationOptions{Enabled: true})

	if !report.OK() {
		t.Fatalf("negative resource escalated to error: %v", report.Errors)
	}
	if len(report.Warnings) != 1 {
		t.Fatalf("warnings = %v, want one", report.Warnings)
	}
}

func TestValidateProgressViolations(t *testing.T) {
	id := track.StableID{Owner: 1, Type: "barracks", Seq: 1}

	result := validationResult(t, []int64{0, 22}, nil)
	result.FramesRead = 200
	result.Violations = []track.ProgressViolation{{ID: id, Loop: 22, Previous: 0.5, Reported: 0.3}}
	report := Validate(result, ValidationOptions{Enabled: true, PervasiveWarningRatio: 0.01})
	if !report.OK() || len(report.Warnings) != 1 {
		t.Fatalf("isolated violation: errors=%v warnings=%v", report.Errors, report.Warnings)
	}

	// The same violation count over few frames is pervasive.
	result.FramesRead = 10
	for i := 0; i < 4; i++ {
		result.Violations = append(result.Violations, result.Violations[0])
	}
	report = Validate(result, ValidationOptions{Enabled: true, PervasiveWarningRatio: 0.01})
	if report.OK() {
		t.Fatal("pervasive violations not escalated to error")
	}
}

func TestValidateDisabled(t *testing.T) {
	result := validationResult(t, []int64{0, 0}, nil)
	report := Validate(result, ValidationOptions{Enabled: false})
	if !report.OK() {
		t.Fatalf("disabled validation produced errors: %v", report.Errors)
	}
}
