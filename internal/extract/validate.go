package extract

import (
	"fmt"
	"strings"

	"sc2dataset/internal/schema"
	"sc2dataset/internal/services"
)

// ValidationOptions controls post-run dataset checks.
type ValidationOptions struct {
	Enabled bool
	// PervasiveWarningRatio escalates progress violations to an error when
	// they affect more than this fraction of processed frames.
	PervasiveWarningRatio float64
}

// ValidationReport collects the findings of one validation pass. Errors make
// the job fail; warnings are logged and carried through.
type ValidationReport struct {
	Errors   []string
	Warnings []string
}

// OK reports whether the dataset passed without errors.
func (r *ValidationReport) OK() bool { return len(r.Errors) == 0 }

// Err converts accumulated errors into a job failure, or nil.
func (r *ValidationReport) Err() error {
	if r.OK() {
		return nil
	}
	return services.Wrap(services.ErrValidation, "validate", "dataset",
		strings.Join(r.Errors, "; "), nil)
}

func (r *ValidationReport) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationReport) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validate checks structural integrity of an extraction result: unique and
// increasing frame keys, rows congruent with the registry, sane aggregate
// metrics, and construction progress that mostly behaved.
func Validate(result *Result, opts ValidationOptions) *ValidationReport {
	report := &ValidationReport{}
	if !opts.Enabled {
		return report
	}

	seenLoops := make(map[int64]bool, len(result.Rows))
	lastLoop := int64(-1)
	for i, row := range result.Rows {
		if len(row) != result.Registry.Len() {
			report.errorf("row %d has %d cells, schema has %d columns", i, len(row), result.Registry.Len())
		}
		loop, ok := row[schema.ColGameLoop].(int64)
		if !ok {
			report.errorf("row %d has no integral %s", i, schema.ColGameLoop)
			continue
		}
		if seenLoops[loop] {
			report.errorf("duplicate %s %d", schema.ColGameLoop, loop)
		}
		seenLoops[loop] = true
		if loop < lastLoop {
			report.errorf("%s decreased from %d to %d at row %d", schema.ColGameLoop, lastLoop, loop, i)
		}
		lastLoop = loop

		checkResources(report, row, i)
	}

	if n := len(result.Violations); n > 0 {
		frames := result.FramesRead
		if frames > 0 && opts.PervasiveWarningRatio > 0 &&
			float64(n) > opts.PervasiveWarningRatio*float64(frames) {
			report.errorf("construction progress decreased %d times across %d frames", n, frames)
		} else {
			report.warnf("construction progress decreased %d times", n)
		}
	}
	return report
}

var resourceSuffixes = []string{
	"_minerals", "_vespene", "_supply_used", "_supply_cap",
	"_workers", "_idle_workers", "_army_count",
}

// checkResources flags negative aggregate metrics. Sentinel cells (NaN after
// type widening) are skipped.
func checkResources(report *ValidationReport, row map[string]any, index int) {
	for name, value := range row {
		if !isResourceColumn(name) {
			continue
		}
		v, ok := value.(int64)
		if !ok {
			continue
		}
		if v < 0 {
			report.warnf("row %d: %s is negative (%d)", index, name, v)
		}
	}
}

func isResourceColumn(name string) bool {
	for _, suffix := range resourceSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
