package track

import "fmt"

// State is the construction lifecycle of a constructible entity.
type State int

const (
	StateStarted State = iota
	StateBuilding
	StateCompleted
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateStarted:
		return "started"
	case StateBuilding:
		return "building"
	case StateCompleted:
		return "completed"
	case StateDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Record is the accumulated lifecycle of one constructible entity.
type Record struct {
	State    State
	Progress float64

	StartedLoop   int64
	CompletedLoop int64
	DestroyedLoop int64
	Completed     bool
	Destroyed     bool
}

// ProgressViolation reports a decrease in construction progress, which the
// recording should never contain. The raw reported value is kept so the row
// still carries what the source said.
type ProgressViolation struct {
	ID       StableID
	Loop     int64
	Previous float64
	Reported float64
}

func (v ProgressViolation) String() string {
	return fmt.Sprintf("%s: progress %0.3f -> %0.3f at loop %d", v.ID, v.Previous, v.Reported, v.Loop)
}

// Lifecycle tracks the four-state construction machine for constructible
// entities. Mobile units never enter it; they only use the tracker's
// three-state classification.
type Lifecycle struct {
	records map[StableID]*Record
}

// NewLifecycle returns an empty lifecycle machine.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{records: make(map[StableID]*Record)}
}

// Observe folds one frame's reported progress into the entity's lifecycle.
// The initial state is inferred from the first reported progress. Progress
// must be non-decreasing; a decrease is reported as a violation and the raw
// value is recorded unmodified, never clamped. CompletedLoop is set exactly
// once, at the first frame progress reaches 1. Observations after destruction
// are ignored.
func (l *Lifecycle) Observe(id StableID, progress float64, loop int64) (*Record, *ProgressViolation) {
	rec, ok := l.records[id]
	if !ok {
		rec = &Record{
			State:         initialState(progress),
			Progress:      progress,
			StartedLoop:   loop,
			CompletedLoop: -1,
			DestroyedLoop: -1,
		}
		if rec.State == StateCompleted {
			rec.Completed = true
			rec.CompletedLoop = loop
		}
		l.records[id] = rec
		return rec, nil
	}

	if rec.State == StateDestroyed {
		return rec, nil
	}

	var violation *ProgressViolation
	if progress < rec.Progress {
		violation = &ProgressViolation{ID: id, Loop: loop, Previous: rec.Progress, Reported: progress}
	}
	rec.Progress = progress

	if !rec.Completed && progress >= 1 {
		rec.Completed = true
		rec.CompletedLoop = loop
		rec.State = StateCompleted
	} else if !rec.Completed {
		rec.State = initialState(progress)
	}
	return rec, violation
}

// Destroy marks the entity terminal. The destroyed loop is recorded exactly
// once; repeated calls are no-ops. Reachable from any live state: cancelled
// constructions and finished buildings both end here.
func (l *Lifecycle) Destroy(id StableID, loop int64) *Record {
	rec, ok := l.records[id]
	if !ok {
		rec = &Record{
			State:         StateDestroyed,
			StartedLoop:   loop,
			CompletedLoop: -1,
			DestroyedLoop: loop,
			Destroyed:     true,
		}
		l.records[id] = rec
		return rec
	}
	if rec.State == StateDestroyed {
		return rec
	}
	rec.State = StateDestroyed
	rec.Destroyed = true
	rec.DestroyedLoop = loop
	return rec
}

// Record returns the lifecycle record for an entity, if it has one.
func (l *Lifecycle) Record(id StableID) (*Record, bool) {
	rec, ok := l.records[id]
	return rec, ok
}

func initialState(progress float64) State {
	switch {
	case progress >= 1:
		return StateCompleted
	case progress > 0:
		return StateBuilding
	default:
		return StateStarted
	}
}
