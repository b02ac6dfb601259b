package track

import "testing"

// Progress sequence [0.0, 0.4, 1.0] at loops [0, 50, 100] walks
// started -> building -> completed with the completion loop recorded once.
func TestLifecycleProgression(t *testing.T) {
	lc := NewLifecycle()
	id := StableID{Owner: 1, Type: "barracks", Seq: 1}

	rec, violation := lc.Observe(id, 0.0, 0)
	if violation != nil {
		t.Fatalf("unexpected violation: %v", violation)
	}
	if rec.State != StateStarted || rec.StartedLoop != 0 {
		t.Fatalf("unexpected initial record: %+v", rec)
	}

	rec, violation = lc.Observe(id, 0.4, 50)
	if violation != nil {
		t.Fatalf("unexpected violation: %v", violation)
	}
	if rec.State != StateBuilding {
		t.Fatalf("expected building at 0.4, got %v", rec.State)
	}

	rec, violation = lc.Observe(id, 1.0, 100)
	if violation != nil {
		t.Fatalf("unexpected violation: %v", violation)
	}
	if rec.State != StateCompleted || !rec.Completed || rec.CompletedLoop != 100 {
		t.Fatalf("unexpected completed record: %+v", rec)
	}

	// A later observation at full progress must not move the completion loop.
	rec, _ = lc.Observe(id, 1.0, 150)
	if rec.CompletedLoop != 100 {
		t.Fatalf("completion loop moved to %d", rec.CompletedLoop)
	}
}

// Progress sequence [0.0, 0.5, 0.3] reports a violation at the decrease while
// the raw value is still recorded, never clamped.
func TestLifecycleProgressDecreaseReported(t *testing.T) {
	lc := NewLifecycle()
	id := StableID{Owner: 2, Type: "gateway", Seq: 1}

	lc.Observe(id, 0.0, 0)
	lc.Observe(id, 0.5, 50)
	rec, violation := lc.Observe(id, 0.3, 100)
	if violation == nil {
		t.Fatal("expected progress violation")
	}
	if violation.Previous != 0.5 || violation.Reported != 0.3 || violation.Loop != 100 {
		t.Fatalf("unexpected violation detail: %+v", violation)
	}
	if rec.Progress != 0.3 {
		t.Fatalf("expected raw value recorded, got %v", rec.Progress)
	}
	if rec.State != StateBuilding {
		t.Fatalf("unexpected state after decrease: %v", rec.State)
	}
}

func TestLifecycleInitialStateInference(t *testing.T) {
	lc := NewLifecycle()

	cases := []struct {
		progress float64
		want     State
	}{
		{0.0, StateStarted},
		{0.25, StateBuilding},
		{1.0, StateCompleted},
	}
	for i, tc := range cases {
		id := StableID{Owner: 1, Type: "pylon", Seq: i + 1}
		rec, _ := lc.Observe(id, tc.progress, 10)
		if rec.State != tc.want {
			t.Fatalf("progress %v: expected %v, got %v", tc.progress, tc.want, rec.State)
		}
	}
}

func TestLifecycleFirstSightCompleted(t *testing.T) {
	lc := NewLifecycle()
	id := StableID{Owner: 1, Type: "nexus", Seq: 1}

	rec, _ := lc.Observe(id, 1.0, 0)
	if !rec.Completed || rec.CompletedLoop != 0 {
		t.Fatalf("expected pre-built entity completed at first sight: %+v", rec)
	}
}

func TestLifecycleDestroyIsTerminal(t *testing.T) {
	lc := NewLifecycle()
	id := StableID{Owner: 1, Type: "bunker", Seq: 1}

	lc.Observe(id, 0.6, 10)
	rec := lc.Destroy(id, 40)
	if rec.State != StateDestroyed || rec.DestroyedLoop != 40 {
		t.Fatalf("unexpected destroy record: %+v", rec)
	}
	if rec.Completed {
		t.Fatal("cancelled construction must not be marked completed")
	}

	// Later observations and repeated destruction are ignored.
	rec, violation := lc.Observe(id, 0.9, 50)
	if violation != nil {
		t.Fatalf("unexpected violation after destruction: %v", violation)
	}
	if rec.State != StateDestroyed || rec.Progress != 0.6 {
		t.Fatalf("expected frozen record, got %+v", rec)
	}
	rec = lc.Destroy(id, 90)
	if rec.DestroyedLoop != 40 {
		t.Fatalf("destroyed loop moved to %d", rec.DestroyedLoop)
	}
}

func TestLifecycleDestroyAfterCompletion(t *testing.T) {
	lc := NewLifecycle()
	id := StableID{Owner: 2, Type: "hatchery", Seq: 1}

	lc.Observe(id, 1.0, 30)
	rec := lc.Destroy(id, 200)
	if !rec.Completed || rec.CompletedLoop != 30 {
		t.Fatalf("completion must survive destruction: %+v", rec)
	}
	if !rec.Destroyed || rec.DestroyedLoop != 200 {
		t.Fatalf("unexpected destruction detail: %+v", rec)
	}
}
