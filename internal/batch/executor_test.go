package batch

import (
	"context"
	"errors"
	"os"
	"testing"

	"sc2dataset/internal/dataset"
	"sc2dataset/internal/extract"
	"sc2dataset/internal/joblog"
	"sc2dataset/internal/logging"
	"sc2dataset/internal/replay"
	"sc2dataset/internal/schema"
	"sc2dataset/internal/testsupport"
)

func scriptedDecoder() *testsupport.MemoryDecoder {
	meta := replay.Metadata{
		DurationLoops: 100,
		Players:       []replay.PlayerInfo{{Owner: 1, Name: "one", Race: "terran"}},
	}
	frames := []replay.Frame{
		{Loop: 0, Entities: []replay.EntitySnapshot{{Tag: 100, Type: 48, Owner: 1, Health: 45}}},
		{Loop: 22, Entities: []replay.EntitySnapshot{{Tag: 100, Type: 48, Owner: 1, Health: 40}}},
	}

	dec := testsupport.NewMemoryDecoder()
	dec.Add("/replays/a.json", &testsupport.Recording{Meta: meta, Frames: frames})
	dec.Add("/replays/b.json", &testsupport.Recording{
		Meta:    meta,
		Frames:  frames[:1],
		NextErr: errors.New("unexpected end of stream"),
	})
	dec.Add("/replays/c.json", &testsupport.Recording{Meta: meta, Frames: frames})
	return dec
}

func TestBatchWithCorruptRecording(t *testing.T) {
	dec := scriptedDecoder()
	cfg := testsupport.NewConfig(t, testsupport.WithWorkers(2))
	store := testsupport.MustOpenStore(t, cfg.Paths.LedgerDir)

	pipeline := extract.New(dec, replay.DefaultCatalog(), logging.NewNop(), extract.Options{SampleInterval: 22})
	executor := NewExecutor(pipeline,
		dataset.Options{Dir: cfg.Paths.OutputDir, Format: cfg.Output.Format},
		extract.ValidationOptions{Enabled: true, PervasiveWarningRatio: 0.01},
		store, logging.NewNop())

	ctx := context.Background()
	sources := []string{"/replays/a.json", "/replays/b.json", "/replays/c.json"}
	jobs := make([]Job, 0, len(sources))
	for _, source := range sources {
		job, err := store.Add(ctx, source)
		if err != nil {
			t.Fatalf("add job: %v", err)
		}
		jobs = append(jobs, Job{JobID: job.JobID, Source: source})
	}

	coordinator := NewCoordinator(cfg.Batch.Workers, executor.Run, logging.NewNop())
	results := coordinator.Run(ctx, jobs)

	if len(results) != 3 {
		t.Fatalf("results = %d", len(results))
	}
	if !results[0].Success() || !results[2].Success() {
		t.Fatalf("healthy recordings failed: %v, %v", results[0].Err, results[2].Err)
	}
	if results[1].Success() {
		t.Fatal("corrupt recording reported success")
	}
	for i, result := range results {
		if result.JobID != jobs[i].JobID {
			t.Fatalf("result %d out of submission order", i)
		}
	}

	// Healthy outputs exist on disk.
	for _, result := range []Result{results[0], results[2]} {
		if _, err := os.Stat(result.OutputPath); err != nil {
			t.Fatalf("output missing: %v", err)
		}
		if result.Rows != 2 {
			t.Fatalf("rows = %d, want 2", result.Rows)
		}
	}

	// Ledger reflects the outcomes.
	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats[joblog.StatusCompleted] != 2 || stats[joblog.StatusFailed] != 1 {
		t.Fatalf("ledger stats = %v", stats)
	}

	// The decode failure is retryable; only it comes back as pending.
	pending, err := store.RetryFailed(ctx)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if len(pending) != 1 || pending[0].JobID != jobs[1].JobID {
		t.Fatalf("pending after retry = %+v", pending)
	}
}

func TestExecutorWithoutLedger(t *testing.T) {
	dec := scriptedDecoder()
	cfg := testsupport.NewConfig(t, testsupport.WithStrategy("incremental"))
	pipeline := extract.New(dec, replay.DefaultCatalog(), logging.NewNop(), extract.Options{
		SampleInterval: 22,
		Strategy:       schema.Strategy(cfg.Extraction.SchemaStrategy),
	})
	executor := NewExecutor(pipeline,
		dataset.Options{Dir: cfg.Paths.OutputDir, Format: dataset.FormatJSON},
		extract.ValidationOptions{Enabled: true},
		nil, logging.NewNop())

	result := executor.Run(context.Background(), Job{JobID: "adhoc", Source: "/replays/a.json"})
	if !result.Success() {
		t.Fatalf("one-off run failed: %v", result.Err)
	}
	if result.Columns == 0 {
		t.Fatal("result missing column count")
	}
}
