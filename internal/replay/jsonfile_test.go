package replay_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"sc2dataset/internal/replay"
	"sc2dataset/internal/services"
)

const manifest = `{
  "metadata": {
    "duration_loops": 200,
    "map_name": "Test Map",
    "players": [
      {"owner": 1, "name": "alpha", "race": "terran"},
      {"owner": 2, "name": "beta", "race": "zerg"}
    ]
  },
  "frames": [
    {
      "loop": 0,
      "entities": [
        {"tag": 42, "type": 48, "owner": 1, "x": 10, "y": 12, "health": 45,
         "attributes": {"health_max": 45}}
      ],
      "economy": {"1": {"minerals": 50, "supply_used": 12, "supply_cap": 15}}
    },
    {
      "loop": 22,
      "entities": [],
      "destroyed": [42],
      "messages": [{"loop": 22, "owner": 2, "text": "gl hf"}]
    }
  ]
}`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recording.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestJSONDecoderStreamsFrames(t *testing.T) {
	path := writeManifest(t, manifest)

	stream, err := replay.JSONDecoder{}.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer stream.Close()

	meta := stream.Metadata()
	if meta.DurationLoops != 200 {
		t.Fatalf("unexpected duration: %d", meta.DurationLoops)
	}
	if len(meta.Players) != 2 || meta.Players[1].Race != "zerg" {
		t.Fatalf("unexpected players: %+v", meta.Players)
	}

	first, err := stream.Next()
	if err != nil {
		t.Fatalf("first frame: %v", err)
	}
	if first.Loop != 0 || len(first.Entities) != 1 {
		t.Fatalf("unexpected first frame: %+v", first)
	}
	if first.Entities[0].Tag != 42 || first.Entities[0].Attributes["health_max"] != 45 {
		t.Fatalf("unexpected entity: %+v", first.Entities[0])
	}
	if first.Economy[1].Minerals != 50 {
		t.Fatalf("unexpected economy: %+v", first.Economy)
	}

	second, err := stream.Next()
	if err != nil {
		t.Fatalf("second frame: %v", err)
	}
	if len(second.Destroyed) != 1 || second.Destroyed[0] != 42 {
		t.Fatalf("unexpected destroyed set: %+v", second.Destroyed)
	}
	if len(second.Messages) != 1 || second.Messages[0].Text != "gl hf" {
		t.Fatalf("unexpected messages: %+v", second.Messages)
	}

	if _, err := stream.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestJSONDecoderReopenable(t *testing.T) {
	path := writeManifest(t, manifest)
	dec := replay.JSONDecoder{}

	for pass := 0; pass < 2; pass++ {
		stream, err := dec.Open(context.Background(), path)
		if err != nil {
			t.Fatalf("pass %d open: %v", pass, err)
		}
		frames := 0
		for {
			_, err := stream.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				t.Fatalf("pass %d next: %v", pass, err)
			}
			frames++
		}
		if frames != 2 {
			t.Fatalf("pass %d: expected 2 frames, got %d", pass, frames)
		}
		if err := stream.Close(); err != nil {
			t.Fatalf("pass %d close: %v", pass, err)
		}
	}
}

func TestJSONDecoderRejectsGarbage(t *testing.T) {
	path := writeManifest(t, "not json")
	if _, err := (replay.JSONDecoder{}).Open(context.Background(), path); err == nil {
		t.Fatal("expected error for malformed manifest")
	}
}

func TestJSONDecoderMissingFileNotRetryable(t *testing.T) {
	_, err := (replay.JSONDecoder{}).Open(context.Background(), filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatal("expected error for missing recording")
	}
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("error not tagged as not found: %v", err)
	}
	if services.Retryable(err) {
		t.Fatal("missing recording should not be retryable")
	}
}

func TestCatalogClassification(t *testing.T) {
	catalog := replay.DefaultCatalog()

	marine := replay.Classify(catalog, 48)
	if marine.Name != "marine" || marine.Kind != replay.KindUnit {
		t.Fatalf("unexpected marine info: %+v", marine)
	}

	barracks := replay.Classify(catalog, 21)
	if barracks.Name != "barracks" || barracks.Kind != replay.KindBuilding {
		t.Fatalf("unexpected barracks info: %+v", barracks)
	}

	minerals := replay.Classify(catalog, 341)
	if minerals.Kind != replay.KindNeutral {
		t.Fatalf("expected mineral field neutral, got %+v", minerals)
	}

	unknown := replay.Classify(catalog, 99999)
	if unknown.Name != "type_99999" || unknown.Kind != replay.KindUnit {
		t.Fatalf("unexpected fallback info: %+v", unknown)
	}
}

func TestDisplayName(t *testing.T) {
	if got := replay.DisplayName("siege_tank"); got != "Siege Tank" {
		t.Fatalf("DisplayName = %q", got)
	}
}
