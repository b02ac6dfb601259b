package testsupport

import (
	"context"
	"fmt"
	"io"
	"sync"

	"sc2dataset/internal/replay"
)

// Recording is a scripted replay for tests.
type Recording struct {
	Meta   replay.Metadata
	Frames []replay.Frame
	// NextErr, when set, is returned after the scripted frames instead of
	// io.EOF to simulate a truncated or corrupt recording.
	NextErr error
}

// MemoryDecoder serves scripted recordings by path. Paths with no recording
// fail to open, standing in for unreadable files.
type MemoryDecoder struct {
	mu         sync.Mutex
	Recordings map[string]*Recording
	// Opens counts Open calls per path, letting tests assert on two-pass
	// behavior.
	Opens map[string]int
}

// NewMemoryDecoder returns a decoder with no recordings.
func NewMemoryDecoder() *MemoryDecoder {
	return &MemoryDecoder{
		Recordings: make(map[string]*Recording),
		Opens:      make(map[string]int),
	}
}

// Add registers a scripted recording under path.
func (d *MemoryDecoder) Add(path string, rec *Recording) {
	d.Recordings[path] = rec
}

// Open implements replay.Decoder.
func (d *MemoryDecoder) Open(ctx context.Context, path string) (replay.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	rec, ok := d.Recordings[path]
	if ok {
		d.Opens[path]++
	}
	d.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no recording at %s", path)
	}
	return &memoryStream{ctx: ctx, rec: rec}, nil
}

type memoryStream struct {
	ctx  context.Context
	rec  *Recording
	next int
}

func (s *memoryStream) Metadata() replay.Metadata { return s.rec.Meta }

func (s *memoryStream) Next() (*replay.Frame, error) {
	if err := s.ctx.Err(); err != nil {
		return nil, err
	}
	if s.next >= len(s.rec.Frames) {
		if s.rec.NextErr != nil {
			return nil, s.rec.NextErr
		}
		return nil, io.EOF
	}
	frame := s.rec.Frames[s.next]
	s.next++
	return &frame, nil
}

func (s *memoryStream) Close() error { return nil }
