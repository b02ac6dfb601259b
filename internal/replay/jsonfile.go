package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"sc2dataset/internal/services"
)

// JSONDecoder reads observation manifests produced by an upstream replay
// decoder: a JSON document with a "metadata" object followed by a "frames"
// array. Frames are streamed rather than loaded whole, so large recordings do
// not need to fit in memory.
type JSONDecoder struct{}

// Open implements Decoder.
func (JSONDecoder) Open(ctx context.Context, path string) (Stream, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, services.Wrap(services.ErrNotFound, "decode", "open", "recording not found", err)
		}
		return nil, fmt.Errorf("open recording: %w", err)
	}

	stream := &jsonStream{ctx: ctx, file: file, dec: json.NewDecoder(file)}
	if err := stream.readHeader(); err != nil {
		_ = file.Close()
		return nil, err
	}
	return stream, nil
}

type jsonStream struct {
	ctx      context.Context
	file     *os.File
	dec      *json.Decoder
	meta     Metadata
	inFrames bool
	done     bool
}

func (s *jsonStream) Metadata() Metadata { return s.meta }

// readHeader consumes tokens up to the start of the frames array. The
// manifest must place "metadata" before "frames".
func (s *jsonStream) readHeader() error {
	if err := s.expectDelim('{'); err != nil {
		return fmt.Errorf("manifest: %w", err)
	}
	for {
		tok, err := s.dec.Token()
		if err != nil {
			return fmt.Errorf("manifest header: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("manifest header: unexpected token %v", tok)
		}
		switch key {
		case "metadata":
			if err := s.dec.Decode(&s.meta); err != nil {
				return fmt.Errorf("manifest metadata: %w", err)
			}
		case "frames":
			if err := s.expectDelim('['); err != nil {
				return fmt.Errorf("manifest frames: %w", err)
			}
			s.inFrames = true
			return nil
		default:
			// Skip unknown top-level sections.
			var skipped json.RawMessage
			if err := s.dec.Decode(&skipped); err != nil {
				return fmt.Errorf("manifest section %q: %w", key, err)
			}
		}
	}
}

func (s *jsonStream) Next() (*Frame, error) {
	if s.done || !s.inFrames {
		return nil, io.EOF
	}
	if err := s.ctx.Err(); err != nil {
		return nil, err
	}
	if !s.dec.More() {
		s.done = true
		return nil, io.EOF
	}
	var frame Frame
	if err := s.dec.Decode(&frame); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return &frame, nil
}

func (s *jsonStream) Close() error {
	s.done = true
	return s.file.Close()
}

func (s *jsonStream) expectDelim(want json.Delim) error {
	tok, err := s.dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}
