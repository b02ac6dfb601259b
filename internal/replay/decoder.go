package replay

import "context"

// Stream yields decoded frames in chronological order. Next returns io.EOF
// after the final frame.
type Stream interface {
	Metadata() Metadata
	Next() (*Frame, error)
	Close() error
}

// Decoder opens a replay recording and produces an ordered frame stream.
// Implementations wrap whatever container format the recording is stored in;
// the extraction pipeline only ever sees Frames. Two-pass schema discovery
// reopens the same path through the Decoder, so Open must be repeatable.
type Decoder interface {
	Open(ctx context.Context, path string) (Stream, error)
}
