package ai

import "context"

// Stream reads generated chunks one at a time. Recv returns io.EOF when the
// provider finishes normally; any other error means the stream failed and the
// output so far must be treated as incomplete.
type Stream interface {
	Recv() (Chunk, error)
	Close() error
}

// StreamClient is the provider boundary: one configured chat backend that can
// turn a prompt into an incremental stream.
type StreamClient interface {
	StreamGenerate(ctx context.Context, prompt string) (Stream, error)
}
