// Package datasource defines how the pipeline obtains its input bytes.
package datasource

import (
	"context"
	"io"
)

// Source opens the raw input of a run.
type Source interface {
	Open(ctx context.Context) (Stream, error)
}

// Stream is an open input. Checksum reports a hash of every byte read so far;
// after the stream is drained it identifies the exact file that was ingested.
type Stream interface {
	io.ReadCloser
	Checksum() uint64
}
