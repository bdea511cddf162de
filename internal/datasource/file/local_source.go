// Package file implements a local filesystem-backed data source.
package file

import (
	"context"
	"fmt"
	"os"

	"github.com/zeebo/xxh3"

	"salesreport/internal/datasource"
)

// Local is a filesystem data source that opens files from the local disk.
type Local struct{ path string }

// NewLocal returns a Local data source bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Path returns the configured filesystem path.
func (l *Local) Path() string { return l.path }

// Open opens the configured path for reading.
//
// A canceled context is reported without touching the filesystem. Filesystem
// errors are wrapped with the path and still match errors.Is(err,
// os.ErrNotExist).
func (l *Local) Open(ctx context.Context) (datasource.Stream, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return &checksumReader{f: f, h: xxh3.New()}, nil
}

// checksumReader feeds every byte it returns into an xxh3 hasher.
type checksumReader struct {
	f *os.File
	h *xxh3.Hasher
}

func (r *checksumReader) Read(p []byte) (int, error) {
	n, err := r.f.Read(p)
	if n > 0 {
		_, _ = r.h.Write(p[:n])
	}
	return n, err
}

func (r *checksumReader) Close() error { return r.f.Close() }

func (r *checksumReader) Checksum() uint64 { return r.h.Sum64() }
