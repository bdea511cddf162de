package file

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/xxh3"
)

// TestLocalOpen covers success, missing file, and pre-canceled context.
func TestLocalOpen(t *testing.T) {
	t.Parallel()

	type tc struct {
		name        string
		prepare     func(t *testing.T) string
		makeCtx     func() context.Context
		wantErrIs   error
		wantContent string
	}

	writeFile := func(t *testing.T, payload string) string {
		t.Helper()
		p := filepath.Join(t.TempDir(), "Walmart.csv")
		require.NoError(t, os.WriteFile(p, []byte(payload), 0o644))
		return p
	}

	cases := []tc{
		{
			name:        "success_reads_content",
			prepare:     func(t *testing.T) string { return writeFile(t, "Store,Date\n1,05-02-2010\n") },
			makeCtx:     context.Background,
			wantContent: "Store,Date\n1,05-02-2010\n",
		},
		{
			name:      "missing_file_errors_with_wrapping",
			prepare:   func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.csv") },
			makeCtx:   context.Background,
			wantErrIs: os.ErrNotExist,
		},
		{
			name:    "pre_canceled_context_short_circuits",
			prepare: func(t *testing.T) string { return writeFile(t, "ignored") },
			makeCtx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			wantErrIs: context.Canceled,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			src := NewLocal(c.prepare(t))
			rc, err := src.Open(c.makeCtx())
			if c.wantErrIs != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, c.wantErrIs), "error %v does not wrap %v", err, c.wantErrIs)
				return
			}
			require.NoError(t, err)
			defer rc.Close()

			b, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, c.wantContent, string(b))
		})
	}
}

// TestLocalOpen_Checksum verifies the stream hashes exactly the bytes read.
func TestLocalOpen_Checksum(t *testing.T) {
	t.Parallel()

	payload := []byte("Store,Date,Weekly_Sales\n1,05-02-2010,1000\n1,05-02-2010,500\n")
	p := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(p, payload, 0o644))

	rc, err := NewLocal(p).Open(context.Background())
	require.NoError(t, err)
	defer rc.Close()

	_, err = io.Copy(io.Discard, rc)
	require.NoError(t, err)
	assert.Equal(t, xxh3.Hash(payload), rc.Checksum())
}

func TestLocalPath(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Walmart.csv", NewLocal("Walmart.csv").Path())
}
