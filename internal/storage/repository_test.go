package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo is a minimal Repository implementation for tests.
type fakeRepo struct {
	closed bool
	execs  []string
}

func (f *fakeRepo) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	return int64(len(rows)), nil
}

func (f *fakeRepo) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeRepo) Close() error { f.closed = true; return nil }

func (f *fakeRepo) Exec(ctx context.Context, sql string) error {
	f.execs = append(f.execs, sql)
	return nil
}

// TestRegisterAndNew_Success verifies that registering a backend enables New()
// to return the corresponding repository.
func TestRegisterAndNew_Success(t *testing.T) {
	t.Parallel()

	kind := "fake"
	var got Config
	Register(kind, func(ctx context.Context, cfg Config) (Repository, error) {
		got = cfg
		return &fakeRepo{}, nil
	})

	cfg := Config{Kind: kind, DSN: "sales_data.db", Table: "Sales", Columns: []string{"Store"}}
	repo, err := New(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, repo)
	assert.Equal(t, cfg, got)
	assert.Contains(t, ListKinds(), kind)
}

// TestNew_Unsupported verifies that unsupported kinds return a helpful error.
func TestNew_Unsupported(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Config{Kind: "does-not-exist"})
	require.Error(t, err)
	assert.Equal(t, "unsupported storage.kind=does-not-exist", err.Error())
}

// TestRegister_Override verifies that re-registering a kind replaces the
// previous factory.
func TestRegister_Override(t *testing.T) {
	t.Parallel()

	kind := "override"
	calls := 0
	Register(kind, func(ctx context.Context, cfg Config) (Repository, error) {
		calls++
		return &fakeRepo{}, nil
	})
	Register(kind, func(ctx context.Context, cfg Config) (Repository, error) {
		calls += 10
		return &fakeRepo{}, nil
	})

	_, err := New(context.Background(), Config{Kind: kind})
	require.NoError(t, err)
	assert.Equal(t, 10, calls)
}

// TestListKinds_Snapshot checks ListKinds returns a copy.
func TestListKinds_Snapshot(t *testing.T) {
	t.Parallel()

	Register("snap", func(ctx context.Context, cfg Config) (Repository, error) { return &fakeRepo{}, nil })

	a := ListKinds()
	require.NotEmpty(t, a)
	a[0] = "mutated"
	assert.NotContains(t, ListKinds(), "mutated")
}

// TestRegister_AllowsErrors shows factory errors bubble up.
func TestRegister_AllowsErrors(t *testing.T) {
	t.Parallel()

	want := errors.New("boom")
	Register("errkind", func(ctx context.Context, cfg Config) (Repository, error) {
		return nil, want
	})

	_, err := New(context.Background(), Config{Kind: "errkind"})
	assert.ErrorIs(t, err, want)
}

func TestReplaceTable(t *testing.T) {
	t.Parallel()

	RegisterDDL("fake-ddl", func(ctx context.Context, repo Repository, table string) error {
		return repo.Exec(ctx, "DROP "+table)
	})

	repo := &fakeRepo{}
	require.NoError(t, ReplaceTable(context.Background(), "fake-ddl", repo, "Sales"))
	assert.Equal(t, []string{"DROP Sales"}, repo.execs)

	err := ReplaceTable(context.Background(), "no-ddl", repo, "Sales")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `storage.kind="no-ddl"`)
}
