package blob

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := New(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)), opts...)
	require.NoError(t, err)
	require.NoError(t, s.EnsureRoot())
	return s
}

func TestNew_EmptyRoot(t *testing.T) {
	_, err := New("  ", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be empty")
}

func TestEnsureRoot_CreatesNestedDir(t *testing.T) {
	root := filepath.Join(t.TempDir(), "a", "b", "uploads")
	s, err := New(root, nil)
	require.NoError(t, err)

	require.NoError(t, s.EnsureRoot())

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = os.Stat(filepath.Join(root, probeName))
	assert.True(t, os.IsNotExist(err), "probe file must be removed")
}

func TestEnsureRoot_NotWritable(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	root := filepath.Join(t.TempDir(), "ro")
	require.NoError(t, os.Mkdir(root, 0o500))

	s, err := New(root, nil)
	require.NoError(t, err)

	err = s.EnsureRoot()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not writable")
}

func TestSave(t *testing.T) {
	s := newTestStore(t)
	content := []byte("\x89PNG\r\n\x1a\npayload")

	f, err := s.Save(context.Background(), "0b0e3c1e-8f2f-4a35-9f0a-1c2d3e4f5a6b.png", content)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(s.Root(), "0b0e3c1e-8f2f-4a35-9f0a-1c2d3e4f5a6b.png"), f.Path)
	assert.Equal(t, int64(len(content)), f.Size)
	assert.False(t, f.CreatedAt.IsZero())

	got, err := os.ReadFile(f.Path)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	entries, err := os.ReadDir(s.Root())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestSave_RejectsUnsafeNames(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"", ".", "..", "../escape.png", "sub/dir.png", "/etc/passwd"} {
		t.Run(name, func(t *testing.T) {
			f, err := s.Save(context.Background(), name, []byte("x"))
			require.ErrorIs(t, err, ErrStorageWrite)
			assert.Nil(t, f)
		})
	}
}

func TestSave_RootMissing(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "gone"), nil)
	require.NoError(t, err)

	_, err = s.Save(context.Background(), "x.png", []byte("x"))
	require.ErrorIs(t, err, ErrStorageWrite)
}

func TestSave_CanceledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Save(ctx, "x.png", []byte("x"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)
	f, err := s.Save(context.Background(), "open.png", []byte("data"))
	require.NoError(t, err)

	r, err := s.Open(f.Path)
	require.NoError(t, err)
	defer r.Close()
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), b)

	_, err = s.Open("/etc/hosts")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestDelete(t *testing.T) {
	failures := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_blob_delete_failures_total"})
	s := newTestStore(t, WithDeleteFailures(failures))
	ctx := context.Background()

	f, err := s.Save(ctx, "del.png", []byte("x"))
	require.NoError(t, err)

	s.Delete(ctx, f.Path)
	_, err = os.Stat(f.Path)
	assert.True(t, os.IsNotExist(err))

	// already gone: still fine, not counted
	s.Delete(ctx, f.Path)
	assert.Equal(t, 0.0, testutil.ToFloat64(failures))
}

func TestDelete_OutsideRootIsRefused(t *testing.T) {
	var logs bytes.Buffer
	failures := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_blob_delete_refused_total"})

	outside := filepath.Join(t.TempDir(), "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep"), 0o600))

	s, err := New(t.TempDir(), slog.New(slog.NewTextHandler(&logs, nil)), WithDeleteFailures(failures))
	require.NoError(t, err)
	require.NoError(t, s.EnsureRoot())

	for _, p := range []string{outside, filepath.Join(s.Root(), "..", "x"), "relative.png", s.Root()} {
		s.Delete(context.Background(), p)
	}

	_, err = os.Stat(outside)
	require.NoError(t, err, "file outside root must survive")
	assert.Equal(t, 4.0, testutil.ToFloat64(failures))
	assert.Contains(t, logs.String(), "refusing to delete")
}

func TestDelete_FailureIsSwallowed(t *testing.T) {
	failures := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_blob_delete_errors_total"})
	s := newTestStore(t, WithDeleteFailures(failures))

	// a non-empty directory cannot be removed with os.Remove
	dir := filepath.Join(s.Root(), "nested")
	require.NoError(t, os.Mkdir(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f"), []byte("x"), 0o600))

	s.Delete(context.Background(), dir)
	assert.Equal(t, 1.0, testutil.ToFloat64(failures))
}
