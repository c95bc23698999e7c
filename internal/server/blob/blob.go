// Package blob keeps uploaded file bytes on the local filesystem under a
// single managed root directory.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/iudanet/medrecords/internal/apperr"
)

// ErrStorageWrite is returned when bytes could not be persisted.
var ErrStorageWrite = apperr.New(apperr.Storage, "could not store file")

const probeName = ".write-probe"

// StoredFile describes bytes that were durably written.
type StoredFile struct {
	CreatedAt  time.Time
	StoredName string
	Path       string
	Size       int64
}

// Store writes into and deletes from root.
type Store struct {
	logger         *slog.Logger
	deleteFailures prometheus.Counter
	root           string
}

// Option configures a Store.
type Option func(*Store)

// WithDeleteFailures counts deletions that failed for reasons other than
// the file already being gone.
func WithDeleteFailures(c prometheus.Counter) Option {
	return func(s *Store) {
		s.deleteFailures = c
	}
}

// New returns a store rooted at root. The path is made absolute.
func New(root string, logger *slog.Logger, opts ...Option) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("upload root cannot be empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upload root: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{root: abs, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Root returns the absolute managed directory.
func (s *Store) Root() string {
	return s.root
}

// EnsureRoot creates the root if needed and proves it is writable.
func (s *Store) EnsureRoot() error {
	if err := os.MkdirAll(s.root, 0o750); err != nil {
		return fmt.Errorf("failed to create upload root %s: %w", s.root, err)
	}

	probe := filepath.Join(s.root, probeName)
	if err := os.WriteFile(probe, []byte("ok"), 0o600); err != nil {
		return fmt.Errorf("upload root %s is not writable: %w", s.root, err)
	}
	if err := os.Remove(probe); err != nil {
		return fmt.Errorf("failed to remove write probe: %w", err)
	}

	return nil
}

// Save writes content to root/name via a temp file and rename, so a reader
// never observes a partial file under the final name.
func (s *Store) Save(ctx context.Context, name string, content []byte) (*StoredFile, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return nil, fmt.Errorf("invalid stored name %q: %w", name, ErrStorageWrite)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	final := filepath.Join(s.root, name)

	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create temp file", slog.Any("error", err))
		return nil, fmt.Errorf("create temp file: %w", errors.Join(ErrStorageWrite, err))
	}
	tmpName := tmp.Name()

	fail := func(op string, err error) (*StoredFile, error) {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		s.logger.ErrorContext(ctx, "failed to store file",
			slog.String("op", op),
			slog.String("stored_name", name),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("%s: %w", op, errors.Join(ErrStorageWrite, err))
	}

	if _, err := tmp.Write(content); err != nil {
		return fail("write", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := tmp.Close(); err != nil {
		return fail("close", err)
	}
	if err := os.Chmod(tmpName, 0o640); err != nil {
		return fail("chmod", err)
	}
	if err := os.Rename(tmpName, final); err != nil {
		return fail("rename", err)
	}

	return &StoredFile{
		StoredName: name,
		Path:       final,
		Size:       int64(len(content)),
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// Open returns a reader for a stored path inside the root.
func (s *Store) Open(path string) (*os.File, error) {
	if !s.contains(path) {
		return nil, fmt.Errorf("path %q is outside upload root: %w", path, fs.ErrNotExist)
	}
	return os.Open(path)
}

// Delete removes path. A missing file is success; any other failure is
// logged and counted but never returned.
func (s *Store) Delete(ctx context.Context, path string) {
	if !s.contains(path) {
		s.logger.WarnContext(ctx, "refusing to delete path outside upload root",
			slog.String("path", path),
		)
		s.countDeleteFailure()
		return
	}

	err := os.Remove(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return
	}

	s.logger.ErrorContext(ctx, "failed to delete stored file",
		slog.String("path", path),
		slog.Any("error", err),
	)
	s.countDeleteFailure()
}

func (s *Store) contains(path string) bool {
	if path == "" || !filepath.IsAbs(path) {
		return false
	}
	rel, err := filepath.Rel(s.root, filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != "." && !strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel)
}

func (s *Store) countDeleteFailure() {
	if s.deleteFailures != nil {
		s.deleteFailures.Inc()
	}
}
