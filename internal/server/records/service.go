// Package records implements patient, study and image workflows, including
// the upload pipeline that ties validation, blob storage and metadata rows.
package records

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/iudanet/medrecords/internal/apperr"
	"github.com/iudanet/medrecords/internal/server/blob"
	"github.com/iudanet/medrecords/internal/server/metrics"
	"github.com/iudanet/medrecords/internal/server/storage"
	"github.com/iudanet/medrecords/internal/server/upload"
)

//go:generate moq -out blob_store_mock.go . BlobStore

// Repository is the subset of the store the record workflows need.
type Repository interface {
	storage.PatientStorage
	storage.StudyStorage
	storage.ImageStorage
}

// BlobStore persists and removes file bytes.
type BlobStore interface {
	Save(ctx context.Context, name string, content []byte) (*blob.StoredFile, error)
	Open(path string) (*os.File, error)
	Delete(ctx context.Context, path string)
}

// Service owns the record workflows.
type Service struct {
	repo      Repository
	validator *upload.Validator
	blobs     BlobStore
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewService wires a records service. m may be nil.
func NewService(repo Repository, validator *upload.Validator, blobs BlobStore, logger *slog.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		validator: validator,
		blobs:     blobs,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
	}
}

// UploadPolicy exposes the effective upload limits.
func (s *Service) UploadPolicy() upload.Policy {
	return s.validator.Policy()
}

func storageError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrPatientNotFound):
		return apperr.Wrap(apperr.NotFound, "patient not found", err)
	case errors.Is(err, storage.ErrStudyNotFound):
		return apperr.Wrap(apperr.NotFound, "study not found", err)
	case errors.Is(err, storage.ErrImageNotFound):
		return apperr.Wrap(apperr.NotFound, "image not found", err)
	case errors.Is(err, storage.ErrMRNAlreadyExists):
		return apperr.Wrap(apperr.Conflict, "a patient with this MRN already exists", err)
	case errors.Is(err, storage.ErrImageAlreadyExists):
		return apperr.Wrap(apperr.Conflict, "image already exists", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return apperr.Wrap(apperr.Internal, "internal server error", err)
	}
}

// removeBlobs deletes stored files best-effort after their rows are gone.
func (s *Service) removeBlobs(ctx context.Context, paths []string) {
	for _, p := range paths {
		s.blobs.Delete(ctx, p)
	}
}

func invalid(err error) error {
	return apperr.New(apperr.Validation, err.Error())
}
