package records

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/iudanet/medrecords/internal/apperr"
	"github.com/iudanet/medrecords/internal/models"
	"github.com/iudanet/medrecords/internal/server/metrics"
)

// ErrFileMissing is returned when an image row exists but its bytes are gone.
var ErrFileMissing = apperr.New(apperr.NotFound, "image file not found")

// UploadImage validates r, stores it and records the image under studyID.
// Nothing is written unless every check passes; if the row cannot be
// recorded the stored file is removed again.
func (s *Service) UploadImage(ctx context.Context, studyID, filename string, r io.Reader) (*models.Image, error) {
	if _, err := s.repo.GetStudy(ctx, studyID); err != nil {
		return nil, storageError(err)
	}

	file, err := s.validator.Validate(filename, r)
	if err != nil {
		outcome := metrics.UploadRejected
		if k := apperr.KindOf(err); k != apperr.Validation && k != apperr.TooLarge {
			outcome = metrics.UploadFailed
		}
		s.metrics.ObserveUpload(outcome, 0)
		s.logger.WarnContext(ctx, "upload rejected",
			slog.String("study_id", studyID),
			slog.Any("error", err),
		)
		return nil, err
	}

	stored, err := s.blobs.Save(ctx, file.StoredName, file.Content)
	if err != nil {
		s.metrics.ObserveUpload(metrics.UploadFailed, 0)
		return nil, err
	}

	img := &models.Image{
		ID:             uuid.New().String(),
		StudyID:        studyID,
		Filename:       file.OriginalName,
		StoredFilename: stored.StoredName,
		FilePath:       stored.Path,
		FileSize:       stored.Size,
		MIMEType:       file.MIMEType,
		CreatedAt:      stored.CreatedAt,
	}

	if err := s.repo.CreateImage(ctx, img); err != nil {
		s.blobs.Delete(context.WithoutCancel(ctx), stored.Path)
		s.metrics.ObserveUpload(metrics.UploadFailed, 0)
		return nil, storageError(err)
	}

	s.metrics.ObserveUpload(metrics.UploadAccepted, img.FileSize)
	s.logger.InfoContext(ctx, "image uploaded",
		slog.String("image_id", img.ID),
		slog.String("study_id", studyID),
		slog.String("mime_type", img.MIMEType),
		slog.Int64("size", img.FileSize),
	)
	return img, nil
}

// ListImages returns the images of an existing study.
func (s *Service) ListImages(ctx context.Context, studyID string) ([]*models.Image, error) {
	if _, err := s.repo.GetStudy(ctx, studyID); err != nil {
		return nil, storageError(err)
	}

	images, err := s.repo.ListImagesByStudy(ctx, studyID)
	if err != nil {
		return nil, storageError(err)
	}
	return images, nil
}

// GetImage returns image metadata.
func (s *Service) GetImage(ctx context.Context, id string) (*models.Image, error) {
	img, err := s.repo.GetImage(ctx, id)
	if err != nil {
		return nil, storageError(err)
	}
	return img, nil
}

// OpenImage returns metadata and an open handle on the stored bytes.
// The caller closes the file.
func (s *Service) OpenImage(ctx context.Context, id string) (*models.Image, *os.File, error) {
	img, err := s.repo.GetImage(ctx, id)
	if err != nil {
		return nil, nil, storageError(err)
	}

	f, err := s.blobs.Open(img.FilePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.WarnContext(ctx, "image file missing",
				slog.String("image_id", img.ID),
				slog.String("path", img.FilePath),
			)
			return nil, nil, ErrFileMissing
		}
		return nil, nil, apperr.Wrap(apperr.Storage, "could not read file", err)
	}

	return img, f, nil
}

// DeleteImage removes the image row, then its stored file. The row deletion
// is what counts; a leftover file is only logged.
func (s *Service) DeleteImage(ctx context.Context, id string) error {
	img, err := s.repo.GetImage(ctx, id)
	if err != nil {
		return storageError(err)
	}

	if err := s.repo.DeleteImage(ctx, id); err != nil {
		return storageError(err)
	}

	s.blobs.Delete(ctx, img.FilePath)

	s.logger.InfoContext(ctx, "image deleted",
		slog.String("image_id", id),
		slog.String("study_id", img.StudyID),
	)
	return nil
}
