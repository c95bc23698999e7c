package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/medrecords/internal/models"
	"github.com/iudanet/medrecords/internal/server/storage"
)

const imageColumns = `id, study_id, filename, stored_filename, file_path, file_size, mime_type, created_at`

// CreateImage records metadata of a stored file
func (s *Storage) CreateImage(ctx context.Context, img *models.Image) error {
	query := `
		INSERT INTO images (` + imageColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, s.q(query),
		img.ID,
		img.StudyID,
		img.Filename,
		img.StoredFilename,
		img.FilePath,
		img.FileSize,
		img.MIMEType,
		utc(img.CreatedAt),
	)
	if err != nil {
		switch constraintViolation(err) {
		case violationForeignKey:
			return storage.ErrStudyNotFound
		case violationUnique:
			return storage.ErrImageAlreadyExists
		}
		return fmt.Errorf("failed to insert image: %w", err)
	}

	return nil
}

// GetImage retrieves image metadata by ID
func (s *Storage) GetImage(ctx context.Context, id string) (*models.Image, error) {
	query := `SELECT ` + imageColumns + ` FROM images WHERE id = ?`

	img, err := scanImage(s.db.QueryRowContext(ctx, s.q(query), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to get image: %w", err)
	}
	return img, nil
}

// ListImagesByStudy returns images of a study ordered by creation time
func (s *Storage) ListImagesByStudy(ctx context.Context, studyID string) ([]*models.Image, error) {
	query := `
		SELECT ` + imageColumns + `
		FROM images
		WHERE study_id = ?
		ORDER BY created_at, id
	`
	return s.listImages(ctx, query, studyID)
}

// ListImagesByPatient returns images across every study of a patient
func (s *Storage) ListImagesByPatient(ctx context.Context, patientID string) ([]*models.Image, error) {
	query := `
		SELECT i.id, i.study_id, i.filename, i.stored_filename, i.file_path, i.file_size, i.mime_type, i.created_at
		FROM images i
		JOIN studies st ON st.id = i.study_id
		WHERE st.patient_id = ?
		ORDER BY i.created_at, i.id
	`
	return s.listImages(ctx, query, patientID)
}

func (s *Storage) listImages(ctx context.Context, query string, arg any) ([]*models.Image, error) {
	rows, err := s.db.QueryContext(ctx, s.q(query), arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	images := make([]*models.Image, 0)
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return images, nil
}

// DeleteImage deletes image metadata by ID
func (s *Storage) DeleteImage(ctx context.Context, id string) error {
	query := `DELETE FROM images WHERE id = ?`

	result, err := s.db.ExecContext(ctx, s.q(query), id)
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	return expectOneRow(result, storage.ErrImageNotFound)
}

func scanImage(row rowScanner) (*models.Image, error) {
	img := &models.Image{}
	err := row.Scan(
		&img.ID,
		&img.StudyID,
		&img.Filename,
		&img.StoredFilename,
		&img.FilePath,
		&img.FileSize,
		&img.MIMEType,
		&img.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	img.CreatedAt = img.CreatedAt.UTC()
	return img, nil
}
