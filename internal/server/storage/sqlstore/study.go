package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iudanet/medrecords/internal/models"
	"github.com/iudanet/medrecords/internal/server/storage"
)

const studyColumns = `id, patient_id, study_date, modality, body_part, description, status, created_at, updated_at`

// CreateStudy inserts a study for an existing patient
func (s *Storage) CreateStudy(ctx context.Context, st *models.Study) error {
	query := `
		INSERT INTO studies (` + studyColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, s.q(query),
		st.ID,
		st.PatientID,
		dateOnly(st.StudyDate),
		string(st.Modality),
		string(st.BodyPart),
		nullString(st.Description),
		string(st.Status),
		utc(st.CreatedAt),
		utc(st.UpdatedAt),
	)
	if err != nil {
		if constraintViolation(err) == violationForeignKey {
			return storage.ErrPatientNotFound
		}
		return fmt.Errorf("failed to insert study: %w", err)
	}

	return nil
}

// GetStudy retrieves study by ID
func (s *Storage) GetStudy(ctx context.Context, id string) (*models.Study, error) {
	query := `SELECT ` + studyColumns + ` FROM studies WHERE id = ?`

	st, err := scanStudy(s.db.QueryRowContext(ctx, s.q(query), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrStudyNotFound
		}
		return nil, fmt.Errorf("failed to get study: %w", err)
	}
	return st, nil
}

// ListStudies returns studies matching the filter, most recent study date first
func (s *Storage) ListStudies(ctx context.Context, filter models.StudyFilter) ([]*models.Study, error) {
	var (
		where []string
		args  []any
	)
	if filter.PatientID != "" {
		where = append(where, "patient_id = ?")
		args = append(args, filter.PatientID)
	}
	if filter.Modality != "" {
		where = append(where, "modality = ?")
		args = append(args, string(filter.Modality))
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + studyColumns + ` FROM studies`)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY study_date DESC, created_at DESC, id LIMIT ? OFFSET ?")
	args = append(args, filter.Limit, filter.Skip)

	return s.listStudies(ctx, b.String(), args...)
}

// ListStudiesByPatient returns every study of a patient, most recent first
func (s *Storage) ListStudiesByPatient(ctx context.Context, patientID string) ([]*models.Study, error) {
	query := `
		SELECT ` + studyColumns + `
		FROM studies
		WHERE patient_id = ?
		ORDER BY study_date DESC, created_at DESC, id
	`
	return s.listStudies(ctx, query, patientID)
}

func (s *Storage) listStudies(ctx context.Context, query string, args ...any) ([]*models.Study, error) {
	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list studies: %w", err)
	}
	defer rows.Close()

	studies := make([]*models.Study, 0)
	for rows.Next() {
		st, err := scanStudy(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan study: %w", err)
		}
		studies = append(studies, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return studies, nil
}

// UpdateStudy overwrites the mutable study fields
func (s *Storage) UpdateStudy(ctx context.Context, st *models.Study) error {
	query := `
		UPDATE studies
		SET study_date = ?, modality = ?, body_part = ?, description = ?, status = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, s.q(query),
		dateOnly(st.StudyDate),
		string(st.Modality),
		string(st.BodyPart),
		nullString(st.Description),
		string(st.Status),
		utc(st.UpdatedAt),
		st.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update study: %w", err)
	}

	return expectOneRow(result, storage.ErrStudyNotFound)
}

// DeleteStudy deletes study by ID; images cascade
func (s *Storage) DeleteStudy(ctx context.Context, id string) error {
	query := `DELETE FROM studies WHERE id = ?`

	result, err := s.db.ExecContext(ctx, s.q(query), id)
	if err != nil {
		return fmt.Errorf("failed to delete study: %w", err)
	}

	return expectOneRow(result, storage.ErrStudyNotFound)
}

func scanStudy(row rowScanner) (*models.Study, error) {
	st := &models.Study{}
	var (
		modality, bodyPart, status string
		description                sql.NullString
	)

	err := row.Scan(
		&st.ID,
		&st.PatientID,
		&st.StudyDate,
		&modality,
		&bodyPart,
		&description,
		&status,
		&st.CreatedAt,
		&st.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	st.Modality = models.Modality(modality)
	st.BodyPart = models.BodyPart(bodyPart)
	st.Status = models.StudyStatus(status)
	if description.Valid {
		d := description.String
		st.Description = &d
	}
	st.StudyDate = dateOnly(st.StudyDate)
	st.CreatedAt = st.CreatedAt.UTC()
	st.UpdatedAt = st.UpdatedAt.UTC()
	return st, nil
}
