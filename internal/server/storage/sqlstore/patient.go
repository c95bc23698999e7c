package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/medrecords/internal/models"
	"github.com/iudanet/medrecords/internal/server/storage"
)

const patientColumns = `id, mrn, first_name, last_name, date_of_birth, created_at, updated_at`

// CreatePatient inserts a patient
func (s *Storage) CreatePatient(ctx context.Context, p *models.Patient) error {
	query := `
		INSERT INTO patients (` + patientColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, s.q(query),
		p.ID,
		p.MRN,
		p.FirstName,
		p.LastName,
		dateOnly(p.DateOfBirth),
		utc(p.CreatedAt),
		utc(p.UpdatedAt),
	)
	if err != nil {
		if constraintViolation(err) == violationUnique {
			return storage.ErrMRNAlreadyExists
		}
		return fmt.Errorf("failed to insert patient: %w", err)
	}

	return nil
}

// GetPatient retrieves patient by ID
func (s *Storage) GetPatient(ctx context.Context, id string) (*models.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = ?`
	return s.getPatient(ctx, query, id)
}

// GetPatientByMRN retrieves patient by medical record number
func (s *Storage) GetPatientByMRN(ctx context.Context, mrn string) (*models.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE mrn = ?`
	return s.getPatient(ctx, query, mrn)
}

func (s *Storage) getPatient(ctx context.Context, query string, arg any) (*models.Patient, error) {
	p, err := scanPatient(s.db.QueryRowContext(ctx, s.q(query), arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrPatientNotFound
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return p, nil
}

// ListPatients returns a page of patients ordered by creation time
func (s *Storage) ListPatients(ctx context.Context, skip, limit int) ([]*models.Patient, error) {
	query := `
		SELECT ` + patientColumns + `
		FROM patients
		ORDER BY created_at, id
		LIMIT ? OFFSET ?
	`

	rows, err := s.db.QueryContext(ctx, s.q(query), limit, skip)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	defer rows.Close()

	patients := make([]*models.Patient, 0)
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan patient: %w", err)
		}
		patients = append(patients, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return patients, nil
}

// UpdatePatient overwrites the mutable patient fields
func (s *Storage) UpdatePatient(ctx context.Context, p *models.Patient) error {
	query := `
		UPDATE patients
		SET mrn = ?, first_name = ?, last_name = ?, date_of_birth = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, s.q(query),
		p.MRN,
		p.FirstName,
		p.LastName,
		dateOnly(p.DateOfBirth),
		utc(p.UpdatedAt),
		p.ID,
	)
	if err != nil {
		if constraintViolation(err) == violationUnique {
			return storage.ErrMRNAlreadyExists
		}
		return fmt.Errorf("failed to update patient: %w", err)
	}

	return expectOneRow(result, storage.ErrPatientNotFound)
}

// DeletePatient deletes patient by ID; studies and images cascade
func (s *Storage) DeletePatient(ctx context.Context, id string) error {
	query := `DELETE FROM patients WHERE id = ?`

	result, err := s.db.ExecContext(ctx, s.q(query), id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	return expectOneRow(result, storage.ErrPatientNotFound)
}

func scanPatient(row rowScanner) (*models.Patient, error) {
	p := &models.Patient{}
	err := row.Scan(
		&p.ID,
		&p.MRN,
		&p.FirstName,
		&p.LastName,
		&p.DateOfBirth,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.DateOfBirth = dateOnly(p.DateOfBirth)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}
