package records

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/medrecords/internal/models"
	"github.com/iudanet/medrecords/internal/validation"
)

// NewPatient is the input for patient creation.
type NewPatient struct {
	DateOfBirth time.Time
	MRN         string
	FirstName   string
	LastName    string
}

func (s *Service) validatePatient(p *models.Patient) error {
	if err := validation.ValidateMRN(p.MRN); err != nil {
		return invalid(err)
	}
	if err := validation.ValidatePersonName("first name", p.FirstName); err != nil {
		return invalid(err)
	}
	if err := validation.ValidatePersonName("last name", p.LastName); err != nil {
		return invalid(err)
	}
	if err := validation.ValidateNotFuture("date of birth", p.DateOfBirth, s.now()); err != nil {
		return invalid(err)
	}
	return nil
}

// CreatePatient validates and stores a patient.
func (s *Service) CreatePatient(ctx context.Context, in NewPatient) (*models.Patient, error) {
	now := s.now().UTC()
	p := &models.Patient{
		ID:          uuid.New().String(),
		MRN:         strings.TrimSpace(in.MRN),
		FirstName:   strings.TrimSpace(in.FirstName),
		LastName:    strings.TrimSpace(in.LastName),
		DateOfBirth: in.DateOfBirth,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.validatePatient(p); err != nil {
		return nil, err
	}

	if err := s.repo.CreatePatient(ctx, p); err != nil {
		return nil, storageError(err)
	}

	s.logger.InfoContext(ctx, "patient created", slog.String("patient_id", p.ID))
	return p, nil
}

// GetPatient returns a patient and its studies.
func (s *Service) GetPatient(ctx context.Context, id string) (*models.Patient, []*models.Study, error) {
	p, err := s.repo.GetPatient(ctx, id)
	if err != nil {
		return nil, nil, storageError(err)
	}

	studies, err := s.repo.ListStudiesByPatient(ctx, id)
	if err != nil {
		return nil, nil, storageError(err)
	}

	return p, studies, nil
}

// GetPatientByMRN looks a patient up by medical record number.
func (s *Service) GetPatientByMRN(ctx context.Context, mrn string) (*models.Patient, error) {
	p, err := s.repo.GetPatientByMRN(ctx, strings.TrimSpace(mrn))
	if err != nil {
		return nil, storageError(err)
	}
	return p, nil
}

// ListPatients returns a page of patients.
func (s *Service) ListPatients(ctx context.Context, skip, limit int) ([]*models.Patient, error) {
	patients, err := s.repo.ListPatients(ctx, skip, limit)
	if err != nil {
		return nil, storageError(err)
	}
	return patients, nil
}

// UpdatePatient applies a partial update.
func (s *Service) UpdatePatient(ctx context.Context, id string, upd models.PatientUpdate) (*models.Patient, error) {
	p, err := s.repo.GetPatient(ctx, id)
	if err != nil {
		return nil, storageError(err)
	}
	if upd.Empty() {
		return p, nil
	}

	upd.Apply(p)
	p.MRN = strings.TrimSpace(p.MRN)
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	if err := s.validatePatient(p); err != nil {
		return nil, err
	}
	p.UpdatedAt = s.now().UTC()

	if err := s.repo.UpdatePatient(ctx, p); err != nil {
		return nil, storageError(err)
	}

	s.logger.InfoContext(ctx, "patient updated", slog.String("patient_id", p.ID))
	return p, nil
}

// DeletePatient removes the patient, its studies and images, then the
// stored files of those images.
func (s *Service) DeletePatient(ctx context.Context, id string) error {
	images, err := s.repo.ListImagesByPatient(ctx, id)
	if err != nil {
		return storageError(err)
	}

	if err := s.repo.DeletePatient(ctx, id); err != nil {
		return storageError(err)
	}

	paths := make([]string, 0, len(images))
	for _, img := range images {
		paths = append(paths, img.FilePath)
	}
	s.removeBlobs(ctx, paths)

	s.logger.InfoContext(ctx, "patient deleted",
		slog.String("patient_id", id),
		slog.Int("images", len(images)),
	)
	return nil
}
