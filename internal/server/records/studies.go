package records

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/medrecords/internal/apperr"
	"github.com/iudanet/medrecords/internal/models"
	"github.com/iudanet/medrecords/internal/validation"
)

// NewStudy is the input for study creation.
type NewStudy struct {
	StudyDate   time.Time
	Description *string
	PatientID   string
	Modality    models.Modality
	BodyPart    models.BodyPart
	Status      models.StudyStatus
}

func (s *Service) validateStudy(st *models.Study) error {
	if err := validation.ValidateNotFuture("study date", st.StudyDate, s.now()); err != nil {
		return invalid(err)
	}
	if !st.Modality.Valid() {
		return apperr.Newf(apperr.Validation, "modality %q is not one of CT, MRI, X-Ray, Ultrasound", st.Modality)
	}
	if !st.BodyPart.Valid() {
		return apperr.Newf(apperr.Validation, "body part %q is not one of Head, Chest, Abdomen, Pelvis, Limbs", st.BodyPart)
	}
	if !st.Status.Valid() {
		return apperr.Newf(apperr.Validation, "status %q is not one of Planned, In Progress, Completed, Reviewed", st.Status)
	}
	if st.Description != nil {
		if err := validation.ValidateDescription(*st.Description); err != nil {
			return invalid(err)
		}
	}
	return nil
}

// CreateStudy stores a study for an existing patient.
func (s *Service) CreateStudy(ctx context.Context, in NewStudy) (*models.Study, error) {
	if in.Status == "" {
		in.Status = models.StudyPlanned
	}

	now := s.now().UTC()
	st := &models.Study{
		ID:          uuid.New().String(),
		PatientID:   in.PatientID,
		StudyDate:   in.StudyDate,
		Modality:    in.Modality,
		BodyPart:    in.BodyPart,
		Description: in.Description,
		Status:      in.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.validateStudy(st); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetPatient(ctx, in.PatientID); err != nil {
		return nil, storageError(err)
	}

	if err := s.repo.CreateStudy(ctx, st); err != nil {
		return nil, storageError(err)
	}

	s.logger.InfoContext(ctx, "study created",
		slog.String("study_id", st.ID),
		slog.String("patient_id", st.PatientID),
	)
	return st, nil
}

// GetStudy returns a study and its images.
func (s *Service) GetStudy(ctx context.Context, id string) (*models.Study, []*models.Image, error) {
	st, err := s.repo.GetStudy(ctx, id)
	if err != nil {
		return nil, nil, storageError(err)
	}

	images, err := s.repo.ListImagesByStudy(ctx, id)
	if err != nil {
		return nil, nil, storageError(err)
	}

	return st, images, nil
}

// ListStudies returns studies matching filter.
func (s *Service) ListStudies(ctx context.Context, filter models.StudyFilter) ([]*models.Study, error) {
	if filter.Modality != "" && !filter.Modality.Valid() {
		return nil, apperr.Newf(apperr.Validation, "modality %q is not one of CT, MRI, X-Ray, Ultrasound", filter.Modality)
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperr.Newf(apperr.Validation, "status %q is not one of Planned, In Progress, Completed, Reviewed", filter.Status)
	}
	if filter.Limit <= 0 {
		filter.Limit = validation.DefaultLimit
	}

	studies, err := s.repo.ListStudies(ctx, filter)
	if err != nil {
		return nil, storageError(err)
	}
	return studies, nil
}

// UpdateStudy applies a partial update.
func (s *Service) UpdateStudy(ctx context.Context, id string, upd models.StudyUpdate) (*models.Study, error) {
	st, err := s.repo.GetStudy(ctx, id)
	if err != nil {
		return nil, storageError(err)
	}
	if upd.Empty() {
		return st, nil
	}

	upd.Apply(st)
	if err := s.validateStudy(st); err != nil {
		return nil, err
	}
	st.UpdatedAt = s.now().UTC()

	if err := s.repo.UpdateStudy(ctx, st); err != nil {
		return nil, storageError(err)
	}

	s.logger.InfoContext(ctx, "study updated",
		slog.String("study_id", st.ID),
		slog.String("status", string(st.Status)),
	)
	return st, nil
}

// DeleteStudy removes the study and its images, then their stored files.
func (s *Service) DeleteStudy(ctx context.Context, id string) error {
	images, err := s.repo.ListImagesByStudy(ctx, id)
	if err != nil {
		return storageError(err)
	}

	if err := s.repo.DeleteStudy(ctx, id); err != nil {
		return storageError(err)
	}

	paths := make([]string, 0, len(images))
	for _, img := range images {
		paths = append(paths, img.FilePath)
	}
	s.removeBlobs(ctx, paths)

	s.logger.InfoContext(ctx, "study deleted",
		slog.String("study_id", id),
		slog.Int("images", len(images)),
	)
	return nil
}
