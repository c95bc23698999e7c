package storage

import (
	"context"

	"github.com/iudanet/medrecords/internal/models"
)

// PatientStorage defines interface for patient persistence
type PatientStorage interface {
	// CreatePatient inserts a patient
	// Returns ErrMRNAlreadyExists if MRN is taken
	CreatePatient(ctx context.Context, p *models.Patient) error

	// GetPatient returns ErrPatientNotFound if patient doesn't exist
	GetPatient(ctx context.Context, id string) (*models.Patient, error)

	// GetPatientByMRN returns ErrPatientNotFound if no patient holds mrn
	GetPatientByMRN(ctx context.Context, mrn string) (*models.Patient, error)

	// ListPatients returns patients ordered by creation time
	ListPatients(ctx context.Context, skip, limit int) ([]*models.Patient, error)

	// UpdatePatient overwrites the mutable fields of p
	// Returns ErrPatientNotFound or ErrMRNAlreadyExists
	UpdatePatient(ctx context.Context, p *models.Patient) error

	// DeletePatient removes the patient together with its studies and images
	// Returns ErrPatientNotFound if patient doesn't exist
	DeletePatient(ctx context.Context, id string) error
}

// StudyStorage defines interface for study persistence
type StudyStorage interface {
	// CreateStudy returns ErrPatientNotFound if the patient doesn't exist
	CreateStudy(ctx context.Context, s *models.Study) error

	// GetStudy returns ErrStudyNotFound if study doesn't exist
	GetStudy(ctx context.Context, id string) (*models.Study, error)

	// ListStudies returns studies matching filter, newest study date first
	ListStudies(ctx context.Context, filter models.StudyFilter) ([]*models.Study, error)

	// ListStudiesByPatient returns every study of a patient without paging
	ListStudiesByPatient(ctx context.Context, patientID string) ([]*models.Study, error)

	// UpdateStudy overwrites the mutable fields of s
	// Returns ErrStudyNotFound if study doesn't exist
	UpdateStudy(ctx context.Context, s *models.Study) error

	// DeleteStudy removes the study together with its images
	// Returns ErrStudyNotFound if study doesn't exist
	DeleteStudy(ctx context.Context, id string) error
}

// ImageStorage defines interface for image metadata persistence
type ImageStorage interface {
	// CreateImage returns ErrStudyNotFound if the study doesn't exist
	CreateImage(ctx context.Context, img *models.Image) error

	// GetImage returns ErrImageNotFound if image doesn't exist
	GetImage(ctx context.Context, id string) (*models.Image, error)

	// ListImagesByStudy returns images of a study ordered by creation time
	ListImagesByStudy(ctx context.Context, studyID string) ([]*models.Image, error)

	// ListImagesByPatient returns images of every study of a patient
	ListImagesByPatient(ctx context.Context, patientID string) ([]*models.Image, error)

	// DeleteImage returns ErrImageNotFound if image doesn't exist
	DeleteImage(ctx context.Context, id string) error
}

// Store aggregates every repository the server needs.
type Store interface {
	UserStorage
	PatientStorage
	StudyStorage
	ImageStorage

	Ping(ctx context.Context) error
	Close() error
}
