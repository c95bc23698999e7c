package api

import "time"

// PatientCreateRequest is the body of POST /api/v1/patients
type PatientCreateRequest struct {
	MRN         string `json:"mrn"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"` // YYYY-MM-DD
}

// PatientUpdateRequest is the body of PATCH /api/v1/patients/{id}
type PatientUpdateRequest struct {
	MRN         *string `json:"mrn,omitempty"`
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	DateOfBirth *string `json:"date_of_birth,omitempty"`
}

// PatientResponse is the public view of a patient
type PatientResponse struct {
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ID          string    `json:"id"`
	MRN         string    `json:"mrn"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	DateOfBirth string    `json:"date_of_birth"`
}

// PatientWithStudiesResponse adds the patient's studies
type PatientWithStudiesResponse struct {
	Studies []StudyResponse `json:"studies"`
	PatientResponse
}

// StudyCreateRequest is the body of POST /api/v1/studies
type StudyCreateRequest struct {
	Description *string `json:"description,omitempty"`
	PatientID   string  `json:"patient_id"`
	StudyDate   string  `json:"study_date"` // YYYY-MM-DD
	Modality    string  `json:"modality"`
	BodyPart    string  `json:"body_part"`
	Status      string  `json:"status,omitempty"` // defaults to Planned
}

// StudyUpdateRequest is the body of PATCH /api/v1/studies/{id}
type StudyUpdateRequest struct {
	StudyDate   *string `json:"study_date,omitempty"`
	Modality    *string `json:"modality,omitempty"`
	BodyPart    *string `json:"body_part,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// StudyResponse is the public view of a study
type StudyResponse struct {
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Description *string   `json:"description"`
	ID          string    `json:"id"`
	PatientID   string    `json:"patient_id"`
	StudyDate   string    `json:"study_date"`
	Modality    string    `json:"modality"`
	BodyPart    string    `json:"body_part"`
	Status      string    `json:"status"`
}

// StudyWithImagesResponse adds the study's images
type StudyWithImagesResponse struct {
	Images []ImageResponse `json:"images"`
	StudyResponse
}

// ImageResponse is image metadata; the stored path is never exposed
type ImageResponse struct {
	CreatedAt  time.Time `json:"created_at"`
	ID         string    `json:"id"`
	StudyID    string    `json:"study_id"`
	Filename   string    `json:"filename"`
	MIMEType   string    `json:"mime_type"`
	FileSize   int64     `json:"file_size"`
	FileSizeMB float64   `json:"file_size_mb"` // rounded to two decimals
}

// MessageResponse is a plain acknowledgement
type MessageResponse struct {
	Message string `json:"message"`
}
