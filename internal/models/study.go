package models

import "time"

// Modality is the imaging technique used for a study.
type Modality string

const (
	ModalityCT         Modality = "CT"
	ModalityMRI        Modality = "MRI"
	ModalityXRay       Modality = "X-Ray"
	ModalityUltrasound Modality = "Ultrasound"
)

// Valid reports whether m is a known modality.
func (m Modality) Valid() bool {
	switch m {
	case ModalityCT, ModalityMRI, ModalityXRay, ModalityUltrasound:
		return true
	}
	return false
}

// BodyPart is the anatomical region examined.
type BodyPart string

const (
	BodyPartHead    BodyPart = "Head"
	BodyPartChest   BodyPart = "Chest"
	BodyPartAbdomen BodyPart = "Abdomen"
	BodyPartPelvis  BodyPart = "Pelvis"
	BodyPartLimbs   BodyPart = "Limbs"
)

// Valid reports whether b is a known body part.
func (b BodyPart) Valid() bool {
	switch b {
	case BodyPartHead, BodyPartChest, BodyPartAbdomen, BodyPartPelvis, BodyPartLimbs:
		return true
	}
	return false
}

// StudyStatus tracks a study through its workflow.
type StudyStatus string

const (
	StudyPlanned    StudyStatus = "Planned"
	StudyInProgress StudyStatus = "In Progress"
	StudyCompleted  StudyStatus = "Completed"
	StudyReviewed   StudyStatus = "Reviewed"
)

// Valid reports whether s is a known status.
func (s StudyStatus) Valid() bool {
	switch s {
	case StudyPlanned, StudyInProgress, StudyCompleted, StudyReviewed:
		return true
	}
	return false
}

// Study is one imaging examination of a patient.
type Study struct {
	StudyDate   time.Time   `json:"study_date"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Description *string     `json:"description,omitempty"`
	ID          string      `json:"id"`
	PatientID   string      `json:"patient_id"`
	Modality    Modality    `json:"modality"`
	BodyPart    BodyPart    `json:"body_part"`
	Status      StudyStatus `json:"status"`
}

// StudyFilter narrows a study listing. Zero values match everything.
type StudyFilter struct {
	PatientID string
	Modality  Modality
	Status    StudyStatus
	Skip      int
	Limit     int
}

// StudyUpdate carries a partial study update. Nil fields are left untouched.
type StudyUpdate struct {
	StudyDate   *time.Time
	Modality    *Modality
	BodyPart    *BodyPart
	Description *string
	Status      *StudyStatus
}

// Empty reports whether the update changes nothing.
func (u StudyUpdate) Empty() bool {
	return u.StudyDate == nil && u.Modality == nil && u.BodyPart == nil &&
		u.Description == nil && u.Status == nil
}

// Apply copies the set fields onto s.
func (u StudyUpdate) Apply(s *Study) {
	if u.StudyDate != nil {
		s.StudyDate = *u.StudyDate
	}
	if u.Modality != nil {
		s.Modality = *u.Modality
	}
	if u.BodyPart != nil {
		s.BodyPart = *u.BodyPart
	}
	if u.Description != nil {
		d := *u.Description
		s.Description = &d
	}
	if u.Status != nil {
		s.Status = *u.Status
	}
}
