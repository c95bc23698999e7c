package models

import "time"

// Patient is a person with a hospital-assigned medical record number.
type Patient struct {
	DateOfBirth time.Time `json:"date_of_birth"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ID          string    `json:"id"`
	MRN         string    `json:"mrn"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
}

// PatientUpdate carries a partial patient update. Nil fields are left untouched.
type PatientUpdate struct {
	MRN         *string
	FirstName   *string
	LastName    *string
	DateOfBirth *time.Time
}

// Empty reports whether the update changes nothing.
func (u PatientUpdate) Empty() bool {
	return u.MRN == nil && u.FirstName == nil && u.LastName == nil && u.DateOfBirth == nil
}

// Apply copies the set fields onto p.
func (u PatientUpdate) Apply(p *Patient) {
	if u.MRN != nil {
		p.MRN = *u.MRN
	}
	if u.FirstName != nil {
		p.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		p.LastName = *u.LastName
	}
	if u.DateOfBirth != nil {
		p.DateOfBirth = *u.DateOfBirth
	}
}
