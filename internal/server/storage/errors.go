package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that a user with this email already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrPatientNotFound indicates that patient was not found in storage
	ErrPatientNotFound = errors.New("patient not found")

	// ErrMRNAlreadyExists indicates that another patient holds the MRN
	ErrMRNAlreadyExists = errors.New("mrn already exists")

	// ErrStudyNotFound indicates that study was not found in storage
	ErrStudyNotFound = errors.New("study not found")

	// ErrImageNotFound indicates that image was not found in storage
	ErrImageNotFound = errors.New("image not found")

	// ErrImageAlreadyExists indicates a stored filename collision
	ErrImageAlreadyExists = errors.New("image already exists")
)
