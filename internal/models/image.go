package models

import "time"

// Image is a stored file attached to a study.
// StoredFilename and FilePath are generated server-side; Filename is the
// client's original name and is only ever displayed.
type Image struct {
	CreatedAt      time.Time `json:"created_at"`
	ID             string    `json:"id"`
	StudyID        string    `json:"study_id"`
	Filename       string    `json:"filename"`
	StoredFilename string    `json:"-"`
	FilePath       string    `json:"-"`
	MIMEType       string    `json:"mime_type"`
	FileSize       int64     `json:"file_size"`
}
