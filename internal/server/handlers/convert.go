package handlers

import (
	"math"
	"time"

	"github.com/iudanet/medrecords/internal/models"
	"github.com/iudanet/medrecords/pkg/api"
)

const bytesPerMB = 1024 * 1024

func userResponse(u *models.User) api.UserResponse {
	return api.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}

func patientResponse(p *models.Patient) api.PatientResponse {
	return api.PatientResponse{
		ID:          p.ID,
		MRN:         p.MRN,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		DateOfBirth: p.DateOfBirth.Format(time.DateOnly),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func studyResponse(s *models.Study) api.StudyResponse {
	return api.StudyResponse{
		ID:          s.ID,
		PatientID:   s.PatientID,
		StudyDate:   s.StudyDate.Format(time.DateOnly),
		Modality:    string(s.Modality),
		BodyPart:    string(s.BodyPart),
		Description: s.Description,
		Status:      string(s.Status),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func imageResponse(img *models.Image) api.ImageResponse {
	return api.ImageResponse{
		ID:         img.ID,
		StudyID:    img.StudyID,
		Filename:   img.Filename,
		MIMEType:   img.MIMEType,
		FileSize:   img.FileSize,
		FileSizeMB: math.Round(float64(img.FileSize)/bytesPerMB*100) / 100,
		CreatedAt:  img.CreatedAt,
	}
}

func mapSlice[T any, R any](items []T, conv func(T) R) []R {
	out := make([]R, 0, len(items))
	for _, item := range items {
		out = append(out, conv(item))
	}
	return out
}
