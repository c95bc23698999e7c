package handlers

import (
	"log/slog"
	"net/http"

	"github.com/iudanet/medrecords/internal/models"
	"github.com/iudanet/medrecords/internal/server/records"
	"github.com/iudanet/medrecords/internal/validation"
	"github.com/iudanet/medrecords/pkg/api"
)

// PatientHandler serves /api/v1/patients.
type PatientHandler struct {
	responder
	records *records.Service
}

// NewPatientHandler creates a PatientHandler.
func NewPatientHandler(logger *slog.Logger, svc *records.Service) *PatientHandler {
	return &PatientHandler{
		responder: responder{logger: logger},
		records:   svc,
	}
}

// Create handles POST /api/v1/patients.
func (h *PatientHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.PatientCreateRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	dob, err := validation.ParseDate("date of birth", req.DateOfBirth)
	if err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := h.records.CreatePatient(ctx, records.NewPatient{
		MRN:         req.MRN,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: dob,
	})
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	h.sendJSON(w, patientResponse(p), http.StatusCreated)
}

// List handles GET /api/v1/patients.
func (h *PatientHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	skip, limit, err := validation.ParsePagination(r.URL.Query().Get("skip"), r.URL.Query().Get("limit"))
	if err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	patients, err := h.records.ListPatients(ctx, skip, limit)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	h.sendJSON(w, mapSlice(patients, patientResponse), http.StatusOK)
}

// Get handles GET /api/v1/patients/{id}.
func (h *PatientHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, studies, err := h.records.GetPatient(ctx, r.PathValue("id"))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	h.sendJSON(w, api.PatientWithStudiesResponse{
		PatientResponse: patientResponse(p),
		Studies:         mapSlice(studies, studyResponse),
	}, http.StatusOK)
}

// GetByMRN handles GET /api/v1/patients/mrn/{mrn}.
func (h *PatientHandler) GetByMRN(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, err := h.records.GetPatientByMRN(ctx, r.PathValue("mrn"))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	h.sendJSON(w, patientResponse(p), http.StatusOK)
}

// Update handles PATCH /api/v1/patients/{id}.
func (h *PatientHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.PatientUpdateRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	upd := models.PatientUpdate{
		MRN:       req.MRN,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if req.DateOfBirth != nil {
		dob, err := validation.ParseDate("date of birth", *req.DateOfBirth)
		if err != nil {
			h.sendError(w, err.Error(), http.StatusBadRequest)
			return
		}
		upd.DateOfBirth = &dob
	}

	p, err := h.records.UpdatePatient(ctx, r.PathValue("id"), upd)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	h.sendJSON(w, patientResponse(p), http.StatusOK)
}

// Delete handles DELETE /api/v1/patients/{id}.
func (h *PatientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.records.DeletePatient(ctx, r.PathValue("id")); err != nil {
		h.writeError(ctx, w, err)
		return
	}

	h.sendJSON(w, api.MessageResponse{Message: "patient deleted"}, http.StatusOK)
}
