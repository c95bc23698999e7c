package handlers

import (
	"log/slog"
	"net/http"

	"github.com/iudanet/medrecords/internal/models"
	"github.com/iudanet/medrecords/internal/server/records"
	"github.com/iudanet/medrecords/internal/validation"
	"github.com/iudanet/medrecords/pkg/api"
)

// StudyHandler serves /api/v1/studies.
type StudyHandler struct {
	responder
	records *records.Service
}

// NewStudyHandler creates a StudyHandler.
func NewStudyHandler(logger *slog.Logger, svc *records.Service) *StudyHandler {
	return &StudyHandler{
		responder: responder{logger: logger},
		records:   svc,
	}
}

// Create handles POST /api/v1/studies.
func (h *StudyHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.StudyCreateRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	if req.PatientID == "" {
		h.sendError(w, "patient_id is required", http.StatusBadRequest)
		return
	}
	date, err := validation.ParseDate("study date", req.StudyDate)
	if err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	st, err := h.records.CreateStudy(ctx, records.NewStudy{
		PatientID:   req.PatientID,
		StudyDate:   date,
		Modality:    models.Modality(req.Modality),
		BodyPart:    models.BodyPart(req.BodyPart),
		Description: req.Description,
		Status:      models.StudyStatus(req.Status),
	})
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	h.sendJSON(w, studyResponse(st), http.StatusCreated)
}

// List handles GET /api/v1/studies.
func (h *StudyHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	skip, limit, err := validation.ParsePagination(q.Get("skip"), q.Get("limit"))
	if err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	studies, err := h.records.ListStudies(ctx, models.StudyFilter{
		PatientID: q.Get("patient_id"),
		Modality:  models.Modality(q.Get("modality")),
		Status:    models.StudyStatus(q.Get("status")),
		Skip:      skip,
		Limit:     limit,
	})
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	h.sendJSON(w, mapSlice(studies, studyResponse), http.StatusOK)
}

// Get handles GET /api/v1/studies/{id}.
func (h *StudyHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	st, images, err := h.records.GetStudy(ctx, r.PathValue("id"))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	h.sendJSON(w, api.StudyWithImagesResponse{
		StudyResponse: studyResponse(st),
		Images:        mapSlice(images, imageResponse),
	}, http.StatusOK)
}

// Update handles PATCH /api/v1/studies/{id}.
func (h *StudyHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.StudyUpdateRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	var upd models.StudyUpdate
	if req.StudyDate != nil {
		date, err := validation.ParseDate("study date", *req.StudyDate)
		if err != nil {
			h.sendError(w, err.Error(), http.StatusBadRequest)
			return
		}
		upd.StudyDate = &date
	}
	if req.Modality != nil {
		m := models.Modality(*req.Modality)
		upd.Modality = &m
	}
	if req.BodyPart != nil {
		b := models.BodyPart(*req.BodyPart)
		upd.BodyPart = &b
	}
	if req.Status != nil {
		s := models.StudyStatus(*req.Status)
		upd.Status = &s
	}
	upd.Description = req.Description

	st, err := h.records.UpdateStudy(ctx, r.PathValue("id"), upd)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	h.sendJSON(w, studyResponse(st), http.StatusOK)
}

// Delete handles DELETE /api/v1/studies/{id}.
func (h *StudyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.records.DeleteStudy(ctx, r.PathValue("id")); err != nil {
		h.writeError(ctx, w, err)
		return
	}

	h.sendJSON(w, api.MessageResponse{Message: "study deleted"}, http.StatusOK)
}
