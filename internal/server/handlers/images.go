package handlers

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/iudanet/medrecords/internal/server/records"
	"github.com/iudanet/medrecords/pkg/api"
)

// multipartOverhead is the slack allowed on top of the upload limit for
// multipart framing and other form fields.
const multipartOverhead = 1 << 20

// ImageHandler serves image upload, metadata and download.
type ImageHandler struct {
	responder
	records *records.Service
}

// NewImageHandler creates an ImageHandler.
func NewImageHandler(logger *slog.Logger, svc *records.Service) *ImageHandler {
	return &ImageHandler{
		responder: responder{logger: logger},
		records:   svc,
	}
}

// Upload handles POST /api/v1/studies/{id}/images. The file is read from
// the multipart field "file".
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bodyCap := 2*h.records.UploadPolicy().MaxSize + multipartOverhead
	r.Body = http.MaxBytesReader(w, r.Body, bodyCap)

	mr, err := r.MultipartReader()
	if err != nil {
		h.sendError(w, "request must be multipart/form-data", http.StatusBadRequest)
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			h.sendError(w, "file is required", http.StatusBadRequest)
			return
		}
		if err != nil {
			h.uploadReadError(w, r, err)
			return
		}
		if part.FormName() != "file" {
			_ = part.Close()
			continue
		}

		filename := part.FileName()
		if filename == "" {
			h.sendError(w, "file must have a filename", http.StatusBadRequest)
			return
		}

		img, err := h.records.UploadImage(ctx, r.PathValue("id"), filename, part)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				h.uploadReadError(w, r, err)
				return
			}
			h.writeError(ctx, w, err)
			return
		}

		h.sendJSON(w, imageResponse(img), http.StatusCreated)
		return
	}
}

func (h *ImageHandler) uploadReadError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		h.logger.WarnContext(r.Context(), "upload body exceeds hard limit", slog.Int64("limit", maxErr.Limit))
		h.sendError(w, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}
	h.logger.WarnContext(r.Context(), "failed to read multipart body", slog.Any("error", err))
	h.sendError(w, "invalid multipart body", http.StatusBadRequest)
}

// ListByStudy handles GET /api/v1/studies/{id}/images.
func (h *ImageHandler) ListByStudy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	images, err := h.records.ListImages(ctx, r.PathValue("id"))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	h.sendJSON(w, mapSlice(images, imageResponse), http.StatusOK)
}

// Get handles GET /api/v1/images/{id}.
func (h *ImageHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	img, err := h.records.GetImage(ctx, r.PathValue("id"))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	h.sendJSON(w, imageResponse(img), http.StatusOK)
}

// Download handles GET /api/v1/images/{id}/file.
func (h *ImageHandler) Download(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	img, f, err := h.records.OpenImage(ctx, r.PathValue("id"))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			h.logger.WarnContext(ctx, "failed to close image file", slog.Any("error", err))
		}
	}()

	w.Header().Set("Content-Type", img.MIMEType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": img.Filename}))
	http.ServeContent(w, r, img.Filename, img.CreatedAt, f)
}

// Delete handles DELETE /api/v1/images/{id}.
func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.records.DeleteImage(ctx, r.PathValue("id")); err != nil {
		h.writeError(ctx, w, err)
		return
	}

	h.sendJSON(w, api.MessageResponse{Message: "image deleted"}, http.StatusOK)
}
