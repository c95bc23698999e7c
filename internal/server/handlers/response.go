package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/iudanet/medrecords/internal/apperr"
	"github.com/iudanet/medrecords/pkg/api"
)

// maxJSONBody bounds request bodies of every JSON endpoint.
const maxJSONBody = 1 << 20

// responder carries the JSON reply helpers shared by all handlers.
type responder struct {
	logger *slog.Logger
}

// sendJSON writes data as a JSON response
func (h responder) sendJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// sendError writes an api.ErrorResponse
func (h responder) sendError(w http.ResponseWriter, message string, statusCode int) {
	if statusCode == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	resp := api.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}
	h.sendJSON(w, resp, statusCode)
}

// writeError answers with the status of err's kind. Internal and storage
// faults are logged and answered with an opaque message.
func (h responder) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, context.Canceled) {
		h.logger.DebugContext(ctx, "request canceled")
		return
	}

	status := StatusFor(apperr.KindOf(err))
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, "request failed", slog.Any("error", err))
		h.sendError(w, "internal server error", status)
		return
	}

	h.sendError(w, apperr.MessageOf(err), status)
}

// decodeJSON reads a single JSON object from r's body into dst.
func (h responder) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			h.sendError(w, "request body too large", http.StatusRequestEntityTooLarge)
		case errors.Is(err, io.EOF):
			h.sendError(w, "request body is empty", http.StatusBadRequest)
		default:
			h.logger.WarnContext(r.Context(), "failed to decode request body", slog.Any("error", err))
			h.sendError(w, "invalid request body", http.StatusBadRequest)
		}
		return false
	}
	return true
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.Unauthenticated:
		return http.StatusUnauthorized
	case apperr.Forbidden:
		return http.StatusForbidden
	case apperr.Validation:
		return http.StatusBadRequest
	case apperr.Conflict:
		return http.StatusConflict
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.TooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
