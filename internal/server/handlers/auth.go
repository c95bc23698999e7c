package handlers

import (
	"log/slog"
	"mime"
	"net/http"

	"github.com/iudanet/medrecords/internal/models"
	"github.com/iudanet/medrecords/internal/server/accounts"
	"github.com/iudanet/medrecords/internal/validation"
	"github.com/iudanet/medrecords/pkg/api"
)

// AuthHandler serves registration, login and user administration.
type AuthHandler struct {
	responder
	accounts *accounts.Service
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(logger *slog.Logger, svc *accounts.Service) *AuthHandler {
	return &AuthHandler{
		responder: responder{logger: logger},
		accounts:  svc,
	}
}

// Register handles POST /api/v1/auth/register.
// Anonymous callers may only create PATIENT identities.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RegisterRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	actor, _ := UserFromContext(ctx)
	user, err := h.accounts.Register(ctx, actor, accounts.NewUser{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     models.Role(req.Role),
	})
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	h.sendJSON(w, userResponse(user), http.StatusCreated)
}

// Login handles POST /api/v1/auth/login. It accepts a JSON body or an
// OAuth2 password form with username and password fields.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if isForm(r) {
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
		if err := r.ParseForm(); err != nil {
			h.sendError(w, "invalid form body", http.StatusBadRequest)
			return
		}
		req.Email = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
	} else if !h.decodeJSON(w, r, &req) {
		return
	}

	if req.Email == "" || req.Password == "" {
		h.sendError(w, "email and password are required", http.StatusBadRequest)
		return
	}

	tok, _, err := h.accounts.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	h.sendJSON(w, api.TokenResponse{
		AccessToken: tok.AccessToken,
		TokenType:   "bearer",
		ExpiresIn:   tok.ExpiresIn,
	}, http.StatusOK)
}

// Me handles GET /api/v1/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		h.sendError(w, "could not validate credentials", http.StatusUnauthorized)
		return
	}
	h.sendJSON(w, userResponse(user), http.StatusOK)
}

// ListUsers handles GET /api/v1/auth/users.
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	skip, limit, err := validation.ParsePagination(r.URL.Query().Get("skip"), r.URL.Query().Get("limit"))
	if err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	users, err := h.accounts.ListUsers(ctx, skip, limit)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	h.sendJSON(w, mapSlice(users, userResponse), http.StatusOK)
}

// UpdateUser handles PATCH /api/v1/auth/users/{id}.
func (h *AuthHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.UpdateUserRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	upd := accounts.UserUpdate{IsActive: req.IsActive, FullName: req.FullName}
	if req.Role != nil {
		role := models.Role(*req.Role)
		upd.Role = &role
	}

	actor, _ := UserFromContext(ctx)
	user, err := h.accounts.UpdateUser(ctx, actor, r.PathValue("id"), upd)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}

	h.sendJSON(w, userResponse(user), http.StatusOK)
}

func isForm(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/x-www-form-urlencoded"
}
