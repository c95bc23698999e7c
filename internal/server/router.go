package server

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/iudanet/medrecords/internal/models"
	"github.com/iudanet/medrecords/internal/server/auth"
	"github.com/iudanet/medrecords/internal/server/handlers"
	"github.com/iudanet/medrecords/internal/server/metrics"
	"github.com/iudanet/medrecords/internal/server/middleware"
)

// Handlers groups the HTTP handlers mounted by NewRouter.
type Handlers struct {
	Auth     *handlers.AuthHandler
	Patients *handlers.PatientHandler
	Studies  *handlers.StudyHandler
	Images   *handlers.ImageHandler
	Health   *handlers.HealthHandler
}

// NewRouter mounts every route with its access rule and wraps the mux with
// recovery, request logging and metrics.
func NewRouter(logger *slog.Logger, gate *auth.Gate, h Handlers, m *metrics.Metrics, reg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()

	authn := middleware.Authenticate(logger, gate)
	roles := func(allowed ...models.Role) func(http.HandlerFunc) http.Handler {
		return func(next http.HandlerFunc) http.Handler {
			return authn(middleware.RequireRoles(logger, gate, allowed...)(next))
		}
	}
	admin := roles(models.RoleAdmin)
	staff := roles(models.RoleAdmin, models.RoleDoctor)

	mux.HandleFunc("GET /api/v1/health", h.Health.Health)
	mux.Handle("GET /metrics", metrics.Handler(reg))

	mux.Handle("POST /api/v1/auth/register", middleware.AuthenticateOptional(logger, gate)(http.HandlerFunc(h.Auth.Register)))
	mux.HandleFunc("POST /api/v1/auth/login", h.Auth.Login)
	mux.Handle("GET /api/v1/auth/me", authn(http.HandlerFunc(h.Auth.Me)))
	mux.Handle("GET /api/v1/auth/users", admin(h.Auth.ListUsers))
	mux.Handle("PATCH /api/v1/auth/users/{id}", admin(h.Auth.UpdateUser))

	mux.Handle("POST /api/v1/patients", staff(h.Patients.Create))
	mux.Handle("GET /api/v1/patients", staff(h.Patients.List))
	mux.Handle("GET /api/v1/patients/mrn/{mrn}", staff(h.Patients.GetByMRN))
	mux.Handle("GET /api/v1/patients/{id}", staff(h.Patients.Get))
	mux.Handle("PATCH /api/v1/patients/{id}", staff(h.Patients.Update))
	mux.Handle("DELETE /api/v1/patients/{id}", admin(h.Patients.Delete))

	mux.Handle("POST /api/v1/studies", staff(h.Studies.Create))
	mux.Handle("GET /api/v1/studies", staff(h.Studies.List))
	mux.Handle("GET /api/v1/studies/{id}", staff(h.Studies.Get))
	mux.Handle("PATCH /api/v1/studies/{id}", staff(h.Studies.Update))
	mux.Handle("DELETE /api/v1/studies/{id}", admin(h.Studies.Delete))

	mux.Handle("POST /api/v1/studies/{id}/images", staff(h.Images.Upload))
	mux.Handle("GET /api/v1/studies/{id}/images", staff(h.Images.ListByStudy))
	mux.Handle("GET /api/v1/images/{id}", staff(h.Images.Get))
	mux.Handle("GET /api/v1/images/{id}/file", staff(h.Images.Download))
	mux.Handle("DELETE /api/v1/images/{id}", staff(h.Images.Delete))

	var handler http.Handler = mux
	handler = middleware.MetricsMiddleware(m)(handler)
	handler = middleware.LoggingWithSkip(logger, []string{"/api/v1/health", "/metrics"})(handler)
	handler = middleware.RecoveryMiddleware(logger)(handler)
	return handler
}
