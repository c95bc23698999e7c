package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/medrecords/internal/apperr"
	"github.com/iudanet/medrecords/internal/models"
	"github.com/iudanet/medrecords/internal/server/auth"
	"github.com/iudanet/medrecords/internal/server/handlers"
)

// Authenticate resolves the bearer token to an active identity and stores
// it in the request context. Requests without a valid token get 401.
func Authenticate(logger *slog.Logger, gate *auth.Gate) func(http.Handler) http.Handler {
	return authenticate(logger, gate, false)
}

// AuthenticateOptional behaves like Authenticate but lets requests without
// an Authorization header through anonymously.
func AuthenticateOptional(logger *slog.Logger, gate *auth.Gate) func(http.Handler) http.Handler {
	return authenticate(logger, gate, true)
}

func authenticate(logger *slog.Logger, gate *auth.Gate, optional bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			header := r.Header.Get("Authorization")
			if header == "" && optional {
				next.ServeHTTP(w, r)
				return
			}

			raw, ok := bearerToken(header)
			if !ok {
				logger.WarnContext(ctx, "missing or malformed Authorization header")
				writeError(w, logger, auth.ErrUnauthenticated)
				return
			}

			user, err := gate.Authenticate(ctx, raw)
			if err != nil {
				writeError(w, logger, err)
				return
			}

			logger.DebugContext(ctx, "user authenticated",
				slog.String("user_id", user.ID),
				slog.String("role", string(user.Role)),
			)

			next.ServeHTTP(w, r.WithContext(handlers.WithUser(ctx, user)))
		})
	}
}

// RequireRoles lets the request through only if the authenticated identity
// holds one of roles. It must run after Authenticate.
func RequireRoles(logger *slog.Logger, gate *auth.Gate, roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := handlers.UserFromContext(r.Context())
			if !ok {
				writeError(w, logger, auth.ErrUnauthenticated)
				return
			}

			if err := gate.Authorize(user, roles...); err != nil {
				logger.WarnContext(r.Context(), "access denied",
					slog.String("user_id", user.ID),
					slog.String("role", string(user.Role)),
					slog.String("path", r.URL.Path),
				)
				writeError(w, logger, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token from "Bearer <token>".
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := handlers.StatusFor(apperr.KindOf(err))
	msg := apperr.MessageOf(err)
	if status >= http.StatusInternalServerError {
		logger.Error("authentication failed", slog.Any("error", err))
		msg = "internal server error"
	}
	writeJSONError(w, msg, status)
}
