// Package auth resolves bearer tokens to active identities and checks roles.
package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/iudanet/medrecords/internal/apperr"
	"github.com/iudanet/medrecords/internal/models"
	"github.com/iudanet/medrecords/internal/server/storage"
	"github.com/iudanet/medrecords/internal/server/token"
)

//go:generate moq -out token_verifier_mock.go . TokenVerifier
//go:generate moq -out user_finder_mock.go . UserFinder

var (
	// ErrUnauthenticated is returned for every token or identity lookup failure.
	ErrUnauthenticated = apperr.New(apperr.Unauthenticated, "could not validate credentials")

	// ErrInactive is returned for a valid token of a deactivated identity.
	ErrInactive = apperr.New(apperr.Forbidden, "inactive user")

	// ErrForbidden is returned when the identity's role is not permitted.
	ErrForbidden = apperr.New(apperr.Forbidden, "not enough permissions")
)

// TokenVerifier checks a raw bearer token.
type TokenVerifier interface {
	Verify(raw string) (*token.Claims, error)
}

// UserFinder loads an identity by id.
type UserFinder interface {
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
}

// Gate authenticates requests and authorizes roles.
type Gate struct {
	tokens TokenVerifier
	users  UserFinder
	logger *slog.Logger
}

// NewGate creates a gate.
func NewGate(tokens TokenVerifier, users UserFinder, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{tokens: tokens, users: users, logger: logger}
}

// Authenticate verifies raw and returns the active identity it names.
// The role is read from the identity record, not from the token, so a role
// change takes effect before the token expires.
func (g *Gate) Authenticate(ctx context.Context, raw string) (*models.User, error) {
	claims, err := g.tokens.Verify(raw)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	user, err := g.users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			g.logger.WarnContext(ctx, "token subject not found", slog.String("user_id", claims.Subject))
			return nil, ErrUnauthenticated
		}
		g.logger.ErrorContext(ctx, "failed to load token subject",
			slog.String("user_id", claims.Subject),
			slog.Any("error", err),
		)
		return nil, apperr.Wrap(apperr.Internal, "internal server error", err)
	}

	if !user.IsActive {
		return nil, ErrInactive
	}

	return user, nil
}

// Authorize fails with ErrForbidden unless user's role is in allowed.
func (g *Gate) Authorize(user *models.User, allowed ...models.Role) error {
	if user == nil || !models.Allows(user.Role, allowed...) {
		return ErrForbidden
	}
	return nil
}
