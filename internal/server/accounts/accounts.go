// Package accounts implements registration, login and identity administration.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/medrecords/internal/apperr"
	"github.com/iudanet/medrecords/internal/models"
	"github.com/iudanet/medrecords/internal/server/metrics"
	"github.com/iudanet/medrecords/internal/server/storage"
	"github.com/iudanet/medrecords/internal/validation"
)

var (
	// ErrBadCredentials covers both an unknown email and a wrong password.
	ErrBadCredentials = apperr.New(apperr.Unauthenticated, "incorrect email or password")

	// ErrInactive is returned when a deactivated identity tries to log in.
	ErrInactive = apperr.New(apperr.Forbidden, "inactive user")

	// ErrRoleRequiresAdmin is returned when a non-admin registers a privileged role.
	ErrRoleRequiresAdmin = apperr.New(apperr.Forbidden, "only an administrator can assign this role")

	// ErrSelfModification prevents an admin from locking themselves out.
	ErrSelfModification = apperr.New(apperr.Validation, "administrators cannot change their own role or active status")
)

// login results for metrics
const (
	loginSuccess  = "success"
	loginRejected = "rejected"
	loginInactive = "inactive"
)

// dummyPassword is hashed once at startup so unknown emails cost one verify.
const dummyPassword = "timing-equalizer-0"

// Hasher hashes and verifies passwords.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// Issuer signs access tokens.
type Issuer interface {
	Issue(user *models.User) (string, int64, error)
}

// Token is a freshly issued access token.
type Token struct {
	AccessToken string
	ExpiresIn   int64
}

// NewUser is the input for registration.
type NewUser struct {
	Email    string
	Password string
	FullName string
	Role     models.Role
}

// UserUpdate carries admin changes. Nil fields are left untouched.
type UserUpdate struct {
	Role     *models.Role
	IsActive *bool
	FullName *string
}

// Service owns identity workflows.
type Service struct {
	users     storage.UserStorage
	hasher    Hasher
	tokens    Issuer
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
	dummyHash string
}

// NewService creates the accounts service. m may be nil.
func NewService(users storage.UserStorage, hasher Hasher, tokens Issuer, logger *slog.Logger, m *metrics.Metrics) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dummy, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}

	return &Service{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
		dummyHash: dummy,
	}, nil
}

// Register creates an identity on behalf of actor. Anyone may register a
// PATIENT; other roles need an administrator as actor.
func (s *Service) Register(ctx context.Context, actor *models.User, in NewUser) (*models.User, error) {
	if in.Role == "" {
		in.Role = models.RolePatient
	}
	if in.Role != models.RolePatient && (actor == nil || actor.Role != models.RoleAdmin) {
		return nil, ErrRoleRequiresAdmin
	}
	return s.CreateUser(ctx, in)
}

// CreateUser validates and stores a new identity without an authorization
// check. It backs both Register and the admin CLI.
func (s *Service) CreateUser(ctx context.Context, in NewUser) (*models.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	if in.Role == "" {
		in.Role = models.RolePatient
	}

	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, apperr.New(apperr.Validation, err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, apperr.New(apperr.Validation, err.Error())
	}
	if err := validation.ValidateFullName(in.FullName); err != nil {
		return nil, apperr.New(apperr.Validation, err.Error())
	}
	if !in.Role.Valid() {
		return nil, apperr.Newf(apperr.Validation, "role %q is not one of ADMIN, DOCTOR, PATIENT", in.Role)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "internal server error", err)
	}

	now := s.now().UTC()
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        in.Email,
		PasswordHash: hash,
		FullName:     in.FullName,
		Role:         in.Role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			return nil, apperr.Wrap(apperr.Conflict, "email already registered", err)
		}
		return nil, apperr.Wrap(apperr.Internal, "internal server error", err)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)

	return user, nil
}

// Login checks credentials, stamps last login and issues a token.
func (s *Service) Login(ctx context.Context, email, password string) (*Token, *models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if !errors.Is(err, storage.ErrUserNotFound) {
			return nil, nil, apperr.Wrap(apperr.Internal, "internal server error", err)
		}
		s.hasher.Verify(password, s.dummyHash)
		s.logger.WarnContext(ctx, "login failed: unknown email")
		s.metrics.ObserveLogin(loginRejected)
		return nil, nil, ErrBadCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.WarnContext(ctx, "login failed: wrong password", slog.String("user_id", user.ID))
		s.metrics.ObserveLogin(loginRejected)
		return nil, nil, ErrBadCredentials
	}

	if !user.IsActive {
		s.logger.WarnContext(ctx, "login failed: inactive user", slog.String("user_id", user.ID))
		s.metrics.ObserveLogin(loginInactive)
		return nil, nil, ErrInactive
	}

	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, nil, apperr.Wrap(apperr.Internal, "internal server error", err)
	}
	user.LastLogin = &now

	raw, expiresIn, err := s.tokens.Issue(user)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.Internal, "internal server error", err)
	}

	s.metrics.ObserveLogin(loginSuccess)
	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))

	return &Token{AccessToken: raw, ExpiresIn: expiresIn}, user, nil
}

// ListUsers returns a page of identities.
func (s *Service) ListUsers(ctx context.Context, skip, limit int) ([]*models.User, error) {
	users, err := s.users.ListUsers(ctx, skip, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "internal server error", err)
	}
	return users, nil
}

// GetUserByEmail looks up an identity for administrative tools.
func (s *Service) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, userLookupError(err)
	}
	return user, nil
}

// UpdateUser applies an admin change to the identity with id. actor may be
// nil for trusted callers such as the CLI.
func (s *Service) UpdateUser(ctx context.Context, actor *models.User, id string, upd UserUpdate) (*models.User, error) {
	if upd.Role == nil && upd.IsActive == nil && upd.FullName == nil {
		return nil, apperr.New(apperr.Validation, "no fields to update")
	}
	if upd.Role != nil && !upd.Role.Valid() {
		return nil, apperr.Newf(apperr.Validation, "role %q is not one of ADMIN, DOCTOR, PATIENT", *upd.Role)
	}
	if upd.FullName != nil {
		if err := validation.ValidateFullName(*upd.FullName); err != nil {
			return nil, apperr.New(apperr.Validation, err.Error())
		}
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, userLookupError(err)
	}

	if actor != nil && actor.ID == user.ID {
		demoted := upd.Role != nil && *upd.Role != user.Role
		deactivated := upd.IsActive != nil && !*upd.IsActive
		if demoted || deactivated {
			return nil, ErrSelfModification
		}
	}

	if upd.Role != nil {
		user.Role = *upd.Role
	}
	if upd.IsActive != nil {
		user.IsActive = *upd.IsActive
	}
	if upd.FullName != nil {
		user.FullName = strings.TrimSpace(*upd.FullName)
	}
	user.UpdatedAt = s.now().UTC()

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, userLookupError(err)
	}

	s.logger.InfoContext(ctx, "user updated",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
		slog.Bool("is_active", user.IsActive),
	)

	return user, nil
}

func userLookupError(err error) error {
	if errors.Is(err, storage.ErrUserNotFound) {
		return apperr.Wrap(apperr.NotFound, "user not found", err)
	}
	return apperr.Wrap(apperr.Internal, "internal server error", err)
}
