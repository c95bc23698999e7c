// Package token issues and verifies signed, expiring bearer tokens.
package token

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iudanet/medrecords/internal/apperr"
	"github.com/iudanet/medrecords/internal/models"
)

// ErrInvalidToken is the only error Verify returns. Callers cannot tell a bad
// signature from an expired or malformed token.
var ErrInvalidToken = apperr.New(apperr.Unauthenticated, "could not validate credentials")

// Config holds signing parameters.
type Config struct {
	Secret []byte
	TTL    time.Duration
}

// Claims is the token payload. Subject carries the user id.
type Claims struct {
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Service signs tokens with HS256.
type Service struct {
	logger *slog.Logger
	now    func() time.Time
	secret []byte
	ttl    time.Duration
}

// NewService validates cfg and returns a token service.
func NewService(cfg Config, logger *slog.Logger) (*Service, error) {
	if len(cfg.Secret) == 0 {
		return nil, fmt.Errorf("token secret cannot be empty")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", cfg.TTL)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		secret: cfg.Secret,
		ttl:    cfg.TTL,
		logger: logger,
		now:    time.Now,
	}, nil
}

// TTL returns the configured token lifetime.
func (s *Service) TTL() time.Duration { return s.ttl }

// Issue signs a token for user. expiresIn is the lifetime in seconds.
func (s *Service) Issue(user *models.User) (signed string, expiresIn int64, err error) {
	if user == nil || user.ID == "" {
		return "", 0, fmt.Errorf("cannot issue token without a subject")
	}

	// exp has whole-second resolution, so the recorded issue time does too.
	now := s.now().Truncate(time.Second)
	claims := Claims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, int64(s.ttl.Seconds()), nil
}

// Verify checks signature, algorithm and expiry and returns the claims.
func (s *Service) Verify(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		s.logger.Debug("token rejected", slog.String("reason", reason(err)))
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" {
		s.logger.Debug("token rejected", slog.String("reason", "missing subject"))
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func reason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "bad signature"
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return "unverifiable"
	default:
		return err.Error()
	}
}
