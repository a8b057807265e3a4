package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/lostfound/found-api/internal/auth"
	"github.com/lostfound/found-api/internal/logging"
	"github.com/lostfound/found-api/internal/metrics"
	"github.com/lostfound/found-api/internal/models"
	"github.com/lostfound/found-api/internal/store"
	apperrors "github.com/lostfound/found-api/pkg/errors"
)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// AuthService registers users and exchanges credentials for session tokens.
type AuthService struct {
	users    store.UserStore
	hasher   *auth.PasswordHasher
	tokens   *auth.TokenIssuer
	resolver *IdentityResolver
	logger   *logrus.Logger
}

func NewAuthService(users store.UserStore, hasher *auth.PasswordHasher, tokens *auth.TokenIssuer, resolver *IdentityResolver, logger *logrus.Logger) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		resolver: resolver,
		logger:   logger,
	}
}

// Register creates a user and returns a session for it.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (resp *models.AuthResponse, err error) {
	ctx, span := tracer.Start(ctx, "auth.register")
	defer span.End()
	defer func() { metrics.RecordAuthAttempt("register", err == nil) }()

	req.Normalize()
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, apperrors.Validation("Missing required fields: name, email, password")
	}
	if len(req.Password) < models.MinPasswordLength {
		return nil, apperrors.Validation("Password must be at least 6 characters")
	}
	if len(req.Password) > maxPasswordBytes {
		return nil, apperrors.Validation("Password must be at most 72 bytes")
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperrors.Conflict("User already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		s.logger.WithError(err).Error("Failed to look up email")
		return nil, apperrors.Internal("Failed to register user", err)
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Internal("Failed to hash password", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		Email:        req.Email,
		PasswordHash: digest,
		Name:         req.Name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("User already exists")
		}
		s.logger.WithError(err).Error("Failed to create user")
		return nil, apperrors.Internal("Failed to register user", err)
	}
	span.SetAttributes(attribute.String("user.id", user.ID))

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("User registered")

	return s.session(user)
}

// Login checks credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (resp *models.AuthResponse, err error) {
	ctx, span := tracer.Start(ctx, "auth.login")
	defer span.End()
	defer func() { metrics.RecordAuthAttempt("login", err == nil) }()

	email := models.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, apperrors.Validation("Missing email or password")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.WithField("email", email).Warn("Login failed: unknown email")
			return nil, invalidCredentials()
		}
		s.logger.WithError(err).Error("Failed to look up user for login")
		return nil, apperrors.Internal("Failed to log in", err)
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		logging.WithUserID(s.logger, user.ID).Warn("Login failed: wrong password")
		return nil, invalidCredentials()
	}

	logging.WithUserID(s.logger, user.ID).Info("User logged in")
	return s.session(user)
}

// Verify resolves a client-held token to its user.
func (s *AuthService) Verify(ctx context.Context, token string) (user *models.User, err error) {
	defer func() { metrics.RecordAuthAttempt("verify", err == nil) }()
	return s.resolver.ResolveUser(ctx, token)
}

func (s *AuthService) session(user *models.User) (*models.AuthResponse, error) {
	token, expiresIn, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue token", err)
	}
	return &models.AuthResponse{
		User:      user.Public(),
		Token:     token,
		ExpiresIn: expiresIn,
	}, nil
}

func invalidCredentials() *apperrors.AppError {
	return apperrors.NewAppError(apperrors.CodeInvalidCredentials, "Invalid credentials", nil)
}
