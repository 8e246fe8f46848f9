// Package service provides the business logic behind the tutor store and the
// identity provider, delegating persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	appErrors "github.com/atinyakov/LearnLingo/internal/errors"
	"github.com/atinyakov/LearnLingo/internal/models"
	"github.com/atinyakov/LearnLingo/internal/repository"
)

// AuthRepository defines the persistence operations
// required by the authentication service.
type AuthRepository interface {
	// CreateUser stores a new user, returning repository.ErrDuplicate for a taken email.
	CreateUser(ctx context.Context, u *models.User) error
	// FindByEmail returns repository.ErrNotFound when no user has the email.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// CreateSession stores a login session.
	CreateSession(ctx context.Context, s models.Session) error
	// SessionActive reports whether the session is usable at now.
	SessionActive(ctx context.Context, id string, now time.Time) (bool, error)
	// RevokeSession ends the session.
	RevokeSession(ctx context.Context, id string) error
}

// AuthConfig configures token issuing.
type AuthConfig struct {
	Secret     string
	TokenTTL   time.Duration
	Issuer     string
	BcryptCost int
}

// Credentials is the register/login payload.
type Credentials struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token    string          `json:"token"`
	Identity models.Identity `json:"identity"`
}

// Claims are the access token claims. ID carries the session id.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// AuthService implements registration, login, logout and token validation.
type AuthService struct {
	repo      AuthRepository
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs a new AuthService using the provided repository.
func NewAuthService(repo AuthRepository, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.TokenTTL <= 0 {
		config.TokenTTL = 24 * time.Hour
	}
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	if config.Issuer == "" {
		config.Issuer = "learnlingo"
	}
	return &AuthService{
		repo:      repo,
		validator: validator.New(),
		logger:    logger,
		config:    config,
		now:       time.Now,
	}
}

// Register creates an account and signs it in.
func (s *AuthService) Register(ctx context.Context, in Credentials) (*AuthResult, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validate(in); err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.config.BcryptCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.ErrEmailInUse
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save user")
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return s.issue(ctx, user)
}

// Login verifies credentials and opens a new session.
func (s *AuthService) Login(ctx context.Context, in Credentials) (*AuthResult, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if err := s.validator.Var(in.Email, "required,email"); err != nil {
		return nil, appErrors.ErrInvalidEmail
	}

	user, err := s.repo.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.ErrUserNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(in.Password)); err != nil {
		return nil, appErrors.ErrWrongPassword
	}

	return s.issue(ctx, user)
}

// Logout revokes the session behind the token.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.repo.RevokeSession(ctx, sessionID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to revoke session")
	}
	return nil
}

// ValidateToken parses the token and checks that its session is still active.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(s.config.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}

	active, err := s.repo.SessionActive(ctx, claims.ID, s.now().UTC())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check session")
	}
	if !active {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session expired")
	}
	return claims, nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*AuthResult, error) {
	now := s.now().UTC()
	session := models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.config.TokenTTL),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}

	claims := Claims{
		Email: user.Email,
		Name:  user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Subject:   user.ID,
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}

	return &AuthResult{
		Token:    signed,
		Identity: models.Identity{ID: user.ID, Name: user.Name, Email: user.Email},
	}, nil
}

func (s *AuthService) validate(in Credentials) error {
	err := s.validator.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid credentials payload")
	}
	switch verrs[0].Field() {
	case "Email":
		return appErrors.ErrInvalidEmail
	case "Password":
		return appErrors.ErrWeakPassword
	default:
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid %s", strings.ToLower(verrs[0].Field())))
	}
}
