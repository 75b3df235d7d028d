package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmsync/internal/auth"
	"github.com/mamadbah2/farmsync/internal/domain/models"
	"github.com/mamadbah2/farmsync/internal/repository/mongodb"
)

// Store persists accounts.
type Store interface {
	InsertUser(ctx context.Context, user models.User) error
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	GenerateToken(userID, email string) (string, error)
}

// Service registers accounts and logs them in.
type Service struct {
	store  Store
	tokens TokenIssuer
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires the accounts service.
func NewService(store Store, tokens TokenIssuer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, tokens: tokens, logger: logger, now: time.Now}
}

// Register creates an account. A taken email yields ErrConflict.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (models.User, error) {
	req.Email = normalizeEmail(req.Email)
	if err := models.ValidateStruct(req); err != nil {
		return models.User{}, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.InsertUser(ctx, user); err != nil {
		if errors.Is(err, mongodb.ErrDuplicate) {
			return models.User{}, fmt.Errorf("%w: email already registered", models.ErrConflict)
		}
		return models.User{}, fmt.Errorf("register user: %w", err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// Login checks credentials and issues a session token.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (models.LoginResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := models.ValidateStruct(req); err != nil {
		return models.LoginResponse{}, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	user, err := s.store.FindUserByEmail(ctx, req.Email)
	if errors.Is(err, mongodb.ErrNotFound) {
		return models.LoginResponse{}, models.ErrInvalidCredentials
	}
	if err != nil {
		return models.LoginResponse{}, fmt.Errorf("load user: %w", err)
	}
	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return models.LoginResponse{}, models.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		return models.LoginResponse{}, fmt.Errorf("issue token: %w", err)
	}

	return models.LoginResponse{Message: "Login successful", UserID: user.ID, Token: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
