package usecase

import (
	"context"
	"errors"
	"time"

	"labor-market/internal/data/entity"
	"labor-market/internal/data/repository"
	"labor-market/internal/dto/request"
	"labor-market/internal/dto/response"
	"labor-market/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService interface {
	Login(ctx context.Context, req *request.LoginRequest, client ClientInfo) (*response.AuthResponse, error)
	Logout(ctx context.Context, token string) error
}

// ClientInfo is stored on the session for auditing.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

type authService struct {
	repo   *repository.Repository
	expiry time.Duration
	log    *zap.Logger
}

func NewAuthService(repo *repository.Repository, config *utils.Config, log *zap.Logger) AuthService {
	expiry := time.Duration(config.Session.ExpiryHours) * time.Hour
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}

	return &authService{
		repo:   repo,
		expiry: expiry,
		log:    log.With(zap.String("service", "auth")),
	}
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest, client ClientInfo) (*response.AuthResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Login validation failed", zap.Any("errors", errs))
		return nil, validationError(errs)
	}

	user, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, wrapError(ErrPersistence, "Failed to find user", err)
	}

	// same answer for unknown email and wrong password
	if user == nil || !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.Warn("Invalid login attempt", zap.String("email", req.Email))
		return nil, newError(ErrUnauthenticated, "Invalid credentials")
	}

	if !user.IsActive {
		s.log.Warn("Inactive user tried to login", zap.String("user_id", user.ID.String()))
		return nil, newError(ErrForbidden, "Account is deactivated")
	}

	now := time.Now()
	session := &entity.Session{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:    user.ID,
		Token:     uuid.New(),
		UserAgent: optional(client.UserAgent),
		IPAddress: optional(client.IPAddress),
		ExpiresAt: now.Add(s.expiry),
	}

	if err := s.repo.Session.Create(ctx, session); err != nil {
		return nil, wrapError(ErrPersistence, "Failed to create session", err)
	}

	s.log.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)

	resp := response.AuthToResponse(user, session)
	return &resp, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	tokenUUID, err := uuid.Parse(token)
	if err != nil {
		return newError(ErrUnauthenticated, "Invalid token format")
	}

	err = s.repo.Session.Revoke(ctx, tokenUUID)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return newError(ErrUnauthenticated, "Session already ended")
	}
	if err != nil {
		return wrapError(ErrPersistence, "Failed to logout", err)
	}

	s.log.Info("User logged out")
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
