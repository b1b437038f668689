package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cinema-ticketing/internal/data/entity"
	"cinema-ticketing/internal/data/repository"
	"cinema-ticketing/internal/dto/request"
	"cinema-ticketing/internal/dto/response"
	"cinema-ticketing/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClientInfo is stored alongside issued tokens for auditing
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest, client ClientInfo) (*response.AuthResponse, error)
	Login(ctx context.Context, req *request.LoginRequest, client ClientInfo) (*response.AuthResponse, error)
	Logout(ctx context.Context, token string) error
	CleanExpiredTokens(ctx context.Context) (int64, error)
}

type authService struct {
	repo   *repository.Repository
	config *utils.Config
	log    *zap.Logger
}

func NewAuthService(repo *repository.Repository, config *utils.Config, log *zap.Logger) AuthService {
	return &authService{
		repo:   repo,
		config: config,
		log:    log.With(zap.String("service", "auth")),
	}
}

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest, client ClientInfo) (*response.AuthResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Register validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	user, err := createUser(ctx, s.repo.User, s.config.Auth.BcryptCost,
		req.Username, req.Email, req.Password, entity.RoleViewer, s.log)
	if err != nil {
		return nil, err
	}

	token, err := s.issueToken(ctx, user.ID, client)
	if err != nil {
		s.log.Warn("Failed to issue token after register",
			zap.Error(err), zap.String("user_id", user.ID.String()))
	}

	s.log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	resp := response.AuthToResponse(user, token)
	return &resp, nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest, client ClientInfo) (*response.AuthResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Login validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	identifier := strings.TrimSpace(req.Username)

	user, err := s.repo.User.FindByUsername(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil && strings.Contains(identifier, "@") {
		user, err = s.repo.User.FindByEmail(ctx, identifier)
		if err != nil {
			return nil, fmt.Errorf("failed to find user: %w", err)
		}
	}

	if user == nil || user.IsDeleted() || !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.Warn("Invalid login attempt", zap.String("identifier", identifier))
		return nil, fmt.Errorf("invalid credentials")
	}

	token, err := s.issueToken(ctx, user.ID, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create token: %w", err)
	}

	s.log.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	resp := response.AuthToResponse(user, token)
	return &resp, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	tokenUUID, err := uuid.Parse(token)
	if err != nil {
		return fmt.Errorf("invalid token format")
	}

	if err := s.repo.AuthToken.Revoke(ctx, tokenUUID.String()); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}

	s.log.Info("User logged out")
	return nil
}

func (s *authService) CleanExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.repo.AuthToken.DeleteExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("clean expired tokens: %w", err)
	}
	if n > 0 {
		s.log.Info("Expired tokens removed", zap.Int64("count", n))
	}
	return n, nil
}

func (s *authService) issueToken(ctx context.Context, userID uuid.UUID, client ClientInfo) (*entity.AuthToken, error) {
	expiry := time.Duration(s.config.Auth.TokenExpiryHours) * time.Hour
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}

	now := time.Now()
	token := &entity.AuthToken{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:    userID,
		Token:     utils.GenerateAuthToken(),
		UserAgent: optionalString(client.UserAgent),
		IPAddress: optionalString(client.IPAddress),
		ExpiresAt: now.Add(expiry),
	}

	if err := s.repo.AuthToken.Create(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// createUser is shared by self-registration and admin user creation
func createUser(ctx context.Context, users repository.UserRepository, cost int,
	username, email, password string, role entity.UserRole, log *zap.Logger) (*entity.User, error) {

	existing, err := users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("username already taken")
	}

	existing, err = users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("email already registered")
	}

	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("failed to process password: %w", err)
	}

	now := time.Now()
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Username:     username,
		Email:        strings.ToLower(email),
		PasswordHash: hash,
		Role:         role,
	}

	if err := users.Create(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("username or email already taken")
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return user, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
