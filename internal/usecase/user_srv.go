package usecase

import (
	"context"
	"fmt"

	"cinema-ticketing/internal/data/entity"
	"cinema-ticketing/internal/data/repository"
	"cinema-ticketing/internal/dto/request"
	"cinema-ticketing/internal/dto/response"
	"cinema-ticketing/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error)
	GetAllUsers(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error)
	CreateUser(ctx context.Context, req *request.CreateUserRequest) (*response.UserResponse, error)
	DeleteUser(ctx context.Context, actorID uuid.UUID, userID string) error
}

type userService struct {
	repo   *repository.Repository
	config *utils.Config
	log    *zap.Logger
}

func NewUserService(repo *repository.Repository, config *utils.Config, log *zap.Logger) UserService {
	return &userService{
		repo:   repo,
		config: config,
		log:    log.With(zap.String("service", "user")),
	}
}

func (us *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error) {
	user, err := us.repo.User.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if user == nil || user.IsDeleted() {
		return nil, fmt.Errorf("user not found")
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) GetAllUsers(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error) {
	req.Page, req.PerPage = utils.NormalizePagination(req.Page, req.PerPage)

	users, err := us.repo.User.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}

	total, err := us.repo.User.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	data := make([]response.UserResponse, len(users))
	for i, user := range users {
		data[i] = response.UserToResponse(user)
	}

	return response.NewPaginatedResponse(data, req.Page, req.PerPage, total), nil
}

func (us *userService) CreateUser(ctx context.Context, req *request.CreateUserRequest) (*response.UserResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	user, err := createUser(ctx, us.repo.User, us.config.Auth.BcryptCost,
		req.Username, req.Email, req.Password, entity.UserRole(req.Role), us.log)
	if err != nil {
		return nil, err
	}

	us.log.Info("User created by admin",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	resp := response.UserToResponse(user)
	return &resp, nil
}

// DeleteUser soft-deletes the account and revokes its tokens. Ticket history is kept.
func (us *userService) DeleteUser(ctx context.Context, actorID uuid.UUID, userID string) error {
	id, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user ID")
	}
	if id == actorID {
		return fmt.Errorf("cannot delete your own account")
	}

	if err := us.repo.User.Delete(ctx, id); err != nil {
		return err
	}

	if err := us.repo.AuthToken.RevokeAllForUser(ctx, id); err != nil {
		us.log.Warn("Failed to revoke tokens of deleted user",
			zap.Error(err), zap.String("user_id", userID))
	}

	return nil
}
