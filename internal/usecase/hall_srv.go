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

type HallService interface {
	GetHalls(ctx context.Context) ([]response.HallResponse, error)
	GetHallByID(ctx context.Context, hallID string) (*response.HallResponse, error)
	CreateHall(ctx context.Context, req *request.HallRequest) (*response.HallResponse, error)
}

type hallService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewHallService(repo *repository.Repository, log *zap.Logger) HallService {
	return &hallService{
		repo: repo,
		log:  log.With(zap.String("service", "hall")),
	}
}

func (s *hallService) GetHalls(ctx context.Context) ([]response.HallResponse, error) {
	halls, err := s.repo.Hall.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get halls: %w", err)
	}

	data := make([]response.HallResponse, len(halls))
	for i, hall := range halls {
		data[i] = response.HallToResponse(hall)
	}
	return data, nil
}

func (s *hallService) GetHallByID(ctx context.Context, hallID string) (*response.HallResponse, error) {
	id, err := uuid.Parse(hallID)
	if err != nil {
		return nil, fmt.Errorf("invalid hall id")
	}

	hall, err := s.repo.Hall.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get hall: %w", err)
	}
	if hall == nil {
		return nil, fmt.Errorf("hall not found")
	}

	resp := response.HallToResponse(hall)
	return &resp, nil
}

func (s *hallService) CreateHall(ctx context.Context, req *request.HallRequest) (*response.HallResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	now := time.Now()
	hall := &entity.Hall{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:     strings.TrimSpace(req.Name),
		Capacity: req.Capacity,
	}

	if err := s.repo.Hall.Create(ctx, hall); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("hall %q already exists", hall.Name)
		}
		return nil, fmt.Errorf("create hall: %w", err)
	}

	s.log.Info("Hall created",
		zap.String("hall_id", hall.ID.String()),
		zap.Int("capacity", hall.Capacity))

	resp := response.HallToResponse(hall)
	return &resp, nil
}
