package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cinema-ticketing/internal/booking"
	"cinema-ticketing/internal/data/entity"
	"cinema-ticketing/internal/data/repository"
	"cinema-ticketing/internal/dto/request"
	"cinema-ticketing/internal/dto/response"
	"cinema-ticketing/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SessionService interface {
	GetSessions(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.SessionResponse], error)
	GetSessionByID(ctx context.Context, sessionID string) (*response.SessionResponse, error)
	GetAvailability(ctx context.Context, sessionID string) (*response.AvailabilityResponse, error)
	CreateSession(ctx context.Context, req *request.SessionRequest) (*response.SessionResponse, error)
	UpdateSession(ctx context.Context, sessionID string, req *request.SessionUpdateRequest) (*response.SessionResponse, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

type sessionService struct {
	repo   *repository.Repository
	oracle *booking.CapacityOracle
	log    *zap.Logger
}

func NewSessionService(repo *repository.Repository, oracle *booking.CapacityOracle, log *zap.Logger) SessionService {
	return &sessionService{
		repo:   repo,
		oracle: oracle,
		log:    log.With(zap.String("service", "session")),
	}
}

func (s *sessionService) GetSessions(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.SessionResponse], error) {
	req.Page, req.PerPage = utils.NormalizePagination(req.Page, req.PerPage)

	sessions, err := s.repo.Session.FindAll(ctx, req.Offset(), req.Limit())
	if err != nil {
		return nil, fmt.Errorf("get sessions: %w", err)
	}

	total, err := s.repo.Session.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}

	data := make([]response.SessionResponse, len(sessions))
	for i, session := range sessions {
		data[i] = response.SessionToResponse(session)
	}

	return response.NewPaginatedResponse(data, req.Page, req.PerPage, total), nil
}

func (s *sessionService) findSession(ctx context.Context, sessionID string) (*entity.Session, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid session id")
	}

	session, err := s.repo.Session.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session not found")
	}
	return session, nil
}

func (s *sessionService) GetSessionByID(ctx context.Context, sessionID string) (*response.SessionResponse, error) {
	session, err := s.findSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	resp := response.SessionToResponse(session)
	return &resp, nil
}

func (s *sessionService) GetAvailability(ctx context.Context, sessionID string) (*response.AvailabilityResponse, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid session id")
	}

	avail, err := s.oracle.Availability(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := response.AvailabilityToResponse(avail)
	return &resp, nil
}

// checkReferences makes sure the movie and hall a session points at exist
func (s *sessionService) checkReferences(ctx context.Context, movieID, hallID uuid.UUID) error {
	movie, err := s.repo.Movie.FindByID(ctx, movieID)
	if err != nil {
		return fmt.Errorf("get movie: %w", err)
	}
	if movie == nil {
		return fmt.Errorf("movie not found")
	}

	hall, err := s.repo.Hall.FindByID(ctx, hallID)
	if err != nil {
		return fmt.Errorf("get hall: %w", err)
	}
	if hall == nil {
		return fmt.Errorf("hall not found")
	}
	return nil
}

func (s *sessionService) CreateSession(ctx context.Context, req *request.SessionRequest) (*response.SessionResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	movieID, _ := uuid.Parse(req.MovieID)
	hallID, _ := uuid.Parse(req.HallID)
	if err := s.checkReferences(ctx, movieID, hallID); err != nil {
		return nil, err
	}

	now := time.Now()
	session := &entity.Session{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		MovieID:   movieID,
		HallID:    hallID,
		StartTime: req.StartTime.UTC(),
		Price:     req.Price,
	}

	if err := s.repo.Session.Create(ctx, session); err != nil {
		if errors.Is(err, repository.ErrMissingReference) {
			return nil, fmt.Errorf("movie or hall not found")
		}
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.log.Info("Session created",
		zap.String("session_id", session.ID.String()),
		zap.String("movie_id", movieID.String()),
		zap.String("hall_id", hallID.String()),
		zap.Time("start_time", session.StartTime))

	resp := response.SessionToResponse(session)
	return &resp, nil
}

func (s *sessionService) UpdateSession(ctx context.Context, sessionID string, req *request.SessionUpdateRequest) (*response.SessionResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	session, err := s.findSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if req.MovieID != nil {
		session.MovieID, _ = uuid.Parse(*req.MovieID)
	}
	if req.HallID != nil {
		session.HallID, _ = uuid.Parse(*req.HallID)
	}
	if req.StartTime != nil {
		session.StartTime = req.StartTime.UTC()
	}
	if req.Price != nil {
		session.Price = *req.Price
	}

	if req.MovieID != nil || req.HallID != nil {
		if err := s.checkReferences(ctx, session.MovieID, session.HallID); err != nil {
			return nil, err
		}
	}
	session.UpdatedAt = time.Now()

	if err := s.repo.Session.Update(ctx, session); err != nil {
		if errors.Is(err, repository.ErrMissingReference) {
			return nil, fmt.Errorf("movie or hall not found")
		}
		return nil, fmt.Errorf("update session: %w", err)
	}

	resp := response.SessionToResponse(session)
	return &resp, nil
}

// DeleteSession also removes every ticket sold for it
func (s *sessionService) DeleteSession(ctx context.Context, sessionID string) error {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return fmt.Errorf("invalid session id")
	}

	if err := s.repo.Session.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
