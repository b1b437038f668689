package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cinema-ticketing/internal/data/entity"
	"cinema-ticketing/internal/data/repository"
	"cinema-ticketing/internal/dto/request"
	"cinema-ticketing/internal/dto/response"
	"cinema-ticketing/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReviewService interface {
	GetMovieReviews(ctx context.Context, movieID string) ([]response.ReviewResponse, error)
	CreateReview(ctx context.Context, userID uuid.UUID, req *request.CreateReviewRequest) (*response.ReviewResponse, error)
}

type reviewService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewReviewService(repo *repository.Repository, log *zap.Logger) ReviewService {
	return &reviewService{
		repo: repo,
		log:  log.With(zap.String("service", "review")),
	}
}

func (s *reviewService) GetMovieReviews(ctx context.Context, movieID string) ([]response.ReviewResponse, error) {
	id, err := uuid.Parse(movieID)
	if err != nil {
		return nil, fmt.Errorf("invalid movie id")
	}

	movie, err := s.repo.Movie.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get movie: %w", err)
	}
	if movie == nil {
		return nil, fmt.Errorf("movie not found")
	}

	reviews, err := s.repo.Review.FindByMovieID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get reviews: %w", err)
	}

	data := make([]response.ReviewResponse, len(reviews))
	for i, review := range reviews {
		data[i] = response.ReviewToResponse(review)
	}
	return data, nil
}

func (s *reviewService) CreateReview(ctx context.Context, userID uuid.UUID, req *request.CreateReviewRequest) (*response.ReviewResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	movieID, _ := uuid.Parse(req.MovieID)
	movie, err := s.repo.Movie.FindByID(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("get movie: %w", err)
	}
	if movie == nil {
		return nil, fmt.Errorf("movie not found")
	}

	review := &entity.Review{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		UserID:  userID,
		MovieID: movieID,
		Rating:  req.Rating,
		Comment: req.Comment,
	}

	if err := s.repo.Review.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("user already reviewed this movie")
		}
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.log.Info("Review created",
		zap.String("review_id", review.ID.String()),
		zap.String("movie_id", movieID.String()),
		zap.Int("rating", review.Rating))

	resp := response.ReviewToResponse(review)
	return &resp, nil
}
