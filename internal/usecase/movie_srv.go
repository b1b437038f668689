package usecase

import (
	"context"
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

type MovieService interface {
	GetMovies(ctx context.Context, req *request.MovieListRequest) (*response.PaginatedResponse[response.MovieResponse], error)
	GetMovieByID(ctx context.Context, movieID string) (*response.MovieResponse, error)
	CreateMovie(ctx context.Context, req *request.MovieRequest) (*response.MovieResponse, error)
	UpdateMovie(ctx context.Context, movieID string, req *request.MovieUpdateRequest) (*response.MovieResponse, error)
	DeleteMovie(ctx context.Context, movieID string) error
}

type movieService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewMovieService(repo *repository.Repository, log *zap.Logger) MovieService {
	return &movieService{
		repo: repo,
		log:  log.With(zap.String("service", "movie")),
	}
}

func (s *movieService) GetMovies(ctx context.Context, req *request.MovieListRequest) (*response.PaginatedResponse[response.MovieResponse], error) {
	req.Page, req.PerPage = utils.NormalizePagination(req.Page, req.PerPage)
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	filter := repository.MovieFilter{
		Genre:     strings.TrimSpace(req.Genre),
		MinRating: req.MinRating,
	}

	movies, err := s.repo.Movie.FindAll(ctx, req.Offset(), req.Limit(), filter)
	if err != nil {
		return nil, fmt.Errorf("get movies: %w", err)
	}

	total, err := s.repo.Movie.CountAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count movies: %w", err)
	}

	data := make([]response.MovieResponse, len(movies))
	for i, movie := range movies {
		data[i] = response.MovieToResponse(movie)
	}

	return response.NewPaginatedResponse(data, req.Page, req.PerPage, total), nil
}

func (s *movieService) findMovie(ctx context.Context, movieID string) (*entity.Movie, error) {
	id, err := uuid.Parse(movieID)
	if err != nil {
		return nil, fmt.Errorf("invalid movie id")
	}

	movie, err := s.repo.Movie.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get movie by id: %w", err)
	}
	if movie == nil {
		return nil, fmt.Errorf("movie not found")
	}
	return movie, nil
}

func (s *movieService) GetMovieByID(ctx context.Context, movieID string) (*response.MovieResponse, error) {
	movie, err := s.findMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}

	resp := response.MovieToResponse(movie)
	return &resp, nil
}

func (s *movieService) CreateMovie(ctx context.Context, req *request.MovieRequest) (*response.MovieResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	now := time.Now()
	movie := &entity.Movie{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Title:       strings.TrimSpace(req.Title),
		Genre:       strings.TrimSpace(req.Genre),
		Duration:    req.Duration,
		Rating:      req.Rating,
		Description: req.Description,
	}

	if err := s.repo.Movie.Create(ctx, movie); err != nil {
		return nil, fmt.Errorf("create movie: %w", err)
	}

	s.log.Info("Movie created",
		zap.String("movie_id", movie.ID.String()),
		zap.String("title", movie.Title))

	resp := response.MovieToResponse(movie)
	return &resp, nil
}

func (s *movieService) UpdateMovie(ctx context.Context, movieID string, req *request.MovieUpdateRequest) (*response.MovieResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	movie, err := s.findMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		movie.Title = strings.TrimSpace(*req.Title)
	}
	if req.Genre != nil {
		movie.Genre = strings.TrimSpace(*req.Genre)
	}
	if req.Duration != nil {
		movie.Duration = *req.Duration
	}
	if req.Rating != nil {
		movie.Rating = *req.Rating
	}
	if req.Description != nil {
		movie.Description = *req.Description
	}
	movie.UpdatedAt = time.Now()

	if err := s.repo.Movie.Update(ctx, movie); err != nil {
		return nil, fmt.Errorf("update movie: %w", err)
	}

	resp := response.MovieToResponse(movie)
	return &resp, nil
}

func (s *movieService) DeleteMovie(ctx context.Context, movieID string) error {
	id, err := uuid.Parse(movieID)
	if err != nil {
		return fmt.Errorf("invalid movie id")
	}

	if err := s.repo.Movie.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete movie: %w", err)
	}
	return nil
}
