package wire

import (
	"cinema-ticketing/internal/adaptor"
	"cinema-ticketing/internal/data/repository"
	"cinema-ticketing/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireReview(
	r chi.Router,
	reviewHandler *adaptor.ReviewHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	r.Get("/api/movies/{id}/reviews", reviewHandler.GetMovieReviews)

	r.With(middleware.Authenticate(repo.AuthToken, log)).Post("/api/reviews", reviewHandler.CreateReview)
}
