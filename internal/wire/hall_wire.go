package wire

import (
	"cinema-ticketing/internal/adaptor"
	"cinema-ticketing/internal/data/entity"
	"cinema-ticketing/internal/data/repository"
	"cinema-ticketing/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireHall(
	r chi.Router,
	hallHandler *adaptor.HallHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	r.Get("/api/halls", hallHandler.GetHalls)
	r.Get("/api/halls/{id}", hallHandler.GetHallByID)

	r.With(
		middleware.Authenticate(repo.AuthToken, log),
		middleware.RequireRole(log, string(entity.RoleAdmin)),
	).Post("/api/admin/halls", hallHandler.CreateHall)
}
