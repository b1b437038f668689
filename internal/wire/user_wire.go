package wire

import (
	"cinema-ticketing/internal/adaptor"
	"cinema-ticketing/internal/data/entity"
	"cinema-ticketing/internal/data/repository"
	"cinema-ticketing/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireUser(
	r chi.Router,
	userHandler *adaptor.UserHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	r.With(middleware.Authenticate(repo.AuthToken, log)).Get("/api/user/profile", userHandler.GetProfile)

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/users", func(r chi.Router) {
		r.Use(middleware.Authenticate(repo.AuthToken, log))
		r.Use(middleware.RequireRole(log, string(entity.RoleAdmin)))

		r.Get("/", userHandler.GetAllUsers)
		r.Post("/", userHandler.CreateUser)
		r.Delete("/{id}", userHandler.DeleteUser)
	})
}
