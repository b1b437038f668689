package wire

import (
	"cinema-ticketing/internal/adaptor"
	"cinema-ticketing/internal/data/entity"
	"cinema-ticketing/internal/data/repository"
	"cinema-ticketing/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireSession(
	r chi.Router,
	sessionHandler *adaptor.SessionHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	r.Route("/api/sessions", func(r chi.Router) {
		// ==================== PUBLIC ROUTES ====================
		r.Get("/", sessionHandler.GetSessions)
		r.Get("/{id}", sessionHandler.GetSessionByID)
		r.Get("/{id}/availability", sessionHandler.GetAvailability)

		// ==================== STAFF ROUTES ====================
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(repo.AuthToken, log))
			r.Use(middleware.RequireRole(log, string(entity.RoleAdmin), string(entity.RoleCashier)))

			r.Post("/", sessionHandler.CreateSession)
			r.Put("/{id}", sessionHandler.UpdateSession)
			r.Delete("/{id}", sessionHandler.DeleteSession)
		})
	})
}
