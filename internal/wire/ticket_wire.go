package wire

import (
	"cinema-ticketing/internal/adaptor"
	"cinema-ticketing/internal/data/entity"
	"cinema-ticketing/internal/data/repository"
	"cinema-ticketing/pkg/middleware"
	"cinema-ticketing/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func wireTicket(
	r chi.Router,
	ticketHandler *adaptor.TicketHandler,
	repo *repository.Repository,
	rdb redis.Scripter,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES ====================
	r.Route("/api/tickets", func(r chi.Router) {
		r.Use(middleware.Authenticate(repo.AuthToken, log))

		r.With(middleware.RateLimit(config.RateLimit, rdb, log)).Post("/", ticketHandler.Purchase)
		r.Get("/my", ticketHandler.GetMyTickets)
		r.Get("/{id}", ticketHandler.GetTicket)
		r.Get("/{id}/pdf", ticketHandler.DownloadPDF)
	})

	// ==================== ADMIN ROUTES ====================
	r.With(
		middleware.Authenticate(repo.AuthToken, log),
		middleware.RequireRole(log, string(entity.RoleAdmin)),
	).Delete("/api/admin/tickets/{id}", ticketHandler.DeleteTicket)
}
