package adaptor

import (
	"cinema-ticketing/internal/usecase"
	"cinema-ticketing/pkg/database"

	"go.uber.org/zap"
)

type Handler struct {
	Auth    *AuthHandler
	User    *UserHandler
	Movie   *MovieHandler
	Hall    *HallHandler
	Session *SessionHandler
	Ticket  *TicketHandler
	Review  *ReviewHandler
	Health  *HealthHandler
}

func NewHandler(service *usecase.Service, db database.PgxIface, log *zap.Logger) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(service.Auth, log),
		User:    NewUserHandler(service.User, log),
		Movie:   NewMovieHandler(service.Movie, log),
		Hall:    NewHallHandler(service.Hall, log),
		Session: NewSessionHandler(service.Session, log),
		Ticket:  NewTicketHandler(service.Ticket, log),
		Review:  NewReviewHandler(service.Review, log),
		Health:  NewHealthHandler(db, log),
	}
}
