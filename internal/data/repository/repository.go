package repository

import (
	"cinema-ticketing/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User      UserRepository
	AuthToken AuthTokenRepository
	Movie     MovieRepository
	Hall      HallRepository
	Session   SessionRepository
	Ticket    TicketRepository
	Review    ReviewRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:      NewUserRepository(db, log),
		AuthToken: NewAuthTokenRepository(db, log),
		Movie:     NewMovieRepository(db, log),
		Hall:      NewHallRepository(db, log),
		Session:   NewSessionRepository(db, log),
		Ticket:    NewTicketRepository(db, log),
		Review:    NewReviewRepository(db, log),
	}
}
