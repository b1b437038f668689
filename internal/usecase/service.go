package usecase

import (
	"cinema-ticketing/internal/booking"
	"cinema-ticketing/internal/data/repository"
	"cinema-ticketing/internal/event"
	"cinema-ticketing/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth    AuthService
	User    UserService
	Movie   MovieService
	Hall    HallService
	Session SessionService
	Ticket  TicketService
	Review  ReviewService
}

func NewService(repo *repository.Repository, config *utils.Config, publisher event.Publisher, log *zap.Logger) *Service {
	ledger := booking.NewLedger(repo.Ticket, config.Booking.StrictCapacity, log)
	oracle := booking.NewCapacityOracle(repo.Session, repo.Hall, ledger)
	coordinator := booking.NewCoordinator(oracle, ledger, log)

	return &Service{
		Auth:    NewAuthService(repo, config, log),
		User:    NewUserService(repo, config, log),
		Movie:   NewMovieService(repo, log),
		Hall:    NewHallService(repo, log),
		Session: NewSessionService(repo, oracle, log),
		Ticket:  NewTicketService(repo, coordinator, publisher, log),
		Review:  NewReviewService(repo, log),
	}
}
