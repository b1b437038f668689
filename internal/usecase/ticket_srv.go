package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cinema-ticketing/internal/booking"
	"cinema-ticketing/internal/data/entity"
	"cinema-ticketing/internal/data/repository"
	"cinema-ticketing/internal/dto/request"
	"cinema-ticketing/internal/dto/response"
	"cinema-ticketing/internal/event"
	"cinema-ticketing/pkg/ticketpdf"
	"cinema-ticketing/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrTicketForbidden  = errors.New("ticket belongs to another user")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrSellForbidden    = errors.New("only cashiers and admins can sell tickets to other users")
)

const publishTimeout = 5 * time.Second

// Actor is the authenticated caller of a ticket operation
type Actor struct {
	UserID uuid.UUID
	Role   entity.UserRole
}

func (a Actor) canSeeAll() bool {
	return a.Role.CanSellForOthers()
}

type TicketService interface {
	Purchase(ctx context.Context, actor Actor, req *request.PurchaseTicketRequest) (*response.TicketResponse, error)
	GetMyTickets(ctx context.Context, userID uuid.UUID) ([]response.TicketDetailResponse, error)
	GetTicket(ctx context.Context, actor Actor, ticketID string) (*response.TicketDetailResponse, error)
	RenderTicketPDF(ctx context.Context, actor Actor, ticketID string) ([]byte, error)
	DeleteTicket(ctx context.Context, ticketID string) error
}

type ticketService struct {
	repo        *repository.Repository
	coordinator *booking.Coordinator
	publisher   event.Publisher
	log         *zap.Logger
}

func NewTicketService(repo *repository.Repository, coordinator *booking.Coordinator, publisher event.Publisher, log *zap.Logger) TicketService {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &ticketService{
		repo:        repo,
		coordinator: coordinator,
		publisher:   publisher,
		log:         log.With(zap.String("service", "ticket")),
	}
}

// buyer resolves who the ticket is for. Viewers always buy for themselves.
func (s *ticketService) buyer(ctx context.Context, actor Actor, requested string) (uuid.UUID, error) {
	if requested == "" {
		return actor.UserID, nil
	}

	customerID, err := uuid.Parse(requested)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user id")
	}
	if customerID == actor.UserID {
		return customerID, nil
	}
	if !actor.Role.CanSellForOthers() {
		return uuid.Nil, ErrSellForbidden
	}

	customer, err := s.repo.User.FindByID(ctx, customerID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("get customer: %w", err)
	}
	if customer == nil {
		return uuid.Nil, ErrCustomerNotFound
	}
	return customerID, nil
}

func (s *ticketService) Purchase(ctx context.Context, actor Actor, req *request.PurchaseTicketRequest) (*response.TicketResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid session id")
	}

	buyerID, err := s.buyer(ctx, actor, req.UserID)
	if err != nil {
		return nil, err
	}

	ticket, err := s.coordinator.Purchase(ctx, booking.PurchaseRequest{
		SessionID: sessionID,
		UserID:    buyerID,
		Seat:      req.SeatNumber,
	})
	if err != nil {
		return nil, err
	}

	go s.publishPurchased(ticket, actor.UserID)

	resp := response.TicketToResponse(ticket)
	return &resp, nil
}

// publishPurchased runs detached from the request; a lost event never fails a sale
func (s *ticketService) publishPurchased(ticket *entity.Ticket, soldBy uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	ev := event.TicketPurchased{
		TicketID:    ticket.ID,
		SessionID:   ticket.SessionID,
		UserID:      ticket.UserID,
		SoldBy:      soldBy,
		Seat:        ticket.SeatNumber,
		PurchasedAt: ticket.PurchaseTime,
	}
	if err := s.publisher.PublishTicketPurchased(ctx, ev); err != nil {
		s.log.Warn("Failed to publish ticket purchased event",
			zap.Error(err),
			zap.String("ticket_id", ticket.ID.String()))
	}
}

func (s *ticketService) GetMyTickets(ctx context.Context, userID uuid.UUID) ([]response.TicketDetailResponse, error) {
	tickets, err := s.repo.Ticket.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user tickets: %w", err)
	}

	data := make([]response.TicketDetailResponse, len(tickets))
	for i, ticket := range tickets {
		data[i] = response.TicketDetailToResponse(ticket)
	}
	return data, nil
}

func (s *ticketService) visibleTicket(ctx context.Context, actor Actor, ticketID string) (*entity.TicketDetail, error) {
	id, err := uuid.Parse(ticketID)
	if err != nil {
		return nil, fmt.Errorf("invalid ticket id")
	}

	ticket, err := s.repo.Ticket.FindDetailByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	if ticket == nil {
		return nil, ErrTicketNotFound
	}
	if ticket.UserID != actor.UserID && !actor.canSeeAll() {
		return nil, ErrTicketForbidden
	}
	return ticket, nil
}

func (s *ticketService) GetTicket(ctx context.Context, actor Actor, ticketID string) (*response.TicketDetailResponse, error) {
	ticket, err := s.visibleTicket(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}

	resp := response.TicketDetailToResponse(ticket)
	return &resp, nil
}

func (s *ticketService) RenderTicketPDF(ctx context.Context, actor Actor, ticketID string) ([]byte, error) {
	ticket, err := s.visibleTicket(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}

	holder := ticket.UserID.String()
	user, err := s.repo.User.FindByID(ctx, ticket.UserID)
	if err != nil {
		return nil, fmt.Errorf("get ticket holder: %w", err)
	}
	if user != nil {
		holder = user.Username
	}

	pdf, err := ticketpdf.Render(ticket, holder, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("render ticket %s: %w", ticket.ID.String(), err)
	}
	return pdf, nil
}

func (s *ticketService) DeleteTicket(ctx context.Context, ticketID string) error {
	id, err := uuid.Parse(ticketID)
	if err != nil {
		return fmt.Errorf("invalid ticket id")
	}

	ticket, err := s.repo.Ticket.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get ticket: %w", err)
	}
	if ticket == nil {
		return ErrTicketNotFound
	}

	if err := s.repo.Ticket.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete ticket: %w", err)
	}

	s.log.Info("Ticket deleted",
		zap.String("ticket_id", id.String()),
		zap.String("session_id", ticket.SessionID.String()),
		zap.String("seat", ticket.SeatNumber))
	return nil
}
