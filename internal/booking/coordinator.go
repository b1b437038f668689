package booking

import (
	"context"
	"fmt"
	"strings"

	"cinema-ticketing/internal/data/entity"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PurchaseRequest struct {
	SessionID uuid.UUID
	UserID    uuid.UUID
	Seat      string
}

// Coordinator runs a ticket purchase: session check, capacity check, then the
// seat reservation. Only the reservation is authoritative.
type Coordinator struct {
	oracle *CapacityOracle
	ledger *Ledger
	log    *zap.Logger
}

func NewCoordinator(oracle *CapacityOracle, ledger *Ledger, log *zap.Logger) *Coordinator {
	return &Coordinator{
		oracle: oracle,
		ledger: ledger,
		log:    log.With(zap.String("component", "coordinator")),
	}
}

// Purchase sells one seat. A rejected purchase leaves no trace. ErrSeatTaken
// is returned as is; the caller decides whether to try another seat.
func (c *Coordinator) Purchase(ctx context.Context, req PurchaseRequest) (*entity.Ticket, error) {
	// Designators are opaque labels and are stored exactly as given.
	seat := req.Seat
	if strings.TrimSpace(seat) == "" {
		return nil, ErrInvalidSeat
	}

	session, err := c.oracle.session(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	avail, err := c.oracle.availabilityOf(ctx, session)
	if err != nil {
		return nil, err
	}
	if avail.Remaining == 0 {
		c.log.Info("Purchase rejected, session full",
			zap.String("session_id", session.ID.String()),
			zap.Int("capacity", avail.Capacity),
			zap.Int("sold", avail.Sold),
		)
		return nil, fmt.Errorf("session %s: %w", session.ID.String(), ErrSessionFull)
	}

	ticket, err := c.ledger.Reserve(ctx, session.ID, req.UserID, seat)
	if err != nil {
		return nil, err
	}

	c.log.Info("Ticket purchased",
		zap.String("ticket_id", ticket.ID.String()),
		zap.String("session_id", ticket.SessionID.String()),
		zap.String("user_id", ticket.UserID.String()),
		zap.String("seat", ticket.SeatNumber),
	)

	return ticket, nil
}
