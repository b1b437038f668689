package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cinema-ticketing/internal/data/entity"
	"cinema-ticketing/internal/data/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TicketStore is the persistence the ledger needs. repository.TicketRepository satisfies it.
type TicketStore interface {
	Create(ctx context.Context, ticket *entity.Ticket) error
	CreateWithinCapacity(ctx context.Context, ticket *entity.Ticket) error
	CountBySessionID(ctx context.Context, sessionID uuid.UUID) (int, error)
}

// Ledger is the record of sold seats. The storage layer arbitrates concurrent
// reservations of the same seat; the ledger holds no locks of its own.
type Ledger struct {
	store  TicketStore
	strict bool
	now    func() time.Time
	log    *zap.Logger
}

// NewLedger returns a ledger over store. With strict set, every reservation
// re-checks hall capacity inside the insert transaction.
func NewLedger(store TicketStore, strict bool, log *zap.Logger) *Ledger {
	return &Ledger{
		store:  store,
		strict: strict,
		now:    time.Now,
		log:    log.With(zap.String("component", "ledger")),
	}
}

// Reserve records seat in sessionID for userID. Of any number of concurrent
// calls for the same session and seat exactly one succeeds; the rest get
// ErrSeatTaken. A failed call writes nothing.
func (l *Ledger) Reserve(ctx context.Context, sessionID, userID uuid.UUID, seat string) (*entity.Ticket, error) {
	ticket := &entity.Ticket{
		ID:           uuid.New(),
		SessionID:    sessionID,
		UserID:       userID,
		SeatNumber:   seat,
		PurchaseTime: l.now().UTC(),
	}

	var err error
	if l.strict {
		err = l.store.CreateWithinCapacity(ctx, ticket)
	} else {
		err = l.store.Create(ctx, ticket)
	}
	if err != nil {
		return nil, l.translate(sessionID, seat, err)
	}

	return ticket, nil
}

func (l *Ledger) translate(sessionID uuid.UUID, seat string, err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("seat %s in session %s: %w", seat, sessionID.String(), ErrSeatTaken)
	case errors.Is(err, repository.ErrCapacityReached):
		return fmt.Errorf("session %s: %w", sessionID.String(), ErrSessionFull)
	case errors.Is(err, repository.ErrMissingReference):
		if name := repository.ConstraintName(err); name == "" || name == repository.SessionFKConstraint {
			return fmt.Errorf("session %s: %w", sessionID.String(), ErrSessionNotFound)
		}
	}

	l.log.Error("Seat reservation failed",
		zap.Error(err),
		zap.String("session_id", sessionID.String()),
		zap.String("seat", seat),
	)
	return storageFailure("reserve seat", err)
}

// CountForSession returns the number of committed tickets for the session.
// The value may be stale by the time the caller uses it.
func (l *Ledger) CountForSession(ctx context.Context, sessionID uuid.UUID) (int, error) {
	count, err := l.store.CountBySessionID(ctx, sessionID)
	if err != nil {
		return 0, storageFailure("count tickets", err)
	}
	return count, nil
}
