package booking

import (
	"context"
	"fmt"

	"cinema-ticketing/internal/data/entity"

	"github.com/google/uuid"
)

type SessionLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Session, error)
}

type HallLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Hall, error)
}

// Availability is a point-in-time view of a session's seats
type Availability struct {
	SessionID uuid.UUID
	Capacity  int
	Sold      int
	Remaining int
}

// CapacityOracle answers whether a session still has room. Its answers are
// advisory: they are computed from a count that concurrent purchases can
// invalidate immediately.
type CapacityOracle struct {
	sessions SessionLookup
	halls    HallLookup
	ledger   *Ledger
}

func NewCapacityOracle(sessions SessionLookup, halls HallLookup, ledger *Ledger) *CapacityOracle {
	return &CapacityOracle{
		sessions: sessions,
		halls:    halls,
		ledger:   ledger,
	}
}

func (o *CapacityOracle) HasCapacity(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	avail, err := o.Availability(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return avail.Remaining > 0, nil
}

func (o *CapacityOracle) Availability(ctx context.Context, sessionID uuid.UUID) (Availability, error) {
	session, err := o.session(ctx, sessionID)
	if err != nil {
		return Availability{}, err
	}
	return o.availabilityOf(ctx, session)
}

func (o *CapacityOracle) session(ctx context.Context, sessionID uuid.UUID) (*entity.Session, error) {
	session, err := o.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, storageFailure("find session", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session %s: %w", sessionID.String(), ErrSessionNotFound)
	}
	return session, nil
}

func (o *CapacityOracle) availabilityOf(ctx context.Context, session *entity.Session) (Availability, error) {
	hall, err := o.halls.FindByID(ctx, session.HallID)
	if err != nil {
		return Availability{}, storageFailure("find hall", err)
	}
	if hall == nil {
		return Availability{}, fmt.Errorf("hall %s of session %s: %w",
			session.HallID.String(), session.ID.String(), ErrHallNotFound)
	}

	sold, err := o.ledger.CountForSession(ctx, session.ID)
	if err != nil {
		return Availability{}, err
	}

	return Availability{
		SessionID: session.ID,
		Capacity:  hall.Capacity,
		Sold:      sold,
		Remaining: max(hall.Capacity-sold, 0),
	}, nil
}
