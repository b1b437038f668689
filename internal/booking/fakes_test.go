package booking

import (
	"context"
	"errors"
	"sync"

	"cinema-ticketing/internal/data/entity"
	"cinema-ticketing/internal/data/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// memStore behaves like the tickets table: the mutex stands in for the
// unique index and the session row lock.
type memStore struct {
	mu       sync.Mutex
	tickets  map[uuid.UUID][]*entity.Ticket
	sessions map[uuid.UUID]*entity.Session
	halls    map[uuid.UUID]*entity.Hall

	countErr  error
	createErr error

	// overCap counts inserts that landed while the session was already at
	// capacity, i.e. reserves that raced past a stale capacity read.
	overCap int
	// beforeCreate runs ahead of each Create, outside the lock.
	beforeCreate func()
}

func newMemStore() *memStore {
	return &memStore{
		tickets:  make(map[uuid.UUID][]*entity.Ticket),
		sessions: make(map[uuid.UUID]*entity.Session),
		halls:    make(map[uuid.UUID]*entity.Hall),
	}
}

func (m *memStore) addSession(capacity int) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()

	hall := &entity.Hall{Name: "Hall", Capacity: capacity}
	hall.ID = uuid.New()
	m.halls[hall.ID] = hall

	session := &entity.Session{MovieID: uuid.New(), HallID: hall.ID, Price: 400}
	session.ID = uuid.New()
	m.sessions[session.ID] = session
	return session.ID
}

func (m *memStore) removeSession(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	delete(m.tickets, id)
}

func (m *memStore) dropHalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.halls = make(map[uuid.UUID]*entity.Hall)
}

func (m *memStore) insertLocked(ticket *entity.Ticket) error {
	if _, ok := m.sessions[ticket.SessionID]; !ok {
		return &repository.ConstraintError{
			Kind:       repository.ErrMissingReference,
			Constraint: repository.SessionFKConstraint,
			Err:        &pgconn.PgError{Code: "23503", ConstraintName: repository.SessionFKConstraint},
		}
	}
	for _, t := range m.tickets[ticket.SessionID] {
		if t.SeatNumber == ticket.SeatNumber {
			return &repository.ConstraintError{
				Kind:       repository.ErrDuplicate,
				Constraint: repository.SeatConstraint,
				Err:        &pgconn.PgError{Code: "23505", ConstraintName: repository.SeatConstraint},
			}
		}
	}
	copied := *ticket
	m.tickets[ticket.SessionID] = append(m.tickets[ticket.SessionID], &copied)
	return nil
}

func (m *memStore) Create(ctx context.Context, ticket *entity.Ticket) error {
	if m.beforeCreate != nil {
		m.beforeCreate()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	atCapacity := m.atCapacityLocked(ticket.SessionID)
	if err := m.insertLocked(ticket); err != nil {
		return err
	}
	if atCapacity {
		m.overCap++
	}
	return nil
}

func (m *memStore) atCapacityLocked(sessionID uuid.UUID) bool {
	session, ok := m.sessions[sessionID]
	if !ok {
		return false
	}
	hall, ok := m.halls[session.HallID]
	return ok && len(m.tickets[sessionID]) >= hall.Capacity
}

func (m *memStore) overlap() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.overCap
}

func (m *memStore) CreateWithinCapacity(ctx context.Context, ticket *entity.Ticket) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if m.atCapacityLocked(ticket.SessionID) {
		return repository.ErrCapacityReached
	}
	return m.insertLocked(ticket)
}

func (m *memStore) CountBySessionID(ctx context.Context, sessionID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countErr != nil {
		return 0, m.countErr
	}
	return len(m.tickets[sessionID]), nil
}

func (m *memStore) sold(sessionID uuid.UUID) []*entity.Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*entity.Ticket(nil), m.tickets[sessionID]...)
}

type sessionLookup struct{ m *memStore }

func (s sessionLookup) FindByID(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return s.m.sessions[id], nil
}

type hallLookup struct {
	m   *memStore
	err error
}

func (h hallLookup) FindByID(ctx context.Context, id uuid.UUID) (*entity.Hall, error) {
	if h.err != nil {
		return nil, h.err
	}
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	return h.m.halls[id], nil
}

var errConnReset = errors.New("connection reset by peer")
