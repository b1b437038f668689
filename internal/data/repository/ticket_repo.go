package repository

import (
	"context"
	"errors"
	"fmt"

	"cinema-ticketing/internal/data/entity"
	"cinema-ticketing/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const (
	// SeatConstraint guards one ticket per seat per session
	SeatConstraint = "tickets_session_seat_key"
	// SessionFKConstraint fails inserts for a session that no longer exists
	SessionFKConstraint = "tickets_session_id_fkey"
)

type TicketRepository interface {
	Create(ctx context.Context, ticket *entity.Ticket) error
	CreateWithinCapacity(ctx context.Context, ticket *entity.Ticket) error
	CountBySessionID(ctx context.Context, sessionID uuid.UUID) (int, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Ticket, error)
	FindDetailByID(ctx context.Context, id uuid.UUID) (*entity.TicketDetail, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.TicketDetail, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ticketRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTicketRepository(db database.PgxIface, log *zap.Logger) TicketRepository {
	return &ticketRepository{
		db:  db,
		log: log.With(zap.String("repository", "ticket")),
	}
}

const insertTicketQuery = `
	INSERT INTO tickets (id, session_id, user_id, seat_number, purchase_time)
	VALUES ($1, $2, $3, $4, $5)
`

const countTicketsQuery = `SELECT COUNT(*) FROM tickets WHERE session_id = $1`

// Create is a single INSERT. The unique constraint on (session_id, seat_number)
// decides concurrent attempts for the same seat; losers get ErrDuplicate.
func (r *ticketRepository) Create(ctx context.Context, ticket *entity.Ticket) error {
	_, err := r.db.Exec(ctx, insertTicketQuery,
		ticket.ID,
		ticket.SessionID,
		ticket.UserID,
		ticket.SeatNumber,
		ticket.PurchaseTime,
	)

	if err != nil {
		return r.insertFailed(ticket, err)
	}

	return nil
}

// CreateWithinCapacity locks the session row, counts sold tickets and inserts
// in one transaction, so purchases for the same session queue on the row lock
// and the hall capacity can never be exceeded.
func (r *ticketRepository) CreateWithinCapacity(ctx context.Context, ticket *entity.Ticket) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("Failed to begin ticket transaction", zap.Error(err))
		return fmt.Errorf("begin ticket transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	lockQuery := `
		SELECT h.capacity
		FROM sessions s
		JOIN halls h ON h.id = s.hall_id
		WHERE s.id = $1
		FOR UPDATE OF s
	`

	var capacity int
	err = tx.QueryRow(ctx, lockQuery, ticket.SessionID).Scan(&capacity)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("lock session %s: %w", ticket.SessionID.String(),
			&ConstraintError{Kind: ErrMissingReference, Constraint: SessionFKConstraint, Err: err})
	}
	if err != nil {
		r.log.Error("Failed to lock session",
			zap.Error(err),
			zap.String("session_id", ticket.SessionID.String()),
		)
		return fmt.Errorf("lock session %s: %w", ticket.SessionID.String(), err)
	}

	var sold int
	if err := tx.QueryRow(ctx, countTicketsQuery, ticket.SessionID).Scan(&sold); err != nil {
		r.log.Error("Failed to count tickets in transaction",
			zap.Error(err),
			zap.String("session_id", ticket.SessionID.String()),
		)
		return fmt.Errorf("count tickets for session %s: %w", ticket.SessionID.String(), err)
	}

	if sold >= capacity {
		return fmt.Errorf("session %s sold %d of %d: %w",
			ticket.SessionID.String(), sold, capacity, ErrCapacityReached)
	}

	_, err = tx.Exec(ctx, insertTicketQuery,
		ticket.ID,
		ticket.SessionID,
		ticket.UserID,
		ticket.SeatNumber,
		ticket.PurchaseTime,
	)
	if err != nil {
		return r.insertFailed(ticket, err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.log.Error("Failed to commit ticket transaction",
			zap.Error(err),
			zap.String("session_id", ticket.SessionID.String()),
		)
		return fmt.Errorf("commit ticket for session %s: %w", ticket.SessionID.String(), err)
	}

	return nil
}

func (r *ticketRepository) insertFailed(ticket *entity.Ticket, err error) error {
	err = classifyPgError(err)
	if errors.Is(err, ErrDuplicate) || errors.Is(err, ErrMissingReference) {
		r.log.Debug("Ticket insert rejected",
			zap.Error(err),
			zap.String("session_id", ticket.SessionID.String()),
			zap.String("seat", ticket.SeatNumber),
		)
	} else {
		r.log.Error("Failed to create ticket",
			zap.Error(err),
			zap.String("session_id", ticket.SessionID.String()),
			zap.String("seat", ticket.SeatNumber),
		)
	}
	return fmt.Errorf("create ticket for session %s seat %s: %w",
		ticket.SessionID.String(), ticket.SeatNumber, err)
}

// CountBySessionID counts committed tickets. Reads are READ COMMITTED, so the
// result may already be stale when the caller acts on it.
func (r *ticketRepository) CountBySessionID(ctx context.Context, sessionID uuid.UUID) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, countTicketsQuery, sessionID).Scan(&count); err != nil {
		r.log.Error("Failed to count tickets",
			zap.Error(err),
			zap.String("session_id", sessionID.String()),
		)
		return 0, fmt.Errorf("count tickets for session %s: %w", sessionID.String(), err)
	}
	return count, nil
}

func (r *ticketRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Ticket, error) {
	query := `
		SELECT id, session_id, user_id, seat_number, purchase_time
		FROM tickets
		WHERE id = $1
	`

	var ticket entity.Ticket
	err := r.db.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.SessionID,
		&ticket.UserID,
		&ticket.SeatNumber,
		&ticket.PurchaseTime,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find ticket by ID",
			zap.Error(err),
			zap.String("ticket_id", id.String()),
		)
		return nil, fmt.Errorf("find ticket by ID %s: %w", id.String(), err)
	}

	return &ticket, nil
}

const ticketDetailSelect = `
	SELECT t.id, t.session_id, t.user_id, t.seat_number, t.purchase_time,
	       m.title, h.name, s.start_time, s.price
	FROM tickets t
	JOIN sessions s ON s.id = t.session_id
	JOIN movies m ON m.id = s.movie_id
	JOIN halls h ON h.id = s.hall_id
`

func scanTicketDetail(row pgx.Row) (*entity.TicketDetail, error) {
	var detail entity.TicketDetail
	err := row.Scan(
		&detail.ID,
		&detail.SessionID,
		&detail.UserID,
		&detail.SeatNumber,
		&detail.PurchaseTime,
		&detail.MovieTitle,
		&detail.HallName,
		&detail.StartTime,
		&detail.Price,
	)
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func (r *ticketRepository) FindDetailByID(ctx context.Context, id uuid.UUID) (*entity.TicketDetail, error) {
	detail, err := scanTicketDetail(r.db.QueryRow(ctx, ticketDetailSelect+` WHERE t.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find ticket detail",
			zap.Error(err),
			zap.String("ticket_id", id.String()),
		)
		return nil, fmt.Errorf("find ticket detail %s: %w", id.String(), err)
	}
	return detail, nil
}

func (r *ticketRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.TicketDetail, error) {
	rows, err := r.db.Query(ctx, ticketDetailSelect+` WHERE t.user_id = $1 ORDER BY s.start_time DESC`, userID)
	if err != nil {
		r.log.Error("Failed to find tickets by user",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find tickets for user %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var tickets []*entity.TicketDetail
	for rows.Next() {
		detail, err := scanTicketDetail(rows)
		if err != nil {
			r.log.Error("Failed to scan ticket row", zap.Error(err))
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		tickets = append(tickets, detail)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ticket rows: %w", err)
	}

	return tickets, nil
}

// Delete is the administrative override; tickets are otherwise immutable
func (r *ticketRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete ticket",
			zap.Error(err),
			zap.String("ticket_id", id.String()),
		)
		return fmt.Errorf("delete ticket %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("ticket %s not found", id.String())
	}

	r.log.Info("Ticket deleted", zap.String("ticket_id", id.String()))
	return nil
}
