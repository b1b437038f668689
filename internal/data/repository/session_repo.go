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

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Session, error)
	FindAll(ctx context.Context, offset, limit int) ([]*entity.Session, error)
	CountAll(ctx context.Context) (int64, error)
	Update(ctx context.Context, session *entity.Session) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type sessionRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSessionRepository(db database.PgxIface, log *zap.Logger) SessionRepository {
	return &sessionRepository{
		db:  db,
		log: log.With(zap.String("repository", "session")),
	}
}

func (r *sessionRepository) Create(ctx context.Context, session *entity.Session) error {
	query := `
		INSERT INTO sessions (id, movie_id, hall_id, start_time, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		session.ID,
		session.MovieID,
		session.HallID,
		session.StartTime,
		session.Price,
		session.CreatedAt,
		session.UpdatedAt,
	)

	if err != nil {
		err = classifyPgError(err)
		r.log.Error("Failed to create session",
			zap.Error(err),
			zap.String("movie_id", session.MovieID.String()),
			zap.String("hall_id", session.HallID.String()),
			zap.Time("start_time", session.StartTime),
		)
		return fmt.Errorf("create session for movie %s hall %s: %w",
			session.MovieID.String(), session.HallID.String(), err)
	}

	return nil
}

func (r *sessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	query := `
		SELECT id, movie_id, hall_id, start_time, price, created_at, updated_at
		FROM sessions
		WHERE id = $1
	`

	var session entity.Session
	err := r.db.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&session.MovieID,
		&session.HallID,
		&session.StartTime,
		&session.Price,
		&session.CreatedAt,
		&session.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find session by ID",
			zap.Error(err),
			zap.String("session_id", id.String()),
		)
		return nil, fmt.Errorf("find session by ID %s: %w", id.String(), err)
	}

	return &session, nil
}

func (r *sessionRepository) FindAll(ctx context.Context, offset, limit int) ([]*entity.Session, error) {
	query := `
		SELECT id, movie_id, hall_id, start_time, price, created_at, updated_at
		FROM sessions
		ORDER BY start_time
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to find sessions",
			zap.Error(err),
			zap.Int("offset", offset),
			zap.Int("limit", limit),
		)
		return nil, fmt.Errorf("find sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*entity.Session
	for rows.Next() {
		var session entity.Session
		err := rows.Scan(
			&session.ID,
			&session.MovieID,
			&session.HallID,
			&session.StartTime,
			&session.Price,
			&session.CreatedAt,
			&session.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan session row", zap.Error(err))
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, &session)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate session rows: %w", err)
	}

	return sessions, nil
}

func (r *sessionRepository) CountAll(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&total); err != nil {
		r.log.Error("Failed to count sessions", zap.Error(err))
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return total, nil
}

func (r *sessionRepository) Update(ctx context.Context, session *entity.Session) error {
	query := `
		UPDATE sessions
		SET movie_id = $2, hall_id = $3, start_time = $4, price = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		session.ID,
		session.MovieID,
		session.HallID,
		session.StartTime,
		session.Price,
		session.UpdatedAt,
	)

	if err != nil {
		err = classifyPgError(err)
		r.log.Error("Failed to update session",
			zap.Error(err),
			zap.String("session_id", session.ID.String()),
		)
		return fmt.Errorf("update session %s: %w", session.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("session %s not found", session.ID.String())
	}

	return nil
}

// Delete removes the session; its tickets go with it (ON DELETE CASCADE)
func (r *sessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete session",
			zap.Error(err),
			zap.String("session_id", id.String()),
		)
		return fmt.Errorf("delete session %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("session %s not found", id.String())
	}

	r.log.Info("Session deleted", zap.String("session_id", id.String()))
	return nil
}
