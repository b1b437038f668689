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

type HallRepository interface {
	Create(ctx context.Context, hall *entity.Hall) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Hall, error)
	FindAll(ctx context.Context) ([]*entity.Hall, error)
}

type hallRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewHallRepository(db database.PgxIface, log *zap.Logger) HallRepository {
	return &hallRepository{
		db:  db,
		log: log.With(zap.String("repository", "hall")),
	}
}

func (r *hallRepository) Create(ctx context.Context, hall *entity.Hall) error {
	query := `
		INSERT INTO halls (id, name, capacity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(ctx, query,
		hall.ID,
		hall.Name,
		hall.Capacity,
		hall.CreatedAt,
		hall.UpdatedAt,
	)

	if err != nil {
		err = classifyPgError(err)
		if !errors.Is(err, ErrDuplicate) {
			r.log.Error("Failed to create hall",
				zap.Error(err),
				zap.String("name", hall.Name),
			)
		}
		return fmt.Errorf("create hall %q: %w", hall.Name, err)
	}

	return nil
}

func (r *hallRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Hall, error) {
	query := `
		SELECT id, name, capacity, created_at, updated_at
		FROM halls
		WHERE id = $1
	`

	var hall entity.Hall
	err := r.db.QueryRow(ctx, query, id).Scan(
		&hall.ID,
		&hall.Name,
		&hall.Capacity,
		&hall.CreatedAt,
		&hall.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find hall by ID",
			zap.Error(err),
			zap.String("hall_id", id.String()),
		)
		return nil, fmt.Errorf("find hall by ID %s: %w", id.String(), err)
	}

	return &hall, nil
}

func (r *hallRepository) FindAll(ctx context.Context) ([]*entity.Hall, error) {
	query := `
		SELECT id, name, capacity, created_at, updated_at
		FROM halls
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to find halls", zap.Error(err))
		return nil, fmt.Errorf("find halls: %w", err)
	}
	defer rows.Close()

	var halls []*entity.Hall
	for rows.Next() {
		var hall entity.Hall
		if err := rows.Scan(&hall.ID, &hall.Name, &hall.Capacity, &hall.CreatedAt, &hall.UpdatedAt); err != nil {
			r.log.Error("Failed to scan hall row", zap.Error(err))
			return nil, fmt.Errorf("scan hall: %w", err)
		}
		halls = append(halls, &hall)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hall rows: %w", err)
	}

	return halls, nil
}
