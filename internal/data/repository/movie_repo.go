package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cinema-ticketing/internal/data/entity"
	"cinema-ticketing/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// MovieFilter narrows the catalogue listing. Zero values mean "no filter".
type MovieFilter struct {
	Genre     string
	MinRating *float64
}

type MovieRepository interface {
	Create(ctx context.Context, movie *entity.Movie) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Movie, error)
	FindAll(ctx context.Context, offset, limit int, filter MovieFilter) ([]*entity.Movie, error)
	CountAll(ctx context.Context, filter MovieFilter) (int64, error)
	Update(ctx context.Context, movie *entity.Movie) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type movieRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewMovieRepository(db database.PgxIface, log *zap.Logger) MovieRepository {
	return &movieRepository{
		db:  db,
		log: log.With(zap.String("repository", "movie")),
	}
}

func (r *movieRepository) Create(ctx context.Context, movie *entity.Movie) error {
	query := `
		INSERT INTO movies (id, title, genre, duration, rating, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		movie.ID,
		movie.Title,
		movie.Genre,
		movie.Duration,
		movie.Rating,
		movie.Description,
		movie.CreatedAt,
		movie.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create movie",
			zap.Error(err),
			zap.String("title", movie.Title),
		)
		return fmt.Errorf("create movie %q: %w", movie.Title, err)
	}

	return nil
}

func (r *movieRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Movie, error) {
	query := `
		SELECT id, title, genre, duration, rating, description, created_at, updated_at, deleted_at
		FROM movies
		WHERE id = $1 AND deleted_at IS NULL
	`

	var movie entity.Movie
	err := r.db.QueryRow(ctx, query, id).Scan(
		&movie.ID,
		&movie.Title,
		&movie.Genre,
		&movie.Duration,
		&movie.Rating,
		&movie.Description,
		&movie.CreatedAt,
		&movie.UpdatedAt,
		&movie.DeletedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find movie by ID",
			zap.Error(err),
			zap.String("movie_id", id.String()),
		)
		return nil, fmt.Errorf("find movie by ID %s: %w", id.String(), err)
	}

	return &movie, nil
}

// filterClause appends the optional WHERE conditions and returns the next placeholder index
func (f MovieFilter) filterClause(b *strings.Builder, args []any) ([]any, int) {
	argCount := len(args) + 1

	if f.Genre != "" {
		fmt.Fprintf(b, " AND genre ILIKE $%d", argCount)
		args = append(args, "%"+f.Genre+"%")
		argCount++
	}
	if f.MinRating != nil {
		fmt.Fprintf(b, " AND rating >= $%d", argCount)
		args = append(args, *f.MinRating)
		argCount++
	}

	return args, argCount
}

func (r *movieRepository) FindAll(ctx context.Context, offset, limit int, filter MovieFilter) ([]*entity.Movie, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT id, title, genre, duration, rating, description, created_at, updated_at
		FROM movies
		WHERE deleted_at IS NULL`)

	args, argCount := filter.filterClause(&queryBuilder, nil)

	fmt.Fprintf(&queryBuilder, " ORDER BY title LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		r.log.Error("Failed to find all movies",
			zap.Error(err),
			zap.Int("offset", offset),
			zap.Int("limit", limit),
			zap.String("genre", filter.Genre),
		)
		return nil, fmt.Errorf("find movies: %w", err)
	}
	defer rows.Close()

	var movies []*entity.Movie
	for rows.Next() {
		var movie entity.Movie
		err := rows.Scan(
			&movie.ID,
			&movie.Title,
			&movie.Genre,
			&movie.Duration,
			&movie.Rating,
			&movie.Description,
			&movie.CreatedAt,
			&movie.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan movie row", zap.Error(err))
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		movies = append(movies, &movie)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate movie rows: %w", err)
	}

	r.log.Debug("Movies found",
		zap.Int("count", len(movies)),
		zap.Int("offset", offset),
		zap.Int("limit", limit),
	)

	return movies, nil
}

func (r *movieRepository) CountAll(ctx context.Context, filter MovieFilter) (int64, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT COUNT(*) FROM movies WHERE deleted_at IS NULL`)
	args, _ := filter.filterClause(&queryBuilder, nil)

	var total int64
	if err := r.db.QueryRow(ctx, queryBuilder.String(), args...).Scan(&total); err != nil {
		r.log.Error("Failed to count movies", zap.Error(err))
		return 0, fmt.Errorf("count movies: %w", err)
	}

	return total, nil
}

func (r *movieRepository) Update(ctx context.Context, movie *entity.Movie) error {
	query := `
		UPDATE movies
		SET title = $2, genre = $3, duration = $4, rating = $5, description = $6, updated_at = $7
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query,
		movie.ID,
		movie.Title,
		movie.Genre,
		movie.Duration,
		movie.Rating,
		movie.Description,
		movie.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update movie",
			zap.Error(err),
			zap.String("movie_id", movie.ID.String()),
		)
		return fmt.Errorf("update movie %s: %w", movie.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("movie %s not found", movie.ID.String())
	}

	return nil
}

// Delete hides the movie from the catalogue; existing sessions keep their reference
func (r *movieRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE movies SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete movie",
			zap.Error(err),
			zap.String("movie_id", id.String()),
		)
		return fmt.Errorf("delete movie %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("movie %s not found", id.String())
	}

	r.log.Info("Movie soft deleted", zap.String("movie_id", id.String()))
	return nil
}
