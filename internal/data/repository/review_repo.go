package repository

import (
	"context"
	"errors"
	"fmt"

	"cinema-ticketing/internal/data/entity"
	"cinema-ticketing/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	FindByMovieID(ctx context.Context, movieID uuid.UUID) ([]*entity.Review, error)
}

type reviewRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewReviewRepository(db database.PgxIface, log *zap.Logger) ReviewRepository {
	return &reviewRepository{
		db:  db,
		log: log.With(zap.String("repository", "review")),
	}
}

// Create fails with ErrDuplicate when the user already reviewed the movie
func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	query := `
		INSERT INTO reviews (id, user_id, movie_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		review.ID,
		review.UserID,
		review.MovieID,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	)

	if err != nil {
		err = classifyPgError(err)
		if !errors.Is(err, ErrDuplicate) {
			r.log.Error("Failed to create review",
				zap.Error(err),
				zap.String("user_id", review.UserID.String()),
				zap.String("movie_id", review.MovieID.String()),
			)
		}
		return fmt.Errorf("create review for movie %s: %w", review.MovieID.String(), err)
	}

	return nil
}

func (r *reviewRepository) FindByMovieID(ctx context.Context, movieID uuid.UUID) ([]*entity.Review, error) {
	query := `
		SELECT r.id, r.user_id, r.movie_id, r.rating, r.comment, r.created_at, u.username
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.movie_id = $1
		ORDER BY r.created_at DESC
	`

	rows, err := r.db.Query(ctx, query, movieID)
	if err != nil {
		r.log.Error("Failed to find reviews by movie",
			zap.Error(err),
			zap.String("movie_id", movieID.String()),
		)
		return nil, fmt.Errorf("find reviews for movie %s: %w", movieID.String(), err)
	}
	defer rows.Close()

	var reviews []*entity.Review
	for rows.Next() {
		var review entity.Review
		err := rows.Scan(
			&review.ID,
			&review.UserID,
			&review.MovieID,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt,
			&review.Username,
		)
		if err != nil {
			r.log.Error("Failed to scan review row", zap.Error(err))
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, &review)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}

	return reviews, nil
}
