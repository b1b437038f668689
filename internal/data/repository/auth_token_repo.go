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

type AuthTokenRepository interface {
	Create(ctx context.Context, token *entity.AuthToken) error
	FindValid(ctx context.Context, token string) (*entity.AuthToken, error)
	Revoke(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type authTokenRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewAuthTokenRepository(db database.PgxIface, log *zap.Logger) AuthTokenRepository {
	return &authTokenRepository{
		db:  db,
		log: log.With(zap.String("repository", "auth_token")),
	}
}

func (r *authTokenRepository) Create(ctx context.Context, token *entity.AuthToken) error {
	query := `
		INSERT INTO auth_tokens (id, user_id, token, user_agent, ip_address, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		token.ID,
		token.UserID,
		token.Token,
		token.UserAgent,
		token.IPAddress,
		token.ExpiresAt,
		token.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create auth token",
			zap.Error(err),
			zap.String("user_id", token.UserID.String()),
		)
		return fmt.Errorf("create auth token for user %s: %w", token.UserID.String(), err)
	}

	return nil
}

// FindValid returns the unrevoked, unexpired token of an active user along with the user's role
func (r *authTokenRepository) FindValid(ctx context.Context, token string) (*entity.AuthToken, error) {
	tokenID, err := uuid.Parse(token)
	if err != nil {
		return nil, nil
	}

	query := `
		SELECT t.id, t.user_id, t.token, t.user_agent, t.ip_address,
		       t.expires_at, t.revoked_at, t.created_at, u.role
		FROM auth_tokens t
		JOIN users u ON u.id = t.user_id
		WHERE t.token = $1
		  AND t.revoked_at IS NULL
		  AND t.expires_at > NOW()
		  AND u.deleted_at IS NULL
	`

	var authToken entity.AuthToken
	err = r.db.QueryRow(ctx, query, tokenID).Scan(
		&authToken.ID,
		&authToken.UserID,
		&authToken.Token,
		&authToken.UserAgent,
		&authToken.IPAddress,
		&authToken.ExpiresAt,
		&authToken.RevokedAt,
		&authToken.CreatedAt,
		&authToken.Role,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find valid auth token", zap.Error(err))
		return nil, fmt.Errorf("find auth token: %w", err)
	}

	return &authToken, nil
}

func (r *authTokenRepository) Revoke(ctx context.Context, token string) error {
	query := `
		UPDATE auth_tokens
		SET revoked_at = NOW()
		WHERE token = $1 AND revoked_at IS NULL
	`

	result, err := r.db.Exec(ctx, query, token)
	if err != nil {
		r.log.Error("Failed to revoke auth token", zap.Error(err))
		return fmt.Errorf("revoke auth token: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("auth token not found or already revoked")
	}

	return nil
}

func (r *authTokenRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE auth_tokens
		SET revoked_at = NOW()
		WHERE user_id = $1 AND revoked_at IS NULL
	`

	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		r.log.Error("Failed to revoke user auth tokens",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return fmt.Errorf("revoke auth tokens for user %s: %w", userID.String(), err)
	}

	return nil
}

// DeleteExpired drops tokens that expired more than a week ago
func (r *authTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM auth_tokens WHERE expires_at < NOW() - INTERVAL '7 days'`

	result, err := r.db.Exec(ctx, query)
	if err != nil {
		r.log.Error("Failed to delete expired auth tokens", zap.Error(err))
		return 0, fmt.Errorf("delete expired auth tokens: %w", err)
	}

	return result.RowsAffected(), nil
}
