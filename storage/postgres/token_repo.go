package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ridetracker/pkg/logger"
	"ridetracker/pkg/models"
	"ridetracker/storage"
)

type tokenRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewTokenRepo(db *pgxpool.Pool, log logger.ILogger) storage.ITokenStorage {
	return &tokenRepo{db: db, log: log}
}

func (r *tokenRepo) Save(ctx context.Context, t *models.PlatformToken) error {
	query := `
		INSERT INTO user_platform_tokens (user_id, platform, access_token, refresh_token, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, platform) DO UPDATE
		SET access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at = EXCLUDED.expires_at,
			updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, t.UserID, t.Platform, t.AccessToken, t.RefreshToken, t.ExpiresAt)
	if err != nil {
		r.log.Error("failed to save platform token", logger.String("user_id", t.UserID), logger.Error(err))
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (r *tokenRepo) Get(ctx context.Context, userID string, platform models.Platform) (*models.PlatformToken, error) {
	var t models.PlatformToken
	query := `
		SELECT user_id, platform, access_token, refresh_token, expires_at, updated_at
		FROM user_platform_tokens WHERE user_id = $1 AND platform = $2
	`
	err := r.db.QueryRow(ctx, query, userID, platform).Scan(
		&t.UserID, &t.Platform, &t.AccessToken, &t.RefreshToken, &t.ExpiresAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("failed to get platform token", logger.String("user_id", userID), logger.Error(err))
		return nil, fmt.Errorf("query token: %w", err)
	}
	return &t, nil
}

func (r *tokenRepo) ListPlatforms(ctx context.Context, userID string) ([]models.Platform, error) {
	rows, err := r.db.Query(ctx, `SELECT platform FROM user_platform_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("query platforms: %w", err)
	}
	defer rows.Close()

	var platforms []models.Platform
	for rows.Next() {
		var p models.Platform
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		platforms = append(platforms, p)
	}
	return platforms, rows.Err()
}

func (r *tokenRepo) Delete(ctx context.Context, userID string, platform models.Platform) error {
	_, err := r.db.Exec(ctx, `DELETE FROM user_platform_tokens WHERE user_id = $1 AND platform = $2`, userID, platform)
	if err != nil {
		r.log.Error("failed to delete platform token", logger.String("user_id", userID), logger.Error(err))
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}
