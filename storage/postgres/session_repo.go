package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ridetracker/pkg/apperr"
	"ridetracker/pkg/earnings"
	"ridetracker/pkg/logger"
	"ridetracker/pkg/models"
	"ridetracker/storage"
)

const sessionColumns = `id, user_id, start_time, end_time, duration_minutes`

type sessionRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewSessionRepo(db *pgxpool.Pool, log logger.ILogger) storage.ISessionStorage {
	return &sessionRepo{db: db, log: log}
}

func scanSession(row pgx.Row) (*models.OnlineSession, error) {
	var s models.OnlineSession
	if err := row.Scan(&s.ID, &s.UserID, &s.StartTime, &s.EndTime, &s.DurationMinutes); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) Start(ctx context.Context, userID string, at time.Time) (*models.OnlineSession, error) {
	query := `
		INSERT INTO online_sessions (id, user_id, start_time)
		VALUES ($1, $2, $3)
		RETURNING ` + sessionColumns

	s, err := scanSession(r.db.QueryRow(ctx, query, uuid.New().String(), userID, at))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("user already has an open session")
		}
		r.log.Error("failed to start session", logger.String("user_id", userID), logger.Error(err))
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return s, nil
}

// End locks the open row so the duration is computed from the committed
// start time and written exactly once.
func (r *sessionRepo) End(ctx context.Context, sessionID string, at time.Time) (*models.OnlineSession, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var start time.Time
	err = tx.QueryRow(ctx,
		`SELECT start_time FROM online_sessions WHERE id = $1 AND end_time IS NULL FOR UPDATE`,
		sessionID,
	).Scan(&start)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("no open session %s", sessionID)
		}
		r.log.Error("failed to lock session", logger.String("session_id", sessionID), logger.Error(err))
		return nil, fmt.Errorf("lock session: %w", err)
	}

	if at.Before(start) {
		at = start
	}
	s, err := scanSession(tx.QueryRow(ctx,
		`UPDATE online_sessions SET end_time = $1, duration_minutes = $2 WHERE id = $3 RETURNING `+sessionColumns,
		at, earnings.SessionDuration(start, at), sessionID,
	))
	if err != nil {
		r.log.Error("failed to end session", logger.String("session_id", sessionID), logger.Error(err))
		return nil, fmt.Errorf("update session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s, nil
}

func (r *sessionRepo) GetOpen(ctx context.Context, userID string) (*models.OnlineSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM online_sessions WHERE user_id = $1 AND end_time IS NULL LIMIT 1`
	s, err := scanSession(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("failed to get open session", logger.String("user_id", userID), logger.Error(err))
		return nil, fmt.Errorf("query open session: %w", err)
	}
	return s, nil
}

func (r *sessionRepo) ListOverlapping(ctx context.Context, userID string, from, to time.Time) ([]*models.OnlineSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM online_sessions
		WHERE user_id = $1 AND start_time <= $3 AND (end_time IS NULL OR end_time >= $2)
		ORDER BY start_time
	`
	rows, err := r.db.Query(ctx, query, userID, from, to)
	if err != nil {
		r.log.Error("failed to list sessions", logger.String("user_id", userID), logger.Error(err))
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.OnlineSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
