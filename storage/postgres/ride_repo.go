package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ridetracker/pkg/logger"
	"ridetracker/pkg/models"
	"ridetracker/storage"
)

const rideColumns = `id, user_id, platform, date, value, distance, duration, category, bonus, multiplier, total_earnings, external_id, created_at`

type rideRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewRideRepo(db *pgxpool.Pool, log logger.ILogger) storage.IRideStorage {
	return &rideRepo{db: db, log: log}
}

func scanRide(row pgx.Row) (*models.Ride, error) {
	var r models.Ride
	err := row.Scan(
		&r.ID, &r.UserID, &r.Platform, &r.Date, &r.Value, &r.Distance, &r.Duration, &r.Category,
		&r.Bonus, &r.Multiplier, &r.TotalEarnings, &r.ExternalID, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *rideRepo) Create(ctx context.Context, ride *models.Ride) (*models.Ride, error) {
	if ride.ID == "" {
		ride.ID = uuid.New().String()
	}
	query := `
		INSERT INTO rides (id, user_id, platform, date, value, distance, duration, category, bonus, multiplier, total_earnings, external_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + rideColumns

	created, err := scanRide(r.db.QueryRow(ctx, query,
		ride.ID, ride.UserID, ride.Platform, ride.Date, ride.Value, ride.Distance, ride.Duration, ride.Category,
		ride.Bonus, ride.Multiplier, ride.TotalEarnings, ride.ExternalID,
	))
	if err != nil {
		r.log.Error("failed to create ride", logger.String("user_id", ride.UserID), logger.Error(err))
		return nil, fmt.Errorf("insert ride: %w", err)
	}
	return created, nil
}

func (r *rideRepo) CreateExternal(ctx context.Context, ride *models.Ride) (bool, error) {
	if ride.ID == "" {
		ride.ID = uuid.New().String()
	}
	query := `
		INSERT INTO rides (id, user_id, platform, date, value, distance, duration, category, bonus, multiplier, total_earnings, external_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (user_id, platform, external_id) WHERE external_id IS NOT NULL DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query,
		ride.ID, ride.UserID, ride.Platform, ride.Date, ride.Value, ride.Distance, ride.Duration, ride.Category,
		ride.Bonus, ride.Multiplier, ride.TotalEarnings, ride.ExternalID,
	)
	if err != nil {
		r.log.Error("failed to insert synced ride", logger.String("user_id", ride.UserID), logger.Error(err))
		return false, fmt.Errorf("insert synced ride: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *rideRepo) ListByUser(ctx context.Context, userID string, from, to time.Time) ([]*models.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE user_id = $1 AND date >= $2 AND date <= $3 ORDER BY date`
	rows, err := r.db.Query(ctx, query, userID, from, to)
	if err != nil {
		r.log.Error("failed to list rides", logger.String("user_id", userID), logger.Error(err))
		return nil, fmt.Errorf("query rides: %w", err)
	}
	defer rows.Close()

	rides := []*models.Ride{}
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

func (r *rideRepo) CityRides(ctx context.Context, city string, from, to time.Time) ([]models.CityRide, error) {
	query := `
		SELECT r.user_id, u.name, u.instagram, r.total_earnings
		FROM rides r
		JOIN users u ON u.id = r.user_id
		WHERE u.city = $1 AND u.is_blocked = FALSE AND r.date >= $2 AND r.date <= $3
	`
	rows, err := r.db.Query(ctx, query, city, from, to)
	if err != nil {
		r.log.Error("failed to query city rides", logger.String("city", city), logger.Error(err))
		return nil, fmt.Errorf("query city rides: %w", err)
	}
	defer rows.Close()

	var out []models.CityRide
	for rows.Next() {
		var cr models.CityRide
		if err := rows.Scan(&cr.UserID, &cr.Name, &cr.Instagram, &cr.TotalEarnings); err != nil {
			return nil, err
		}
		out = append(out, cr)
	}
	return out, rows.Err()
}
