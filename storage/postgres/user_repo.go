package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ridetracker/pkg/logger"
	"ridetracker/pkg/models"
	"ridetracker/storage"
)

const userColumns = `id, telegram_id, username, name, phone, city, instagram, is_admin, is_blocked, created_at, updated_at`

type userRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewUserRepo(db *pgxpool.Pool, log logger.ILogger) storage.IUserStorage {
	return &userRepo{db: db, log: log}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.TelegramID, &u.Username, &u.Name, &u.Phone, &u.City, &u.Instagram, &u.IsAdmin, &u.IsBlocked, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetOrCreate(ctx context.Context, teleID int64, username, name string) (*models.User, error) {
	query := `
		INSERT INTO users (id, telegram_id, username, name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (telegram_id) DO UPDATE
		SET username = EXCLUDED.username, updated_at = NOW()
		RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(ctx, query, uuid.New().String(), teleID, username, name))
	if err != nil {
		r.log.Error("failed to get or create user", logger.Int64("telegram_id", teleID), logger.Error(err))
		return nil, err
	}
	return user, nil
}

func (r *userRepo) Get(ctx context.Context, teleID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, teleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("failed to get user", logger.Error(err))
		return nil, err
	}
	return user, nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("failed to get user by id", logger.Error(err))
		return nil, err
	}
	return user, nil
}

func (r *userRepo) UpdateCity(ctx context.Context, id, city string) error {
	_, err := r.db.Exec(ctx, "UPDATE users SET city=$1, updated_at=NOW() WHERE id=$2", city, id)
	return err
}

func (r *userRepo) UpdateInstagram(ctx context.Context, id, instagram string) error {
	_, err := r.db.Exec(ctx, "UPDATE users SET instagram=$1, updated_at=NOW() WHERE id=$2", instagram, id)
	return err
}

func (r *userRepo) UpdatePhone(ctx context.Context, id, phone string) error {
	_, err := r.db.Exec(ctx, "UPDATE users SET phone=$1, updated_at=NOW() WHERE id=$2", phone, id)
	return err
}
