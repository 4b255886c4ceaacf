package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ridetracker/pkg/logger"
	"ridetracker/pkg/models"
	"ridetracker/storage"
)

const expenseColumns = `id, user_id, date, fuel, food, toll, other, total, created_at, updated_at`

type expenseRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewExpenseRepo(db *pgxpool.Pool, log logger.ILogger) storage.IExpenseStorage {
	return &expenseRepo{db: db, log: log}
}

func scanExpense(row pgx.Row) (*models.Expense, error) {
	var e models.Expense
	err := row.Scan(&e.ID, &e.UserID, &e.Date, &e.Fuel, &e.Food, &e.Toll, &e.Other, &e.Total, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *expenseRepo) Upsert(ctx context.Context, e *models.Expense) (*models.Expense, error) {
	query := `
		INSERT INTO expenses (id, user_id, date, fuel, food, toll, other, total)
		VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, date) DO UPDATE
		SET fuel = EXCLUDED.fuel,
			food = EXCLUDED.food,
			toll = EXCLUDED.toll,
			other = EXCLUDED.other,
			total = EXCLUDED.total,
			updated_at = NOW()
		RETURNING ` + expenseColumns

	saved, err := scanExpense(r.db.QueryRow(ctx, query,
		uuid.New().String(), e.UserID, e.Date.Format(time.DateOnly), e.Fuel, e.Food, e.Toll, e.Other, e.Total,
	))
	if err != nil {
		r.log.Error("failed to upsert expense", logger.String("user_id", e.UserID), logger.Error(err))
		return nil, fmt.Errorf("upsert expense: %w", err)
	}
	return saved, nil
}

func (r *expenseRepo) GetByDay(ctx context.Context, userID string, day time.Time) (*models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE user_id = $1 AND date = $2::date`
	e, err := scanExpense(r.db.QueryRow(ctx, query, userID, day.Format(time.DateOnly)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("failed to get expense", logger.String("user_id", userID), logger.Error(err))
		return nil, fmt.Errorf("query expense: %w", err)
	}
	return e, nil
}

func (r *expenseRepo) ListByUser(ctx context.Context, userID string, from, to time.Time) ([]*models.Expense, error) {
	query := `
		SELECT ` + expenseColumns + `
		FROM expenses
		WHERE user_id = $1 AND date >= $2::date AND date <= $3::date
		ORDER BY date DESC
	`
	rows, err := r.db.Query(ctx, query, userID, from.Format(time.DateOnly), to.Format(time.DateOnly))
	if err != nil {
		r.log.Error("failed to list expenses", logger.String("user_id", userID), logger.Error(err))
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	expenses := []*models.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}
