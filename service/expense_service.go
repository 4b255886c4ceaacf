package service

import (
	"context"
	"fmt"
	"time"

	"ridetracker/pkg/apperr"
	"ridetracker/pkg/earnings"
	"ridetracker/pkg/logger"
	"ridetracker/pkg/models"
	"ridetracker/storage"
)

type ExpenseService interface {
	// AddExpense replaces the day's expense record. The total is always
	// derived from the four categories.
	AddExpense(ctx context.Context, userID string, day time.Time, in models.ExpenseInput) (*models.Expense, models.DailySummary, error)
	GetExpense(ctx context.Context, userID string, day time.Time) (*models.Expense, error)
	// ListExpenses returns the day records between from and to, newest first.
	ListExpenses(ctx context.Context, userID string, from, to time.Time) ([]*models.Expense, error)
}

type expenseService struct {
	stg storage.IStorage
	log logger.ILogger
	loc *time.Location
	now func() time.Time
}

func NewExpenseService(stg storage.IStorage, log logger.ILogger, opts Options) ExpenseService {
	opts = opts.withDefaults()
	return &expenseService{
		stg: stg,
		log: log,
		loc: opts.Location,
		now: opts.Now,
	}
}

func (s *expenseService) AddExpense(ctx context.Context, userID string, day time.Time, in models.ExpenseInput) (*models.Expense, models.DailySummary, error) {
	day = day.In(s.loc)
	start, _ := earnings.DayBounds(day)

	e := &models.Expense{
		UserID: userID,
		Date:   start,
		Fuel:   earnings.ParseAmount(in.Fuel),
		Food:   earnings.ParseAmount(in.Food),
		Toll:   earnings.ParseAmount(in.Toll),
		Other:  earnings.ParseAmount(in.Other),
	}
	e.Total = earnings.ExpenseTotal(e.Fuel, e.Food, e.Toll, e.Other)

	saved, err := s.stg.Expense().Upsert(ctx, e)
	if err != nil {
		return nil, models.DailySummary{}, fmt.Errorf("add expense: %w", err)
	}

	summary, err := buildSummary(ctx, s.stg, userID, day, s.now())
	if err != nil {
		return nil, models.DailySummary{}, err
	}

	s.log.Debug("expense saved",
		logger.String("user_id", userID),
		logger.String("date", start.Format(earnings.DateLayout)),
		logger.Stringer("total", saved.Total),
	)
	return saved, summary, nil
}

func (s *expenseService) GetExpense(ctx context.Context, userID string, day time.Time) (*models.Expense, error) {
	return s.stg.Expense().GetByDay(ctx, userID, day.In(s.loc))
}

func (s *expenseService) ListExpenses(ctx context.Context, userID string, from, to time.Time) ([]*models.Expense, error) {
	if to.Before(from) {
		return nil, apperr.Validation("range end is before its start")
	}
	return s.stg.Expense().ListByUser(ctx, userID, from.In(s.loc), to.In(s.loc))
}
