package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"ridetracker/pkg/models"
)

type expenseStore struct{ s *Store }

func (e expenseStore) Upsert(_ context.Context, expense *models.Expense) (*models.Expense, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	key := expenseKey{userID: expense.UserID, date: expense.Date.Format(time.DateOnly)}
	now := e.s.now()

	cp := *expense
	if existing, ok := e.s.expenses[key]; ok {
		cp.ID = existing.ID
		cp.CreatedAt = existing.CreatedAt
	} else {
		cp.ID = uuid.New().String()
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	e.s.expenses[key] = &cp

	out := cp
	return &out, nil
}

func (e expenseStore) GetByDay(_ context.Context, userID string, day time.Time) (*models.Expense, error) {
	e.s.mu.RLock()
	defer e.s.mu.RUnlock()

	existing, ok := e.s.expenses[expenseKey{userID: userID, date: day.Format(time.DateOnly)}]
	if !ok {
		return nil, nil
	}
	cp := *existing
	return &cp, nil
}

func (e expenseStore) ListByUser(_ context.Context, userID string, from, to time.Time) ([]*models.Expense, error) {
	e.s.mu.RLock()
	defer e.s.mu.RUnlock()

	lo, hi := from.Format(time.DateOnly), to.Format(time.DateOnly)
	out := []*models.Expense{}
	for key, existing := range e.s.expenses {
		if key.userID != userID || key.date < lo || key.date > hi {
			continue
		}
		cp := *existing
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}
