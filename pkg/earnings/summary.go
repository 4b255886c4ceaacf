package earnings

import (
	"time"

	"github.com/shopspring/decimal"

	"ridetracker/pkg/models"
)

const DateLayout = "2006-01-02"

// DayBounds returns the inclusive window of day's calendar date in day's
// location: local midnight through the last nanosecond before the next one.
func DayBounds(day time.Time) (time.Time, time.Time) {
	y, m, d := day.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return start, end
}

func InWindow(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// EmptySummary is the summary of a day with no rides, expense or online time.
func EmptySummary(day time.Time) models.DailySummary {
	return models.DailySummary{
		Date:          day.Format(DateLayout),
		TotalEarnings: decimal.Zero,
		TotalExpenses: decimal.Zero,
		NetProfit:     decimal.Zero,
		TotalBonus:    decimal.Zero,
		EarningsByPlatform: models.PlatformEarnings{
			Uber:       decimal.Zero,
			NinetyNine: decimal.Zero,
			InDriver:   decimal.Zero,
		},
	}
}

// BuildDailySummary aggregates the rides falling in day's window together
// with the day's expense record (nil when none) and the minutes online.
// Rides outside the window are ignored.
func BuildDailySummary(day time.Time, rides []*models.Ride, expense *models.Expense, timeOnline int) models.DailySummary {
	s := EmptySummary(day)
	s.TimeOnline = timeOnline
	for _, r := range rides {
		s = ApplyRide(s, day, r)
	}
	return ApplyExpense(s, expense)
}

// ApplyRide folds one new ride into a summary built for day. The result is
// identical to rebuilding the summary with the ride included.
func ApplyRide(s models.DailySummary, day time.Time, r *models.Ride) models.DailySummary {
	if r == nil {
		return s
	}
	start, end := DayBounds(day)
	if !InWindow(r.Date, start, end) {
		return s
	}

	s.TotalEarnings = s.TotalEarnings.Add(r.TotalEarnings)
	s.TotalBonus = s.TotalBonus.Add(r.Bonus)
	s.EarningsByPlatform.Add(r.Platform, r.TotalEarnings)
	s.TotalRides++
	s.NetProfit = s.TotalEarnings.Sub(s.TotalExpenses)
	return s
}

// ApplyExpense replaces the expense side of the summary. A nil expense means
// the day has no expense record.
func ApplyExpense(s models.DailySummary, e *models.Expense) models.DailySummary {
	s.TotalExpenses = decimal.Zero
	if e != nil {
		s.TotalExpenses = e.Total
	}
	s.NetProfit = s.TotalEarnings.Sub(s.TotalExpenses)
	return s
}

// ExpenseTotal is the sum of the four expense categories.
func ExpenseTotal(fuel, food, toll, other decimal.Decimal) decimal.Decimal {
	return fuel.Add(food).Add(toll).Add(other)
}
