package earnings

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridetracker/pkg/models"
)

var saoPaulo = time.FixedZone("BRT", -3*60*60)

func at(hour, min int) time.Time {
	return time.Date(2024, 5, 10, hour, min, 0, 0, saoPaulo)
}

func ride(p models.Platform, date time.Time, value, bonus string, mult decimal.NullDecimal) *models.Ride {
	r := &models.Ride{
		Platform:   p,
		Date:       date,
		Value:      dec(value),
		Bonus:      dec(bonus),
		Multiplier: mult,
	}
	r.TotalEarnings = ComputeTotalEarnings(p, r.Value, r.Bonus, r.Multiplier)
	return r
}

func sampleRides() []*models.Ride {
	return []*models.Ride{
		ride(models.PlatformUber, at(9, 0), "25", "5", decimal.NullDecimal{}),
		ride(models.Platform99, at(13, 30), "20", "0", decimal.NewNullDecimal(dec("1.5"))),
	}
}

func assertSummaryEqual(t *testing.T, want, got models.DailySummary) {
	t.Helper()
	assert.Equal(t, want.Date, got.Date)
	assert.Equal(t, want.TotalRides, got.TotalRides)
	assert.Equal(t, want.TimeOnline, got.TimeOnline)
	assertDecimal(t, want.TotalEarnings.String(), got.TotalEarnings, "total earnings")
	assertDecimal(t, want.TotalExpenses.String(), got.TotalExpenses, "total expenses")
	assertDecimal(t, want.NetProfit.String(), got.NetProfit, "net profit")
	assertDecimal(t, want.TotalBonus.String(), got.TotalBonus, "total bonus")
	for _, p := range models.Platforms {
		assertDecimal(t, want.EarningsByPlatform.Get(p).String(), got.EarningsByPlatform.Get(p), p)
	}
}

func TestDayBounds(t *testing.T) {
	start, end := DayBounds(at(15, 42))

	assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, saoPaulo), start)
	assert.Equal(t, time.Date(2024, 5, 10, 23, 59, 59, 999999999, saoPaulo), end)
	assert.True(t, InWindow(start, start, end))
	assert.True(t, InWindow(end, start, end))
	assert.False(t, InWindow(end.Add(time.Nanosecond), start, end))
}

func TestBuildDailySummary(t *testing.T) {
	s := BuildDailySummary(at(12, 0), sampleRides(), nil, 47)

	assert.Equal(t, "2024-05-10", s.Date)
	assert.Equal(t, 2, s.TotalRides)
	assert.Equal(t, 47, s.TimeOnline)
	assertDecimal(t, "60", s.TotalEarnings)
	assertDecimal(t, "30", s.EarningsByPlatform.Uber)
	assertDecimal(t, "30", s.EarningsByPlatform.NinetyNine)
	assertDecimal(t, "0", s.EarningsByPlatform.InDriver)
	assertDecimal(t, "5", s.TotalBonus)
	assertDecimal(t, "0", s.TotalExpenses)
	assertDecimal(t, "60", s.NetProfit)
}

func TestBuildDailySummaryWithExpense(t *testing.T) {
	expense := &models.Expense{Total: dec("40")}

	s := BuildDailySummary(at(12, 0), sampleRides(), expense, 0)

	assertDecimal(t, "40", s.TotalExpenses)
	assertDecimal(t, "20", s.NetProfit)
}

func TestBuildDailySummaryIgnoresOtherDays(t *testing.T) {
	rides := append(sampleRides(),
		ride(models.PlatformInDriver, at(0, 0).Add(-time.Nanosecond), "100", "0", decimal.NullDecimal{}),
		ride(models.PlatformInDriver, at(0, 0).AddDate(0, 0, 1), "100", "0", decimal.NullDecimal{}),
	)

	s := BuildDailySummary(at(12, 0), rides, nil, 0)

	assert.Equal(t, 2, s.TotalRides)
	assertDecimal(t, "60", s.TotalEarnings)
}

func TestBuildDailySummaryEmpty(t *testing.T) {
	s := BuildDailySummary(at(12, 0), nil, nil, 0)

	assert.Equal(t, 0, s.TotalRides)
	assertDecimal(t, "0", s.NetProfit)
	assertDecimal(t, "0", s.EarningsByPlatform.Sum())
}

func TestSummaryIdentities(t *testing.T) {
	rides := append(sampleRides(),
		ride(models.PlatformInDriver, at(18, 5), "33.33", "1.11", decimal.NewNullDecimal(dec("1.2"))),
		ride(models.PlatformUber, at(23, 59), "0.1", "0.2", decimal.NullDecimal{}),
	)
	s := BuildDailySummary(at(1, 0), rides, &models.Expense{Total: dec("12.34")}, 0)

	assert.True(t, s.NetProfit.Equal(s.TotalEarnings.Sub(s.TotalExpenses)))
	assert.True(t, s.EarningsByPlatform.Sum().Equal(s.TotalEarnings))
}

func TestApplyRideMatchesRecompute(t *testing.T) {
	day := at(12, 0)
	expense := &models.Expense{Total: dec("15.5")}
	base := sampleRides()
	extra := ride(models.PlatformInDriver, at(20, 15), "17.3", "2", decimal.NewNullDecimal(dec("1.1")))

	incremental := ApplyRide(BuildDailySummary(day, base, expense, 30), day, extra)
	full := BuildDailySummary(day, append(base, extra), expense, 30)

	assertSummaryEqual(t, full, incremental)
}

func TestApplyRideOutsideWindow(t *testing.T) {
	day := at(12, 0)
	s := BuildDailySummary(day, sampleRides(), nil, 0)

	got := ApplyRide(s, day, ride(models.PlatformUber, day.AddDate(0, 0, 1), "50", "0", decimal.NullDecimal{}))

	assertSummaryEqual(t, s, got)
}

func TestApplyExpenseReplaces(t *testing.T) {
	s := BuildDailySummary(at(12, 0), sampleRides(), &models.Expense{Total: dec("40")}, 0)

	s = ApplyExpense(s, &models.Expense{Total: dec("10")})

	assertDecimal(t, "10", s.TotalExpenses)
	assertDecimal(t, "50", s.NetProfit)
}

func TestExpenseTotal(t *testing.T) {
	require.True(t, dec("40").Equal(ExpenseTotal(dec("25"), dec("10"), dec("5"), decimal.Zero)))
}
