package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridetracker/pkg/apperr"
	"ridetracker/pkg/models"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestAddRideWorkedExample(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	uber, _, err := f.svc.Ride().AddRide(ctx, f.user.ID, models.RideInput{Platform: "uber", Value: "25", Bonus: 5, Multiplier: 2})
	require.NoError(t, err)
	assertDecimal(t, "30", uber.TotalEarnings)

	_, summary, err := f.svc.Ride().AddRide(ctx, f.user.ID, models.RideInput{Platform: "99", Value: 20.0, Multiplier: "1.5"})
	require.NoError(t, err)

	assert.Equal(t, "2024-05-10", summary.Date)
	assert.Equal(t, 2, summary.TotalRides)
	assertDecimal(t, "60", summary.TotalEarnings)
	assertDecimal(t, "30", summary.EarningsByPlatform.Uber)
	assertDecimal(t, "30", summary.EarningsByPlatform.NinetyNine)
	assertDecimal(t, "0", summary.EarningsByPlatform.InDriver)
	assertDecimal(t, "5", summary.TotalBonus)
	assertDecimal(t, "60", summary.NetProfit)
}

func TestAddRideMatchesStoredSummary(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, _, err := f.svc.Ride().AddRide(ctx, f.user.ID, models.RideInput{Platform: "indriver", Value: "33,33", Multiplier: "1.2", Bonus: "1.11"})
	require.NoError(t, err)
	_, returned, err := f.svc.Ride().AddRide(ctx, f.user.ID, models.RideInput{Platform: "uber", Value: "0.1", Bonus: "0.2"})
	require.NoError(t, err)

	stored, err := f.svc.Ride().GetDailySummary(ctx, f.user.ID, f.clock.Now())
	require.NoError(t, err)

	assert.Equal(t, stored.TotalRides, returned.TotalRides)
	assert.True(t, stored.TotalEarnings.Equal(returned.TotalEarnings))
	assert.True(t, stored.NetProfit.Equal(returned.NetProfit))
	assertDecimal(t, "41.406", stored.TotalEarnings)
}

func TestAddRideCoercesGarbage(t *testing.T) {
	f := newFixture(t, nil)

	ride, _, err := f.svc.Ride().AddRide(context.Background(), f.user.ID, models.RideInput{Platform: "99", Value: "abc", Bonus: "5", Multiplier: "x"})
	require.NoError(t, err)

	assertDecimal(t, "5", ride.TotalEarnings)
	assert.False(t, ride.Multiplier.Valid)
}

func TestAddRideRejectsUnknownPlatform(t *testing.T) {
	f := newFixture(t, nil)

	_, _, err := f.svc.Ride().AddRide(context.Background(), f.user.ID, models.RideInput{Platform: "bolt", Value: 10})

	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestAddRideNormalisesPlatform(t *testing.T) {
	f := newFixture(t, nil)

	ride, _, err := f.svc.Ride().AddRide(context.Background(), f.user.ID, models.RideInput{Platform: " Uber ", Value: 10})
	require.NoError(t, err)
	assert.Equal(t, models.PlatformUber, ride.Platform)

	ride, _, err = f.svc.Ride().AddRide(context.Background(), f.user.ID, models.RideInput{Platform: "INDRIVER", Value: 10})
	require.NoError(t, err)
	assert.Equal(t, models.PlatformInDriver, ride.Platform)
}

func TestAddRideOnAnotherDay(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	yesterday := f.clock.Now().AddDate(0, 0, -1)

	_, summary, err := f.svc.Ride().AddRide(ctx, f.user.ID, models.RideInput{Platform: "uber", Value: 12, Date: timePtr(yesterday)})
	require.NoError(t, err)
	assert.Equal(t, "2024-05-09", summary.Date)
	assert.Equal(t, 1, summary.TotalRides)

	today, err := f.svc.Ride().GetDailySummary(ctx, f.user.ID, f.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, today.TotalRides)
}

func TestSummaryIncludesOnlineTime(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Session().Toggle(ctx, f.user.ID)
	require.NoError(t, err)
	f.clock.Advance(47 * time.Minute)
	_, err = f.svc.Session().Toggle(ctx, f.user.ID)
	require.NoError(t, err)

	_, err = f.svc.Session().Toggle(ctx, f.user.ID)
	require.NoError(t, err)
	f.clock.Advance(13 * time.Minute)

	summary, err := f.svc.Ride().GetDailySummary(ctx, f.user.ID, f.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 60, summary.TimeOnline)
}

func TestDayReportAndListRides(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	for _, v := range []string{"10", "20"} {
		_, _, err := f.svc.Ride().AddRide(ctx, f.user.ID, models.RideInput{Platform: "uber", Value: v})
		require.NoError(t, err)
	}

	summary, rides, err := f.svc.Ride().DayReport(ctx, f.user.ID, f.clock.Now())
	require.NoError(t, err)
	assert.Len(t, rides, 2)
	assertDecimal(t, "30", summary.TotalEarnings)

	_, err = f.svc.Ride().ListRides(ctx, f.user.ID, f.clock.Now(), f.clock.Now().Add(-time.Hour))
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
