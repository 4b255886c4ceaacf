package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ridetracker/pkg/apperr"
	"ridetracker/pkg/earnings"
	"ridetracker/pkg/logger"
	"ridetracker/pkg/models"
	"ridetracker/storage"
)

type RideService interface {
	// AddRide stores a ride and returns it with the updated summary of the
	// ride's day.
	AddRide(ctx context.Context, userID string, in models.RideInput) (*models.Ride, models.DailySummary, error)
	GetDailySummary(ctx context.Context, userID string, day time.Time) (models.DailySummary, error)
	ListRides(ctx context.Context, userID string, from, to time.Time) ([]*models.Ride, error)
	// DayReport is the summary and ride list of one day, for exports.
	DayReport(ctx context.Context, userID string, day time.Time) (models.DailySummary, []*models.Ride, error)
}

type rideService struct {
	stg storage.IStorage
	log logger.ILogger
	loc *time.Location
	now func() time.Time
}

func NewRideService(stg storage.IStorage, log logger.ILogger, opts Options) RideService {
	opts = opts.withDefaults()
	return &rideService{
		stg: stg,
		log: log,
		loc: opts.Location,
		now: opts.Now,
	}
}

func (s *rideService) AddRide(ctx context.Context, userID string, in models.RideInput) (*models.Ride, models.DailySummary, error) {
	in.Platform = strings.ToLower(strings.TrimSpace(in.Platform))
	if err := validateStruct(in); err != nil {
		return nil, models.DailySummary{}, err
	}
	p, ok := models.ParsePlatform(in.Platform)
	if !ok {
		return nil, models.DailySummary{}, apperr.Validation("unknown platform %q", in.Platform)
	}

	date := s.now()
	if in.Date != nil && !in.Date.IsZero() {
		date = *in.Date
	}
	date = date.In(s.loc)

	ride := &models.Ride{
		UserID:     userID,
		Platform:   p,
		Date:       date,
		Value:      earnings.ParseAmount(in.Value),
		Distance:   earnings.ParseAmount(in.Distance),
		Duration:   int(earnings.ParseAmount(in.Duration).IntPart()),
		Category:   in.Category,
		Bonus:      earnings.ParseAmount(in.Bonus),
		Multiplier: earnings.ParseMultiplier(in.Multiplier),
	}
	ride.TotalEarnings = earnings.ComputeTotalEarnings(ride.Platform, ride.Value, ride.Bonus, ride.Multiplier)

	before, err := buildSummary(ctx, s.stg, userID, date, s.now())
	if err != nil {
		return nil, models.DailySummary{}, err
	}

	created, err := s.stg.Ride().Create(ctx, ride)
	if err != nil {
		return nil, models.DailySummary{}, fmt.Errorf("add ride: %w", err)
	}

	s.log.Debug("ride added",
		logger.String("user_id", userID),
		logger.String("platform", string(p)),
		logger.Stringer("total", created.TotalEarnings),
	)
	return created, earnings.ApplyRide(before, date, created), nil
}

func (s *rideService) GetDailySummary(ctx context.Context, userID string, day time.Time) (models.DailySummary, error) {
	return buildSummary(ctx, s.stg, userID, day.In(s.loc), s.now())
}

func (s *rideService) ListRides(ctx context.Context, userID string, from, to time.Time) ([]*models.Ride, error) {
	if to.Before(from) {
		return nil, apperr.Validation("range end is before its start")
	}
	return s.stg.Ride().ListByUser(ctx, userID, from, to)
}

func (s *rideService) DayReport(ctx context.Context, userID string, day time.Time) (models.DailySummary, []*models.Ride, error) {
	day = day.In(s.loc)
	summary, err := buildSummary(ctx, s.stg, userID, day, s.now())
	if err != nil {
		return models.DailySummary{}, nil, err
	}
	start, end := earnings.DayBounds(day)
	rides, err := s.stg.Ride().ListByUser(ctx, userID, start, end)
	if err != nil {
		return models.DailySummary{}, nil, err
	}
	return summary, rides, nil
}

// buildSummary recomputes a day from storage: rides in the window, the
// day's expense record and the online minutes up to now.
func buildSummary(ctx context.Context, stg storage.IStorage, userID string, day, now time.Time) (models.DailySummary, error) {
	start, end := earnings.DayBounds(day)

	rides, err := stg.Ride().ListByUser(ctx, userID, start, end)
	if err != nil {
		return models.DailySummary{}, fmt.Errorf("summary rides: %w", err)
	}
	expense, err := stg.Expense().GetByDay(ctx, userID, day)
	if err != nil {
		return models.DailySummary{}, fmt.Errorf("summary expense: %w", err)
	}
	sessions, err := stg.Session().ListOverlapping(ctx, userID, start, end)
	if err != nil {
		return models.DailySummary{}, fmt.Errorf("summary sessions: %w", err)
	}

	return earnings.BuildDailySummary(day, rides, expense, earnings.OnlineMinutes(sessions, day, now)), nil
}
