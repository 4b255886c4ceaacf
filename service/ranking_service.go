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

type RankingService interface {
	Daily(ctx context.Context, city string, day time.Time) ([]models.RankingEntry, error)
	// ForUser ranks the city the user registered with.
	ForUser(ctx context.Context, userID string, day time.Time) (string, []models.RankingEntry, error)
}

type rankingService struct {
	stg storage.IStorage
	log logger.ILogger
	loc *time.Location
}

func NewRankingService(stg storage.IStorage, log logger.ILogger, opts Options) RankingService {
	opts = opts.withDefaults()
	return &rankingService{
		stg: stg,
		log: log,
		loc: opts.Location,
	}
}

func (s *rankingService) Daily(ctx context.Context, city string, day time.Time) ([]models.RankingEntry, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, apperr.Validation("city is required")
	}

	start, end := earnings.DayBounds(day.In(s.loc))
	rides, err := s.stg.Ride().CityRides(ctx, city, start, end)
	if err != nil {
		return nil, fmt.Errorf("ranking: %w", err)
	}
	return earnings.RankDrivers(rides, earnings.MaxRankingEntries), nil
}

func (s *rankingService) ForUser(ctx context.Context, userID string, day time.Time) (string, []models.RankingEntry, error) {
	user, err := s.stg.User().GetByID(ctx, userID)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, apperr.NotFound("user not found")
	}
	if user.City == "" {
		return "", nil, apperr.Validation("city is not set")
	}

	entries, err := s.Daily(ctx, user.City, day)
	return user.City, entries, err
}
