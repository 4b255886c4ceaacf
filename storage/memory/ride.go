package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"ridetracker/pkg/earnings"
	"ridetracker/pkg/models"
)

type rideStore struct{ s *Store }

func (r rideStore) Create(_ context.Context, ride *models.Ride) (*models.Ride, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.insert(ride), nil
}

func (r rideStore) CreateExternal(_ context.Context, ride *models.Ride) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if ride.ExternalID != nil {
		for _, existing := range r.s.rides {
			if existing.UserID == ride.UserID && existing.Platform == ride.Platform &&
				existing.ExternalID != nil && *existing.ExternalID == *ride.ExternalID {
				return false, nil
			}
		}
	}
	r.insert(ride)
	return true, nil
}

func (r rideStore) insert(ride *models.Ride) *models.Ride {
	cp := *ride
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	cp.CreatedAt = r.s.now()
	r.s.rides = append(r.s.rides, &cp)

	out := cp
	return &out
}

func (r rideStore) ListByUser(_ context.Context, userID string, from, to time.Time) ([]*models.Ride, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rides := []*models.Ride{}
	for _, ride := range r.s.rides {
		if ride.UserID == userID && earnings.InWindow(ride.Date, from, to) {
			cp := *ride
			rides = append(rides, &cp)
		}
	}
	sort.SliceStable(rides, func(i, j int) bool { return rides[i].Date.Before(rides[j].Date) })
	return rides, nil
}

func (r rideStore) CityRides(_ context.Context, city string, from, to time.Time) ([]models.CityRide, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.CityRide
	for _, ride := range r.s.rides {
		user, ok := r.s.users[ride.UserID]
		if !ok || user.City != city || user.IsBlocked || !earnings.InWindow(ride.Date, from, to) {
			continue
		}
		out = append(out, models.CityRide{
			UserID:        user.ID,
			Name:          user.Name,
			Instagram:     user.Instagram,
			TotalEarnings: ride.TotalEarnings,
		})
	}
	return out, nil
}
