package earnings

import (
	"sort"

	"github.com/shopspring/decimal"

	"ridetracker/pkg/models"
)

const MaxRankingEntries = 10

// RankDrivers groups rides by driver, sums earnings and ride counts, orders
// by earnings descending with ties broken by user id, and keeps the first
// limit entries. limit <= 0 means MaxRankingEntries.
func RankDrivers(rides []models.CityRide, limit int) []models.RankingEntry {
	if limit <= 0 || limit > MaxRankingEntries {
		limit = MaxRankingEntries
	}

	byUser := make(map[string]*models.RankingEntry)
	for _, r := range rides {
		e, ok := byUser[r.UserID]
		if !ok {
			e = &models.RankingEntry{
				UserID:        r.UserID,
				Name:          r.Name,
				Instagram:     r.Instagram,
				TotalEarnings: decimal.Zero,
			}
			byUser[r.UserID] = e
		}
		e.TotalEarnings = e.TotalEarnings.Add(r.TotalEarnings)
		e.RidesCount++
	}

	entries := make([]models.RankingEntry, 0, len(byUser))
	for _, e := range byUser {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if c := entries[i].TotalEarnings.Cmp(entries[j].TotalEarnings); c != 0 {
			return c > 0
		}
		return entries[i].UserID < entries[j].UserID
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Position = i + 1
	}
	return entries
}
