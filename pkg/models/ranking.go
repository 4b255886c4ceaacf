package models

import "github.com/shopspring/decimal"

type RankingEntry struct {
	Position      int             `json:"position"`
	UserID        string          `json:"user_id"`
	Name          string          `json:"name"`
	Instagram     string          `json:"instagram,omitempty"`
	TotalEarnings decimal.Decimal `json:"total_earnings"`
	RidesCount    int             `json:"rides_count"`
}

// CityRide is one ride of a driver registered in the ranked city.
type CityRide struct {
	UserID        string
	Name          string
	Instagram     string
	TotalEarnings decimal.Decimal
}
