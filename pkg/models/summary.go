package models

import "github.com/shopspring/decimal"

// PlatformEarnings always carries all three platforms, zero when unused.
type PlatformEarnings struct {
	Uber       decimal.Decimal `json:"uber"`
	NinetyNine decimal.Decimal `json:"99"`
	InDriver   decimal.Decimal `json:"indriver"`
}

func (e PlatformEarnings) Get(p Platform) decimal.Decimal {
	switch p {
	case PlatformUber:
		return e.Uber
	case Platform99:
		return e.NinetyNine
	case PlatformInDriver:
		return e.InDriver
	}
	return decimal.Zero
}

func (e *PlatformEarnings) Add(p Platform, amount decimal.Decimal) {
	switch p {
	case PlatformUber:
		e.Uber = e.Uber.Add(amount)
	case Platform99:
		e.NinetyNine = e.NinetyNine.Add(amount)
	case PlatformInDriver:
		e.InDriver = e.InDriver.Add(amount)
	}
}

func (e PlatformEarnings) Sum() decimal.Decimal {
	return e.Uber.Add(e.NinetyNine).Add(e.InDriver)
}

type DailySummary struct {
	Date               string           `json:"date"`
	TotalEarnings      decimal.Decimal  `json:"total_earnings"`
	TotalExpenses      decimal.Decimal  `json:"total_expenses"`
	NetProfit          decimal.Decimal  `json:"net_profit"`
	TimeOnline         int              `json:"time_online"`
	TotalRides         int              `json:"total_rides"`
	EarningsByPlatform PlatformEarnings `json:"earnings_by_platform"`
	TotalBonus         decimal.Decimal  `json:"total_bonus"`
}
