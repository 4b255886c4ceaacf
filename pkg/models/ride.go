package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Ride struct {
	ID            string              `json:"id"`
	UserID        string              `json:"user_id"`
	Platform      Platform            `json:"platform"`
	Date          time.Time           `json:"date"`
	Value         decimal.Decimal     `json:"value"`
	Distance      decimal.Decimal     `json:"distance"`
	Duration      int                 `json:"duration"`
	Category      string              `json:"category"`
	Bonus         decimal.Decimal     `json:"bonus"`
	Multiplier    decimal.NullDecimal `json:"multiplier"`
	TotalEarnings decimal.Decimal     `json:"total_earnings"`
	ExternalID    *string             `json:"external_id,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// RideInput is the raw, loosely typed ride payload. Amount fields accept
// numbers or numeric strings; anything unparseable becomes zero.
type RideInput struct {
	Platform   string      `json:"platform" validate:"required,oneof=uber 99 indriver"`
	Date       *time.Time  `json:"date"`
	Value      interface{} `json:"value"`
	Distance   interface{} `json:"distance"`
	Duration   interface{} `json:"duration"`
	Category   string      `json:"category" validate:"max=64"`
	Bonus      interface{} `json:"bonus"`
	Multiplier interface{} `json:"multiplier"`
}
