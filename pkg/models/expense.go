package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Expense struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Date      time.Time       `json:"date"`
	Fuel      decimal.Decimal `json:"fuel"`
	Food      decimal.Decimal `json:"food"`
	Toll      decimal.Decimal `json:"toll"`
	Other     decimal.Decimal `json:"other"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type ExpenseInput struct {
	Fuel  interface{} `json:"fuel"`
	Food  interface{} `json:"food"`
	Toll  interface{} `json:"toll"`
	Other interface{} `json:"other"`
}
