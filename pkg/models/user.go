package models

import "time"

type User struct {
	ID         string    `json:"id"`
	TelegramID int64     `json:"telegram_id"`
	Username   string    `json:"username"`
	Name       string    `json:"name"`
	Phone      *string   `json:"phone"`
	City       string    `json:"city"`
	Instagram  string    `json:"instagram"`
	IsAdmin    bool      `json:"is_admin"`
	IsBlocked  bool      `json:"is_blocked"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
