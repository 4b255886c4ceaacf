package models

import "time"

type OnlineSession struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	DurationMinutes *int       `json:"duration_minutes"`
}

func (s *OnlineSession) IsOpen() bool {
	return s.EndTime == nil
}

type SessionState struct {
	Online  bool           `json:"online"`
	Session *OnlineSession `json:"session"`
}
