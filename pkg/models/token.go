package models

import "time"

// PlatformToken holds OAuth credentials for one user and platform.
// The platform service seals both tokens before they reach storage.
type PlatformToken struct {
	UserID       string     `json:"user_id"`
	Platform     Platform   `json:"platform"`
	AccessToken  string     `json:"-"`
	RefreshToken string     `json:"-"`
	ExpiresAt    *time.Time `json:"expires_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
