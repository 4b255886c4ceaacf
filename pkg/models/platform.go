package models

import "strings"

type Platform string

const (
	PlatformUber     Platform = "uber"
	Platform99       Platform = "99"
	PlatformInDriver Platform = "indriver"
)

// Platforms is the fixed set of supported platforms, in display order.
var Platforms = []Platform{PlatformUber, Platform99, PlatformInDriver}

func ParsePlatform(s string) (Platform, bool) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case PlatformUber, Platform99, PlatformInDriver:
		return p, true
	}
	return "", false
}

func (p Platform) Name() string {
	switch p {
	case PlatformUber:
		return "Uber"
	case Platform99:
		return "99"
	case PlatformInDriver:
		return "InDriver"
	}
	return string(p)
}

// HasPublicAPI is true only for platforms we can sync rides from.
func (p Platform) HasPublicAPI() bool {
	return p == PlatformUber
}

type PlatformStatus struct {
	Platform            Platform `json:"platform"`
	Name                string   `json:"name"`
	IsAvailable         bool     `json:"is_available"`
	HasPublicAPI        bool     `json:"has_public_api"`
	RequiresPartnership bool     `json:"requires_partnership"`
	IsConnected         bool     `json:"is_connected"`
}

type SyncResult struct {
	Platform   Platform `json:"platform"`
	RidesCount int      `json:"rides_count"`
	Skipped    int      `json:"skipped"`
}
