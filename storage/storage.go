package storage

import (
	"context"
	"time"

	"ridetracker/pkg/models"
)

type IStorage interface {
	User() IUserStorage
	Ride() IRideStorage
	Expense() IExpenseStorage
	Session() ISessionStorage
	Token() ITokenStorage
	Close()
}

type IUserStorage interface {
	GetOrCreate(ctx context.Context, teleID int64, username, name string) (*models.User, error)
	Get(ctx context.Context, teleID int64) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateCity(ctx context.Context, id, city string) error
	UpdateInstagram(ctx context.Context, id, instagram string) error
	UpdatePhone(ctx context.Context, id, phone string) error
}

type IRideStorage interface {
	Create(ctx context.Context, ride *models.Ride) (*models.Ride, error)
	// CreateExternal inserts a synced ride unless one with the same
	// (user, platform, external id) already exists; created reports which.
	CreateExternal(ctx context.Context, ride *models.Ride) (created bool, err error)
	ListByUser(ctx context.Context, userID string, from, to time.Time) ([]*models.Ride, error)
	CityRides(ctx context.Context, city string, from, to time.Time) ([]models.CityRide, error)
}

type IExpenseStorage interface {
	// Upsert writes the record for (user, date), replacing any previous one.
	Upsert(ctx context.Context, expense *models.Expense) (*models.Expense, error)
	GetByDay(ctx context.Context, userID string, day time.Time) (*models.Expense, error)
	// ListByUser returns the records whose date falls in [from, to], newest first.
	ListByUser(ctx context.Context, userID string, from, to time.Time) ([]*models.Expense, error)
}

type ISessionStorage interface {
	// Start fails with a conflict when the user already has an open session.
	Start(ctx context.Context, userID string, at time.Time) (*models.OnlineSession, error)
	// End closes an open session. Unknown or already closed ids are not found.
	End(ctx context.Context, sessionID string, at time.Time) (*models.OnlineSession, error)
	GetOpen(ctx context.Context, userID string) (*models.OnlineSession, error)
	ListOverlapping(ctx context.Context, userID string, from, to time.Time) ([]*models.OnlineSession, error)
}

type ITokenStorage interface {
	Save(ctx context.Context, token *models.PlatformToken) error
	Get(ctx context.Context, userID string, platform models.Platform) (*models.PlatformToken, error)
	ListPlatforms(ctx context.Context, userID string) ([]models.Platform, error)
	Delete(ctx context.Context, userID string, platform models.Platform) error
}
