// Package memory is a process-local IStorage. It backs service tests and
// STORAGE_DRIVER=memory for local runs; it enforces the same uniqueness
// rules as the Postgres schema.
package memory

import (
	"sync"
	"time"

	"ridetracker/pkg/models"
	"ridetracker/storage"
)

type Store struct {
	mu sync.RWMutex

	users    map[string]*models.User
	rides    []*models.Ride
	expenses map[expenseKey]*models.Expense
	sessions map[string]*models.OnlineSession
	tokens   map[tokenKey]*models.PlatformToken

	now func() time.Time
}

type expenseKey struct {
	userID string
	date   string
}

type tokenKey struct {
	userID   string
	platform models.Platform
}

func New() *Store {
	return &Store{
		users:    make(map[string]*models.User),
		expenses: make(map[expenseKey]*models.Expense),
		sessions: make(map[string]*models.OnlineSession),
		tokens:   make(map[tokenKey]*models.PlatformToken),
		now:      time.Now,
	}
}

func (s *Store) Close() {}

func (s *Store) User() storage.IUserStorage       { return userStore{s} }
func (s *Store) Ride() storage.IRideStorage       { return rideStore{s} }
func (s *Store) Expense() storage.IExpenseStorage { return expenseStore{s} }
func (s *Store) Session() storage.ISessionStorage { return sessionStore{s} }
func (s *Store) Token() storage.ITokenStorage     { return tokenStore{s} }
