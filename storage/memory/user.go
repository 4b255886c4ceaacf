package memory

import (
	"context"

	"github.com/google/uuid"

	"ridetracker/pkg/models"
)

type userStore struct{ s *Store }

func (u userStore) GetOrCreate(_ context.Context, teleID int64, username, name string) (*models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	now := u.s.now()
	for _, user := range u.s.users {
		if user.TelegramID == teleID {
			user.Username = username
			user.UpdatedAt = now
			cp := *user
			return &cp, nil
		}
	}

	user := &models.User{
		ID:         uuid.New().String(),
		TelegramID: teleID,
		Username:   username,
		Name:       name,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	u.s.users[user.ID] = user
	cp := *user
	return &cp, nil
}

func (u userStore) Get(_ context.Context, teleID int64) (*models.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	for _, user := range u.s.users {
		if user.TelegramID == teleID {
			cp := *user
			return &cp, nil
		}
	}
	return nil, nil
}

func (u userStore) GetByID(_ context.Context, id string) (*models.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	user, ok := u.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *user
	return &cp, nil
}

func (u userStore) UpdateCity(_ context.Context, id, city string) error {
	return u.update(id, func(user *models.User) { user.City = city })
}

func (u userStore) UpdateInstagram(_ context.Context, id, instagram string) error {
	return u.update(id, func(user *models.User) { user.Instagram = instagram })
}

func (u userStore) UpdatePhone(_ context.Context, id, phone string) error {
	return u.update(id, func(user *models.User) { user.Phone = &phone })
}

func (u userStore) update(id string, fn func(*models.User)) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	if user, ok := u.s.users[id]; ok {
		fn(user)
		user.UpdatedAt = u.s.now()
	}
	return nil
}
