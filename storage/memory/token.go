package memory

import (
	"context"

	"ridetracker/pkg/models"
)

type tokenStore struct{ s *Store }

func (t tokenStore) Save(_ context.Context, token *models.PlatformToken) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	cp := *token
	cp.UpdatedAt = t.s.now()
	t.s.tokens[tokenKey{userID: token.UserID, platform: token.Platform}] = &cp
	return nil
}

func (t tokenStore) Get(_ context.Context, userID string, platform models.Platform) (*models.PlatformToken, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	token, ok := t.s.tokens[tokenKey{userID: userID, platform: platform}]
	if !ok {
		return nil, nil
	}
	cp := *token
	return &cp, nil
}

func (t tokenStore) ListPlatforms(_ context.Context, userID string) ([]models.Platform, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	var out []models.Platform
	for _, p := range models.Platforms {
		if _, ok := t.s.tokens[tokenKey{userID: userID, platform: p}]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (t tokenStore) Delete(_ context.Context, userID string, platform models.Platform) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	delete(t.s.tokens, tokenKey{userID: userID, platform: platform})
	return nil
}
