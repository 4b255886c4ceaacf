package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"ridetracker/pkg/apperr"
	"ridetracker/pkg/earnings"
	"ridetracker/pkg/models"
)

type sessionStore struct{ s *Store }

func (ss sessionStore) Start(_ context.Context, userID string, at time.Time) (*models.OnlineSession, error) {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()

	for _, existing := range ss.s.sessions {
		if existing.UserID == userID && existing.IsOpen() {
			return nil, apperr.Conflict("user already has an open session")
		}
	}

	session := &models.OnlineSession{ID: uuid.New().String(), UserID: userID, StartTime: at}
	ss.s.sessions[session.ID] = session
	return copySession(session), nil
}

func (ss sessionStore) End(_ context.Context, sessionID string, at time.Time) (*models.OnlineSession, error) {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()

	session, ok := ss.s.sessions[sessionID]
	if !ok || !session.IsOpen() {
		return nil, apperr.NotFound("no open session %s", sessionID)
	}
	if at.Before(session.StartTime) {
		at = session.StartTime
	}
	duration := earnings.SessionDuration(session.StartTime, at)
	session.EndTime = &at
	session.DurationMinutes = &duration
	return copySession(session), nil
}

func (ss sessionStore) GetOpen(_ context.Context, userID string) (*models.OnlineSession, error) {
	ss.s.mu.RLock()
	defer ss.s.mu.RUnlock()

	for _, session := range ss.s.sessions {
		if session.UserID == userID && session.IsOpen() {
			return copySession(session), nil
		}
	}
	return nil, nil
}

func (ss sessionStore) ListOverlapping(_ context.Context, userID string, from, to time.Time) ([]*models.OnlineSession, error) {
	ss.s.mu.RLock()
	defer ss.s.mu.RUnlock()

	var out []*models.OnlineSession
	for _, session := range ss.s.sessions {
		if session.UserID != userID || session.StartTime.After(to) {
			continue
		}
		if session.EndTime != nil && session.EndTime.Before(from) {
			continue
		}
		out = append(out, copySession(session))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func copySession(s *models.OnlineSession) *models.OnlineSession {
	cp := *s
	if s.EndTime != nil {
		end := *s.EndTime
		cp.EndTime = &end
	}
	if s.DurationMinutes != nil {
		d := *s.DurationMinutes
		cp.DurationMinutes = &d
	}
	return &cp
}
