package service

import (
	"context"
	"time"

	"ridetracker/pkg/apperr"
	"ridetracker/pkg/logger"
	"ridetracker/pkg/models"
	"ridetracker/storage"
)

type SessionService interface {
	Start(ctx context.Context, userID string) (*models.OnlineSession, error)
	// End closes the user's open session with the given id. Unknown,
	// foreign or already closed sessions are not found.
	End(ctx context.Context, userID, sessionID string) (*models.OnlineSession, error)
	Toggle(ctx context.Context, userID string) (models.SessionState, error)
	Current(ctx context.Context, userID string) (models.SessionState, error)
}

type sessionService struct {
	stg storage.ISessionStorage
	log logger.ILogger
	now func() time.Time
}

func NewSessionService(stg storage.IStorage, log logger.ILogger, opts Options) SessionService {
	opts = opts.withDefaults()
	return &sessionService{
		stg: stg.Session(),
		log: log,
		now: opts.Now,
	}
}

func (s *sessionService) Start(ctx context.Context, userID string) (*models.OnlineSession, error) {
	session, err := s.stg.Start(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}
	s.log.Info("driver online",
		logger.String("user_id", userID),
		logger.String("session_id", session.ID),
		logger.Time("start_time", session.StartTime),
	)
	return session, nil
}

func (s *sessionService) End(ctx context.Context, userID, sessionID string) (*models.OnlineSession, error) {
	open, err := s.stg.GetOpen(ctx, userID)
	if err != nil {
		return nil, err
	}
	if open == nil || open.ID != sessionID {
		return nil, apperr.NotFound("no open session %s", sessionID)
	}

	session, err := s.stg.End(ctx, sessionID, s.now())
	if err != nil {
		return nil, err
	}
	s.log.Info("driver offline",
		logger.String("user_id", userID),
		logger.String("session_id", session.ID),
		logger.Time("end_time", *session.EndTime),
		logger.Any("duration_minutes", session.DurationMinutes),
	)
	return session, nil
}

func (s *sessionService) Toggle(ctx context.Context, userID string) (models.SessionState, error) {
	open, err := s.stg.GetOpen(ctx, userID)
	if err != nil {
		return models.SessionState{}, err
	}

	if open != nil {
		ended, err := s.End(ctx, userID, open.ID)
		if err != nil {
			return models.SessionState{}, err
		}
		s.log.Debug("online toggled", logger.String("user_id", userID), logger.Bool("online", false))
		return models.SessionState{Online: false, Session: ended}, nil
	}

	started, err := s.Start(ctx, userID)
	if err != nil {
		return models.SessionState{}, err
	}
	s.log.Debug("online toggled", logger.String("user_id", userID), logger.Bool("online", true))
	return models.SessionState{Online: true, Session: started}, nil
}

func (s *sessionService) Current(ctx context.Context, userID string) (models.SessionState, error) {
	open, err := s.stg.GetOpen(ctx, userID)
	if err != nil {
		return models.SessionState{}, err
	}
	return models.SessionState{Online: open != nil, Session: open}, nil
}
