package service

import (
	"time"

	"ridetracker/pkg/logger"
	"ridetracker/pkg/secure"
	"ridetracker/storage"
)

type IServiceManager interface {
	User() UserService
	Ride() RideService
	Expense() ExpenseService
	Session() SessionService
	Ranking() RankingService
	Platform() PlatformService
}

// Options carries what services need beyond storage. Zero values are
// usable: local time, the wall clock and no Uber integration.
type Options struct {
	Location    *time.Location
	Now         func() time.Time
	Uber        UberAPI
	Sealer      *secure.Sealer
	Signer      *secure.Signer
	SyncTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.SyncTimeout <= 0 {
		o.SyncTimeout = 30 * time.Second
	}
	return o
}

type service struct {
	userService     UserService
	rideService     RideService
	expenseService  ExpenseService
	sessionService  SessionService
	rankingService  RankingService
	platformService PlatformService
}

func New(stg storage.IStorage, log logger.ILogger, opts Options) IServiceManager {
	opts = opts.withDefaults()
	return &service{
		userService:     NewUserService(stg, log),
		rideService:     NewRideService(stg, log, opts),
		expenseService:  NewExpenseService(stg, log, opts),
		sessionService:  NewSessionService(stg, log, opts),
		rankingService:  NewRankingService(stg, log, opts),
		platformService: NewPlatformService(stg, log, opts),
	}
}

func (s *service) User() UserService {
	return s.userService
}

func (s *service) Ride() RideService {
	return s.rideService
}

func (s *service) Expense() ExpenseService {
	return s.expenseService
}

func (s *service) Session() SessionService {
	return s.sessionService
}

func (s *service) Ranking() RankingService {
	return s.rankingService
}

func (s *service) Platform() PlatformService {
	return s.platformService
}
