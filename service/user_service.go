package service

import (
	"context"
	"strings"

	"ridetracker/pkg/apperr"
	"ridetracker/pkg/logger"
	"ridetracker/pkg/models"
	"ridetracker/storage"
)

type UserService interface {
	Register(ctx context.Context, teleID int64, username, name string) (*models.User, error)
	Get(ctx context.Context, teleID int64) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	SetCity(ctx context.Context, id, city string) error
	SetInstagram(ctx context.Context, id, instagram string) error
	SetPhone(ctx context.Context, id, phone string) error
}

type userService struct {
	stg storage.IUserStorage
	log logger.ILogger
}

func NewUserService(stg storage.IStorage, log logger.ILogger) UserService {
	return &userService{
		stg: stg.User(),
		log: log,
	}
}

func (s *userService) Register(ctx context.Context, teleID int64, username, name string) (*models.User, error) {
	return s.stg.GetOrCreate(ctx, teleID, username, strings.TrimSpace(name))
}

func (s *userService) Get(ctx context.Context, teleID int64) (*models.User, error) {
	return s.stg.Get(ctx, teleID)
}

func (s *userService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.stg.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}
	return user, nil
}

func (s *userService) SetCity(ctx context.Context, id, city string) error {
	city = strings.TrimSpace(city)
	if err := validateVar("city", city, "required,max=128"); err != nil {
		return err
	}
	return s.stg.UpdateCity(ctx, id, city)
}

func (s *userService) SetInstagram(ctx context.Context, id, instagram string) error {
	instagram = strings.TrimSpace(instagram)
	if instagram != "" && !strings.HasPrefix(instagram, "@") {
		instagram = "@" + instagram
	}
	if err := validateVar("instagram", instagram, "omitempty,max=64"); err != nil {
		return err
	}
	return s.stg.UpdateInstagram(ctx, id, instagram)
}

func (s *userService) SetPhone(ctx context.Context, id, phone string) error {
	if err := validateVar("phone", phone, "required,max=32"); err != nil {
		return err
	}
	return s.stg.UpdatePhone(ctx, id, phone)
}
