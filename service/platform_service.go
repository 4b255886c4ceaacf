package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"

	"ridetracker/pkg/apperr"
	"ridetracker/pkg/earnings"
	"ridetracker/pkg/logger"
	"ridetracker/pkg/models"
	"ridetracker/pkg/platform"
	"ridetracker/pkg/secure"
	"ridetracker/storage"
)

// UberAPI is the subset of the Uber client the platform service drives.
type UberAPI interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
	History(ctx context.Context, accessToken string, from, to time.Time) ([]platform.HistoryRide, error)
}

type PlatformService interface {
	Status(ctx context.Context, userID string) ([]models.PlatformStatus, error)
	// Connect returns the URL the driver must open to authorize access.
	Connect(ctx context.Context, userID string, p models.Platform) (string, error)
	// CompleteOAuth finishes the redirect and returns the connected user id.
	CompleteOAuth(ctx context.Context, state, code string) (string, error)
	Sync(ctx context.Context, userID string, p models.Platform, from, to time.Time) (models.SyncResult, error)
	// SyncAll syncs every connected platform, stopping at the first failure.
	SyncAll(ctx context.Context, userID string, from, to time.Time) ([]models.SyncResult, error)
	Disconnect(ctx context.Context, userID string, p models.Platform) error
}

type platformService struct {
	stg     storage.IStorage
	log     logger.ILogger
	uber    UberAPI
	sealer  *secure.Sealer
	signer  *secure.Signer
	timeout time.Duration
	now     func() time.Time
}

func NewPlatformService(stg storage.IStorage, log logger.ILogger, opts Options) PlatformService {
	opts = opts.withDefaults()
	return &platformService{
		stg:     stg,
		log:     log,
		uber:    opts.Uber,
		sealer:  opts.Sealer,
		signer:  opts.Signer,
		timeout: opts.SyncTimeout,
		now:     opts.Now,
	}
}

func (s *platformService) uberReady() bool {
	return s.uber != nil && s.sealer != nil && s.signer != nil
}

func (s *platformService) available(p models.Platform) error {
	if !p.HasPublicAPI() {
		return apperr.Unavailable("%s has no public API; integration requires a partnership", p.Name())
	}
	if !s.uberReady() {
		return apperr.Unavailable("%s integration is not configured", p.Name())
	}
	return nil
}

func (s *platformService) Status(ctx context.Context, userID string) ([]models.PlatformStatus, error) {
	connected, err := s.stg.Token().ListPlatforms(ctx, userID)
	if err != nil {
		return nil, err
	}
	isConnected := make(map[models.Platform]bool, len(connected))
	for _, p := range connected {
		isConnected[p] = true
	}

	out := make([]models.PlatformStatus, 0, len(models.Platforms))
	for _, p := range models.Platforms {
		out = append(out, models.PlatformStatus{
			Platform:            p,
			Name:                p.Name(),
			IsAvailable:         s.available(p) == nil,
			HasPublicAPI:        p.HasPublicAPI(),
			RequiresPartnership: !p.HasPublicAPI(),
			IsConnected:         isConnected[p],
		})
	}
	return out, nil
}

func (s *platformService) Connect(ctx context.Context, userID string, p models.Platform) (string, error) {
	if err := s.available(p); err != nil {
		return "", err
	}
	state, err := s.signer.IssueState(userID, string(p))
	if err != nil {
		return "", fmt.Errorf("issue oauth state: %w", err)
	}
	return s.uber.AuthCodeURL(state), nil
}

func (s *platformService) CompleteOAuth(ctx context.Context, state, code string) (string, error) {
	if err := s.available(models.PlatformUber); err != nil {
		return "", err
	}
	userID, p, err := s.signer.ParseState(state)
	if err != nil || p != string(models.PlatformUber) {
		return "", apperr.Validation("invalid oauth state")
	}
	if code == "" {
		return "", apperr.Validation("missing authorization code")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tok, err := s.uber.Exchange(ctx, code)
	if err != nil {
		return "", apperr.Upstream(err, "uber code exchange failed")
	}
	if err := s.saveToken(ctx, userID, models.PlatformUber, tok, ""); err != nil {
		return "", err
	}

	s.log.Info("platform connected", logger.String("user_id", userID), logger.String("platform", p))
	return userID, nil
}

func (s *platformService) Sync(ctx context.Context, userID string, p models.Platform, from, to time.Time) (models.SyncResult, error) {
	result := models.SyncResult{Platform: p}
	if err := s.available(p); err != nil {
		return result, err
	}
	log := s.log.With(logger.String("user_id", userID), logger.String("platform", string(p)))

	stored, err := s.stg.Token().Get(ctx, userID, p)
	if err != nil {
		return result, err
	}
	if stored == nil {
		return result, apperr.NotFound("%s is not connected", p.Name())
	}
	access, err := s.sealer.Open(stored.AccessToken)
	if err != nil {
		return result, fmt.Errorf("open access token: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	history, err := s.uber.History(ctx, access, from, to)
	if errors.Is(err, platform.ErrUnauthorized) {
		access, err = s.refresh(ctx, userID, p, stored)
		if err != nil {
			return result, err
		}
		history, err = s.uber.History(ctx, access, from, to)
	}
	if err != nil {
		log.Warning("platform sync failed", logger.Error(err))
		return result, apperr.Upstream(err, "%s history request failed", p.Name())
	}

	for _, h := range history {
		if h.Status != "" && h.Status != "completed" {
			result.Skipped++
			continue
		}
		created, err := s.stg.Ride().CreateExternal(ctx, s.rideFromHistory(userID, p, h))
		if err != nil {
			return result, fmt.Errorf("store synced ride: %w", err)
		}
		if created {
			result.RidesCount++
		} else {
			result.Skipped++
		}
	}

	log.Info("platform synced",
		logger.Time("from", from),
		logger.Time("to", to),
		logger.Int("created", result.RidesCount),
		logger.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (s *platformService) SyncAll(ctx context.Context, userID string, from, to time.Time) ([]models.SyncResult, error) {
	connected, err := s.stg.Token().ListPlatforms(ctx, userID)
	if err != nil {
		return nil, err
	}
	results := make([]models.SyncResult, 0, len(connected))
	for _, p := range connected {
		res, err := s.Sync(ctx, userID, p, from, to)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *platformService) Disconnect(ctx context.Context, userID string, p models.Platform) error {
	if err := s.stg.Token().Delete(ctx, userID, p); err != nil {
		return err
	}
	s.log.Info("platform disconnected", logger.String("user_id", userID), logger.String("platform", string(p)))
	return nil
}

// refresh runs once per sync. A failed refresh is surfaced, never retried.
func (s *platformService) refresh(ctx context.Context, userID string, p models.Platform, stored *models.PlatformToken) (string, error) {
	refreshToken, err := s.sealer.Open(stored.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("open refresh token: %w", err)
	}
	tok, err := s.uber.Refresh(ctx, refreshToken)
	if err != nil {
		return "", apperr.Upstream(err, "%s token refresh failed", p.Name())
	}
	if err := s.saveToken(ctx, userID, p, tok, refreshToken); err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// saveToken seals and stores tok. fallbackRefresh is kept when the
// provider does not rotate refresh tokens.
func (s *platformService) saveToken(ctx context.Context, userID string, p models.Platform, tok *oauth2.Token, fallbackRefresh string) error {
	access, err := s.sealer.Seal(tok.AccessToken)
	if err != nil {
		return fmt.Errorf("seal access token: %w", err)
	}
	refreshToken := tok.RefreshToken
	if refreshToken == "" {
		refreshToken = fallbackRefresh
	}
	refresh, err := s.sealer.Seal(refreshToken)
	if err != nil {
		return fmt.Errorf("seal refresh token: %w", err)
	}

	record := &models.PlatformToken{
		UserID:       userID,
		Platform:     p,
		AccessToken:  access,
		RefreshToken: refresh,
	}
	if !tok.Expiry.IsZero() {
		expiry := tok.Expiry
		record.ExpiresAt = &expiry
	}
	return s.stg.Token().Save(ctx, record)
}

func (s *platformService) rideFromHistory(userID string, p models.Platform, h platform.HistoryRide) *models.Ride {
	date := h.StartTime
	if date.IsZero() {
		date = s.now()
	}
	ride := &models.Ride{
		UserID:     userID,
		Platform:   p,
		Date:       date,
		Value:      h.Fare,
		Distance:   h.Distance,
		Duration:   h.Duration,
		Category:   h.ProductID,
		Bonus:      decimal.Zero,
		Multiplier: decimal.NewNullDecimal(decimal.NewFromInt(1)),
	}
	if h.ExternalID != "" {
		id := h.ExternalID
		ride.ExternalID = &id
	}
	ride.TotalEarnings = earnings.ComputeTotalEarnings(p, ride.Value, ride.Bonus, ride.Multiplier)
	return ride
}
