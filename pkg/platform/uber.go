// Package platform talks to ride-hailing platforms. Only Uber exposes a
// public API; 99 and InDriver have no client at all.
package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"

	"ridetracker/config"
	"ridetracker/pkg/logger"
)

const (
	historyPageSize = 50
	maxHistoryPages = 20
)

// DefaultUberScopes are requested on authorization.
var DefaultUberScopes = []string{"profile", "history", "history_lite"}

// ErrUnauthorized is returned when the platform rejects the access token.
var ErrUnauthorized = errors.New("platform: access token rejected")

// HistoryRide is one trip from the Uber history endpoint, normalised.
type HistoryRide struct {
	ExternalID string
	Status     string
	StartTime  time.Time
	Fare       decimal.Decimal
	Distance   decimal.Decimal
	Duration   int
	ProductID  string
}

type UberClient struct {
	oauth      *oauth2.Config
	apiURL     string
	httpClient *http.Client
	log        logger.ILogger
}

func NewUberClient(cfg config.Config, httpClient *http.Client, log logger.ILogger) *UberClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &UberClient{
		oauth: &oauth2.Config{
			ClientID:     cfg.UberClientID,
			ClientSecret: cfg.UberClientSecret,
			RedirectURL:  cfg.UberRedirectURI,
			Scopes:       DefaultUberScopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.UberAuthURL,
				TokenURL:  cfg.UberTokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		apiURL:     strings.TrimRight(cfg.UberAPIURL, "/"),
		httpClient: httpClient,
		log:        log,
	}
}

func (c *UberClient) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

func (c *UberClient) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return c.oauth.Exchange(c.withClient(ctx), code)
}

// Refresh trades a refresh token for a new access token.
func (c *UberClient) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, errors.New("platform: no refresh token")
	}
	src := c.oauth.TokenSource(c.withClient(ctx), &oauth2.Token{RefreshToken: refreshToken})
	return src.Token()
}

// History pages through /v1.2/history and returns trips that started inside
// [from, to]. A zero from or to leaves that side open.
func (c *UberClient) History(ctx context.Context, accessToken string, from, to time.Time) ([]HistoryRide, error) {
	var out []HistoryRide
	for page := 0; page < maxHistoryPages; page++ {
		resp, err := c.historyPage(ctx, accessToken, page*historyPageSize, historyPageSize)
		if err != nil {
			return nil, err
		}
		for _, item := range resp.History {
			ride := item.normalise()
			if !from.IsZero() && ride.StartTime.Before(from) {
				continue
			}
			if !to.IsZero() && ride.StartTime.After(to) {
				continue
			}
			out = append(out, ride)
		}
		if len(resp.History) < historyPageSize || (page+1)*historyPageSize >= resp.Count {
			break
		}
	}
	return out, nil
}

func (c *UberClient) historyPage(ctx context.Context, accessToken string, offset, limit int) (*historyResponse, error) {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/v1.2/history?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("uber history: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		c.log.Warning("uber history returned non-200", logger.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("uber history: unexpected status %d", resp.StatusCode)
	}

	var body historyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("uber history: decode: %w", err)
	}
	return &body, nil
}

func (c *UberClient) withClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

type historyResponse struct {
	Offset  int           `json:"offset"`
	Limit   int           `json:"limit"`
	Count   int           `json:"count"`
	History []historyItem `json:"history"`
}

type historyItem struct {
	RequestID   string          `json:"request_id"`
	Status      string          `json:"status"`
	ProductID   string          `json:"product_id"`
	RequestTime int64           `json:"request_time"`
	StartTime   int64           `json:"start_time"`
	EndTime     int64           `json:"end_time"`
	Distance    decimal.Decimal `json:"distance"`
	Duration    int             `json:"duration"`
	Fare        *struct {
		Amount   decimal.Decimal `json:"amount"`
		Currency string          `json:"currency"`
	} `json:"fare"`
}

func (i historyItem) normalise() HistoryRide {
	ride := HistoryRide{
		ExternalID: i.RequestID,
		Status:     i.Status,
		Distance:   i.Distance,
		Duration:   i.Duration,
		ProductID:  i.ProductID,
		Fare:       decimal.Zero,
	}
	if i.Fare != nil {
		ride.Fare = i.Fare.Amount
	}

	switch {
	case i.StartTime > 0:
		ride.StartTime = time.Unix(i.StartTime, 0)
	case i.RequestTime > 0:
		ride.StartTime = time.Unix(i.RequestTime, 0)
	}
	if ride.Duration == 0 && i.StartTime > 0 && i.EndTime > i.StartTime {
		ride.Duration = int((i.EndTime - i.StartTime) / 60)
	}
	return ride
}
