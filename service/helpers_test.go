package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridetracker/pkg/logger"
	"ridetracker/pkg/models"
	"ridetracker/pkg/secure"
	"ridetracker/storage/memory"
)

var brt = time.FixedZone("BRT", -3*60*60)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	stg   *memory.Store
	clock *fakeClock
	svc   IServiceManager
	user  *models.User
}

func newFixture(t *testing.T, uber UberAPI) *fixture {
	t.Helper()
	stg := memory.New()
	clock := &fakeClock{t: time.Date(2024, 5, 10, 10, 0, 0, 0, brt)}

	sealer, err := secure.NewSealer(bytes.Repeat([]byte("s"), 32))
	require.NoError(t, err)

	opts := Options{
		Location:    brt,
		Now:         clock.Now,
		Sealer:      sealer,
		Signer:      secure.NewSigner("test-secret"),
		SyncTimeout: time.Second,
	}
	if uber != nil {
		opts.Uber = uber
	}

	svc := New(stg, logger.NewNop(), opts)
	user, err := svc.User().Register(context.Background(), 42, "ana", "Ana Souza")
	require.NoError(t, err)

	return &fixture{stg: stg, clock: clock, svc: svc, user: user}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}
