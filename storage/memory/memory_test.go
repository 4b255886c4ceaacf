package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridetracker/pkg/apperr"
	"ridetracker/pkg/models"
)

func TestSessionStartIsExclusive(t *testing.T) {
	ctx := context.Background()
	store := New()
	at := time.Date(2024, 5, 10, 10, 0, 0, 0, time.UTC)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		started   int
		conflicts int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Session().Start(ctx, "u1", at)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				started++
			} else if apperr.Is(err, apperr.KindConflict) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, started)
	assert.Equal(t, 19, conflicts)
}

func TestSessionEndOnce(t *testing.T) {
	ctx := context.Background()
	store := New()
	start := time.Date(2024, 5, 10, 10, 0, 0, 0, time.UTC)

	s, err := store.Session().Start(ctx, "u1", start)
	require.NoError(t, err)

	ended, err := store.Session().End(ctx, s.ID, start.Add(47*time.Minute+30*time.Second))
	require.NoError(t, err)
	require.NotNil(t, ended.DurationMinutes)
	assert.Equal(t, 47, *ended.DurationMinutes)

	_, err = store.Session().End(ctx, s.ID, start.Add(2*time.Hour))
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = store.Session().End(ctx, "missing", start)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	open, err := store.Session().GetOpen(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, open)
}

func TestExpenseUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	store := New()
	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	first, err := store.Expense().Upsert(ctx, &models.Expense{UserID: "u1", Date: day, Fuel: decimal.NewFromInt(30), Total: decimal.NewFromInt(30)})
	require.NoError(t, err)
	second, err := store.Expense().Upsert(ctx, &models.Expense{UserID: "u1", Date: day.Add(5 * time.Hour), Food: decimal.NewFromInt(10), Total: decimal.NewFromInt(10)})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	got, err := store.Expense().GetByDay(ctx, "u1", day)
	require.NoError(t, err)
	assert.True(t, got.Total.Equal(decimal.NewFromInt(10)))
	assert.True(t, got.Fuel.IsZero())
}

func TestCreateExternalDeduplicates(t *testing.T) {
	ctx := context.Background()
	store := New()
	ext := "trip-1"
	ride := &models.Ride{UserID: "u1", Platform: models.PlatformUber, ExternalID: &ext, Date: time.Now()}

	created, err := store.Ride().CreateExternal(ctx, ride)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = store.Ride().CreateExternal(ctx, ride)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestCityRidesFiltersByCity(t *testing.T) {
	ctx := context.Background()
	store := New()
	day := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	ana, _ := store.User().GetOrCreate(ctx, 1, "ana", "Ana")
	bia, _ := store.User().GetOrCreate(ctx, 2, "bia", "Bia")
	require.NoError(t, store.User().UpdateCity(ctx, ana.ID, "Recife"))
	require.NoError(t, store.User().UpdateCity(ctx, bia.ID, "Natal"))

	for _, id := range []string{ana.ID, bia.ID} {
		_, err := store.Ride().Create(ctx, &models.Ride{UserID: id, Platform: models.PlatformUber, Date: day, TotalEarnings: decimal.NewFromInt(10)})
		require.NoError(t, err)
	}

	rides, err := store.Ride().CityRides(ctx, "Recife", day.Add(-time.Hour), day.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, rides, 1)
	assert.Equal(t, ana.ID, rides[0].UserID)
	assert.Equal(t, "Ana", rides[0].Name)
}
