package bot

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"

	"ridetracker/pkg/logger"
	"ridetracker/pkg/models"
	"ridetracker/service"
	"ridetracker/storage/memory"
)

func TestParseInputAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"25", "25", true},
		{"25,50", "25.5", true},
		{"R$ 12.30", "12.3", true},
		{" 0 ", "0", true},
		{"", "", false},
		{"doze", "", false},
		{"1.234,56", "", false},
		{"1e20000000", "", false},
	}
	for _, c := range cases {
		got, ok := parseInputAmount(c.in)
		assert.Equal(t, c.ok, ok, c.in)
		if c.ok {
			assert.True(t, decimal.RequireFromString(c.want).Equal(got), "%q: got %s", c.in, got)
		}
	}
}

func TestSessionStore(t *testing.T) {
	s := newSessionStore()

	sess := s.acquire(1, "u-1")
	sess.State = StateRideValue
	sess.Ride.Platform = "99"
	sess.unlock()

	again := s.acquire(1, "u-1")
	assert.Same(t, sess, again)
	assert.Equal(t, StateRideValue, again.State)
	again.clear()
	again.unlock()

	again = s.acquire(1, "u-1")
	assert.Equal(t, StateIdle, again.State)
	assert.Empty(t, again.Ride.Platform)
	assert.Equal(t, "u-1", again.UserID)
	again.unlock()
}

// chatContext is the slice of tele.Context the text handlers touch.
type chatContext struct {
	tele.Context
	sender *tele.User
	text   string

	mu   *sync.Mutex
	sent *[]string
}

func (c chatContext) Sender() *tele.User { return c.sender }
func (c chatContext) Text() string       { return c.text }

func (c chatContext) Send(what interface{}, _ ...interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	*c.sent = append(*c.sent, fmt.Sprint(what))
	return nil
}

func TestConcurrentMessagesAdvanceConversationInOrder(t *testing.T) {
	brt := time.FixedZone("BRT", -3*60*60)
	svc := service.New(memory.New(), logger.NewNop(), service.Options{Location: brt})
	b := &Bot{Log: logger.NewNop(), Svc: svc, Loc: brt, Sessions: newSessionStore()}

	sender := &tele.User{ID: 99, FirstName: "Carla"}
	user, err := svc.User().Register(context.Background(), sender.ID, "", "Carla")
	require.NoError(t, err)

	sess := b.Sessions.acquire(sender.ID, user.ID)
	sess.State = StateExpenseFuel
	sess.unlock()

	var mu sync.Mutex
	var sent []string
	ctx := chatContext{sender: sender, text: "10", mu: &mu, sent: &sent}

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, b.handleText(ctx))
		}()
	}
	wg.Wait()

	sess = b.Sessions.acquire(sender.ID, user.ID)
	assert.Equal(t, StateExpenseOther, sess.State)
	assert.Equal(t, "10", sess.Expense.Fuel)
	assert.Equal(t, "10", sess.Expense.Food)
	assert.Equal(t, "10", sess.Expense.Toll)
	sess.unlock()
	assert.Len(t, sent, 3)

	require.NoError(t, b.handleText(ctx))
	expense, err := svc.Expense().GetExpense(context.Background(), user.ID, b.now())
	require.NoError(t, err)
	require.NotNil(t, expense)
	assert.True(t, decimal.NewFromInt(40).Equal(expense.Total))

	sess = b.Sessions.acquire(sender.ID, user.ID)
	assert.Equal(t, StateIdle, sess.State)
	sess.unlock()
}

func TestSummaryText(t *testing.T) {
	s := models.DailySummary{
		Date:          "2024-05-10",
		TotalEarnings: decimal.RequireFromString("60"),
		TotalExpenses: decimal.RequireFromString("15.5"),
		NetProfit:     decimal.RequireFromString("44.5"),
		TimeOnline:    125,
		TotalRides:    2,
		EarningsByPlatform: models.PlatformEarnings{
			Uber:       decimal.RequireFromString("30"),
			NinetyNine: decimal.RequireFromString("30"),
		},
	}

	text := summaryText(s)
	assert.Contains(t, text, "10/05/2024")
	assert.Contains(t, text, "Lucro líquido: R$ 44.50")
	assert.Contains(t, text, "Online: 2h 05m")
	assert.Contains(t, text, "InDriver: R$ 0.00")
}

func TestRankingText(t *testing.T) {
	entries := []models.RankingEntry{
		{Position: 1, UserID: "a", Name: "Ana", Instagram: "@ana", TotalEarnings: decimal.NewFromInt(90), RidesCount: 3},
		{Position: 2, UserID: "b", Name: "Bruno <3", TotalEarnings: decimal.NewFromInt(40), RidesCount: 1},
	}

	text := rankingText("Recife", entries, "b")
	require.Contains(t, text, "1. Ana (@ana): R$ 90.00, 3 corridas")
	assert.Contains(t, text, "<b>2. Bruno &lt;3: R$ 40.00, 1 corridas</b>")

	assert.Contains(t, rankingText("Olinda", nil, "a"), "Nenhuma corrida em Olinda")
}

func TestPlatformsText(t *testing.T) {
	text := platformsText([]models.PlatformStatus{
		{Platform: models.PlatformUber, Name: "Uber", IsAvailable: true, IsConnected: true},
		{Platform: models.Platform99, Name: "99"},
	})
	assert.Contains(t, text, "✅ Uber: conectada")
	assert.Contains(t, text, "🔒 99: sem API pública")
}
