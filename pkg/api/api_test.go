package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"ridetracker/pkg/logger"
	"ridetracker/pkg/models"
	"ridetracker/pkg/secure"
	"ridetracker/service"
	"ridetracker/storage/memory"
)

var brt = time.FixedZone("BRT", -3*60*60)

type testServer struct {
	srv   *Server
	token string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	now := func() time.Time { return time.Date(2024, 5, 10, 10, 0, 0, 0, brt) }
	signer := secure.NewSigner("api-secret")
	svc := service.New(memory.New(), logger.NewNop(), service.Options{
		Location: brt,
		Now:      now,
		Signer:   signer,
	})

	user, err := svc.User().Register(context.Background(), 7, "bruno", "Bruno Lima")
	require.NoError(t, err)
	require.NoError(t, svc.User().SetCity(context.Background(), user.ID, "Recife"))

	token, err := signer.IssueAPIToken(user.ID, time.Hour)
	require.NoError(t, err)

	srv := New(svc, signer, logger.NewNop(), brt)
	srv.now = now
	return &testServer{srv: srv, token: token}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+ts.token)

	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec = httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	rec = httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAddRideAndSummary(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/rides", map[string]interface{}{
		"platform": "99", "value": "20", "bonus": 2, "multiplier": "1.5",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Ride    models.Ride         `json:"ride"`
		Summary models.DailySummary `json:"summary"`
	}
	decode(t, rec, &created)
	assert.True(t, decimal.NewFromInt(32).Equal(created.Ride.TotalEarnings))
	assert.Equal(t, 1, created.Summary.TotalRides)

	rec = ts.do(t, http.MethodGet, "/api/summary?date=2024-05-10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary models.DailySummary
	decode(t, rec, &summary)
	assert.Equal(t, "2024-05-10", summary.Date)
	assert.True(t, decimal.NewFromInt(32).Equal(summary.EarningsByPlatform.NinetyNine))

	rec = ts.do(t, http.MethodGet, "/api/rides?from=2024-05-10&to=2024-05-10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rides []models.Ride
	decode(t, rec, &rides)
	assert.Len(t, rides, 1)
}

func TestAddRideRejectsUnknownPlatform(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/rides", map[string]interface{}{"platform": "bolt", "value": 10})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/summary?date=10/05/2024", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExpenses(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/expenses/2024-05-10", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPut, "/api/expenses/2024-05-10", map[string]interface{}{"fuel": "50", "food": 15.5})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out struct {
		Expense models.Expense      `json:"expense"`
		Summary models.DailySummary `json:"summary"`
	}
	decode(t, rec, &out)
	assert.True(t, decimal.RequireFromString("65.5").Equal(out.Expense.Total))
	assert.True(t, decimal.RequireFromString("-65.5").Equal(out.Summary.NetProfit))

	rec = ts.do(t, http.MethodGet, "/api/expenses/2024-05-10", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListExpenses(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodPut, "/api/expenses/2024-05-08", map[string]interface{}{"fuel": 10})
	ts.do(t, http.MethodPut, "/api/expenses/2024-05-10", map[string]interface{}{"toll": "7,5"})

	rec := ts.do(t, http.MethodGet, "/api/expenses?from=2024-05-01&to=2024-05-10", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var list []models.Expense
	decode(t, rec, &list)
	require.Len(t, list, 2)
	assert.True(t, decimal.RequireFromString("7.5").Equal(list[0].Total))
	assert.True(t, decimal.NewFromInt(10).Equal(list[1].Total))

	rec = ts.do(t, http.MethodGet, "/api/expenses?from=2024-05-10&to=2024-05-01", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddRideAcceptsPlatformCase(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/rides", map[string]interface{}{"platform": "Uber", "value": "1e20000000"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Ride models.Ride `json:"ride"`
	}
	decode(t, rec, &created)
	assert.Equal(t, models.PlatformUber, created.Ride.Platform)
	assert.True(t, created.Ride.TotalEarnings.IsZero())
}

func TestCSVExportsStartWithBOM(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{"/api/export/rides.csv", "/api/export/summary.csv", "/api/export/report.csv"} {
		rec := ts.do(t, http.MethodGet, path+"?date=2024-05-10", nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.True(t, strings.HasPrefix(rec.Body.String(), "\ufeff"), path)
	}
}

func TestOnlineToggle(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/online/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var state models.SessionState
	decode(t, rec, &state)
	require.True(t, state.Online)
	require.NotNil(t, state.Session)

	rec = ts.do(t, http.MethodPost, "/api/online/"+state.Session.ID+"/end", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/online/"+state.Session.ID+"/end", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/online", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &state)
	assert.False(t, state.Online)
}

func TestRankingUsesDriverCity(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodPost, "/api/rides", map[string]interface{}{"platform": "uber", "value": 40})

	rec := ts.do(t, http.MethodGet, "/api/ranking?date=2024-05-10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		City    string                `json:"city"`
		Entries []models.RankingEntry `json:"entries"`
	}
	decode(t, rec, &out)
	assert.Equal(t, "Recife", out.City)
	require.Len(t, out.Entries, 1)
	assert.Equal(t, 1, out.Entries[0].Position)

	rec = ts.do(t, http.MethodGet, "/api/ranking?city=Olinda", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &out)
	assert.Empty(t, out.Entries)
}

func TestPlatformsWithoutPublicAPI(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/platforms/99/sync", nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/platforms/uber/connect", nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/platforms/bolt/sync", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExports(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodPost, "/api/rides", map[string]interface{}{"platform": "uber", "value": 25, "bonus": 5})

	rec := ts.do(t, http.MethodGet, "/api/export/report.csv?date=2024-05-10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "relatorio_completo_2024-05-10.csv")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\ufeff"))
	assert.Contains(t, rec.Body.String(), "R$ 30.00")

	rec = ts.do(t, http.MethodGet, "/api/export/report.xlsx?date=2024-05-10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "Corridas")
}
