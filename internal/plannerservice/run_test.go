package plannerservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starstrip/starstrip-planner/internal/config"
	"github.com/starstrip/starstrip-planner/internal/holiday"
	"github.com/starstrip/starstrip-planner/internal/store/sqlite"
)

func TestCalculateStartupHealthTimeout(t *testing.T) {
	assert.Equal(t, 60, calculateStartupHealthTimeout(5))
	assert.Equal(t, 60, calculateStartupHealthTimeout(30))
	assert.Equal(t, 120, calculateStartupHealthTimeout(60))
}

type healthFlag struct{ v atomic.Bool }

func (f *healthFlag) IsHealthy() bool { return f.v.Load() }

func TestWaitUntilHealthy(t *testing.T) {
	cfg := config.NewForTesting()
	f := &healthFlag{}
	go func() {
		time.Sleep(300 * time.Millisecond)
		f.v.Store(true)
	}()
	require.NoError(t, waitUntilHealthy(context.Background(), cfg, f))
}

func TestWaitUntilHealthyHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := waitUntilHealthy(ctx, config.NewForTesting(), &healthFlag{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildRouterWithoutHolidays(t *testing.T) {
	cfg := config.NewForTesting()
	st, err := sqlite.New(filepath.Join(t.TempDir(), "p.db"))
	require.NoError(t, err)
	defer st.Close()

	router := buildRouter(st, nil, cfg, zerolog.Nop())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/holidays?country=CN", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code, "holiday route disabled")

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/catalog/cities", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestStartHealthCheckersReportsStore(t *testing.T) {
	cfg := config.NewForTesting()
	cfg.HealthIntervalSeconds = 1
	st, err := sqlite.New(filepath.Join(t.TempDir(), "h.db"))
	require.NoError(t, err)
	defer st.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc := startHealthCheckers(ctx, cfg, zerolog.Nop(), st, nil)
	assert.Eventually(t, svc.IsHealthy, 5*time.Second, 50*time.Millisecond)
}

func TestStartHealthCheckersHolidayIsOptional(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer provider.Close()

	cfg := config.NewForTesting()
	cfg.HealthIntervalSeconds = 1
	st, err := sqlite.New(filepath.Join(t.TempDir(), "h.db"))
	require.NoError(t, err)
	defer st.Close()
	hc := holiday.New(holiday.Config{BaseURL: provider.URL, Timeout: time.Second}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc := startHealthCheckers(ctx, cfg, zerolog.Nop(), st, hc)
	assert.Eventually(t, svc.IsHealthy, 5*time.Second, 50*time.Millisecond)

	assert.Eventually(t, func() bool {
		comps := svc.Components()
		return len(comps) == 2 && comps[1].Name == "holiday" && comps[1].Error == "holiday provider status 503"
	}, 5*time.Second, 50*time.Millisecond)
	assert.True(t, svc.IsHealthy(), "holiday outage does not gate the service")
}
