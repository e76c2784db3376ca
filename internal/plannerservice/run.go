package plannerservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/starstrip/starstrip-planner/internal/api"
	"github.com/starstrip/starstrip-planner/internal/catalog"
	"github.com/starstrip/starstrip-planner/internal/config"
	"github.com/starstrip/starstrip-planner/internal/factory"
	"github.com/starstrip/starstrip-planner/internal/health"
	"github.com/starstrip/starstrip-planner/internal/holiday"
	"github.com/starstrip/starstrip-planner/internal/logger"
	"github.com/starstrip/starstrip-planner/internal/store"
)

// Run starts the planner HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("planner-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}
	if log, err = logger.WithLevel(log, cfg.LogLevel); err != nil {
		log.Error().Err(err).Msg("Invalid LOG_LEVEL")
		return err
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Str("holiday_api_url", cfg.HolidayAPIURL).
		Msg("Planner service starting")

	// Create cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	st, holidays, err := initDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Warn().Err(err).Msg("store close failed")
		}
	}()

	router := buildRouter(st, holidays, cfg, log)

	svcHealth := startHealthCheckers(ctx, cfg, log, st, holidays)

	// Block startup until the store reports healthy; fail fast otherwise
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	// Graceful shutdown on context cancel or server error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// initDependencies constructs the store and the holiday client. The store is
// required; an empty holiday URL disables holiday annotation.
func initDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, *holiday.Client, error) {
	st, err := factory.NewStore(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store adapter unavailable")
		return nil, nil, err
	}

	if cfg.HolidayAPIURL == "" {
		log.Warn().Msg("holiday provider not configured; itineraries will not be annotated")
		return st, nil, nil
	}
	hc := holiday.New(holiday.Config{
		BaseURL:    cfg.HolidayAPIURL,
		Timeout:    cfg.HolidayTimeout(),
		MaxRetries: cfg.HolidayMaxRetries,
	}, log.With().Str("component", "holiday").Logger())
	return st, hc, nil
}

// buildRouter wires HTTP routes to handlers.
func buildRouter(st store.Store, holidays *holiday.Client, cfg *config.Config, log zerolog.Logger) *mux.Router {
	deps := api.Deps{
		Store:   st,
		Catalog: catalog.Default(),
		MaxDays: cfg.MaxTripDays,
		Log:     log,
	}
	// A nil *Client must not become a non-nil interface.
	if holidays != nil {
		deps.Holidays = holidays
	}
	return api.NewRouter(deps)
}

// startHealthCheckers starts the store probe (critical), the holiday probe
// (reported only) and the aggregator, then binds them to /api/health.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store, holidays *holiday.Client) *health.ServiceHealthChecker {
	interval := cfg.HealthInterval()

	storeProbe := store.NewStoreHealthChecker(st, log, cfg.HealthProbeTimeout())
	go storeProbe.Start(ctx, interval)
	svcHealth := health.NewServiceHealthChecker(log, storeProbe)

	if holidays != nil {
		holidayProbe := health.NewProbe("holiday", holidays.HealthPing, cfg.HealthProbeTimeout(), log)
		go holidayProbe.Start(ctx, interval)
		svcHealth.WithOptional(holidayProbe)
	}

	go svcHealth.Start(ctx, interval)
	api.BindServiceHealth(svcHealth.IsHealthy)
	api.BindComponents(svcHealth.Components)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// calculateStartupHealthTimeout returns interval*2 seconds with a minimum of 60.
func calculateStartupHealthTimeout(healthIntervalSeconds int) int {
	timeout := healthIntervalSeconds * 2
	if timeout < 60 {
		return 60
	}
	return timeout
}

type healthSource interface {
	IsHealthy() bool
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth healthSource) error {
	timeoutSeconds := calculateStartupHealthTimeout(cfg.HealthIntervalSeconds)
	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %d seconds", timeoutSeconds)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
