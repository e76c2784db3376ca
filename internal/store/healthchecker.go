package store

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/starstrip/starstrip-planner/internal/health"
	"github.com/starstrip/starstrip-planner/internal/model"
)

// healthProbeKey never names a real profile.
const healthProbeKey = "__health_check__"

// NewStoreHealthChecker returns the critical "store" probe for s.
func NewStoreHealthChecker(s Store, log zerolog.Logger, probeTimeout time.Duration) *health.Probe {
	return health.NewProbe("store", func(ctx context.Context) error { return Ping(ctx, s) }, probeTimeout, log)
}

// Ping uses the driver's HealthPing when it has one and otherwise reads a
// snapshot that cannot exist; ErrNotFound means the store answered.
func Ping(ctx context.Context, s Store) error {
	if p, ok := s.(health.HealthPinger); ok {
		return p.HealthPing(ctx)
	}
	_, err := s.Profiles().GetSnapshot(ctx, healthProbeKey, model.KindPlanner)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return err
	}
	return nil
}
