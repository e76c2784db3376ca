// Package health tracks dependency probes and folds them into the service flag
// served on /api/health.
package health

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/starstrip/starstrip-planner/internal/metrics"
)

const defaultProbeTimeout = 2 * time.Second

// HealthChecker is one monitored dependency.
type HealthChecker interface {
	Name() string
	IsHealthy() bool
	Start(ctx context.Context, interval time.Duration)
}

// HealthPinger is implemented by drivers that have a cheap liveness call.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}

// ProbeFunc returns nil while the dependency is reachable.
type ProbeFunc func(ctx context.Context) error

// Probe runs a ProbeFunc on an interval and caches the outcome.
type Probe struct {
	name    string
	fn      ProbeFunc
	timeout time.Duration
	log     zerolog.Logger

	healthy atomic.Bool
	mu      sync.Mutex
	lastErr string
}

// NewProbe reports unhealthy until the first successful run.
func NewProbe(name string, fn ProbeFunc, timeout time.Duration, log zerolog.Logger) *Probe {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	metrics.DependencyUp.WithLabelValues(name).Set(0)
	return &Probe{name: name, fn: fn, timeout: timeout, log: log}
}

func (p *Probe) Name() string    { return p.name }
func (p *Probe) IsHealthy() bool { return p.healthy.Load() }

// LastError is the message of the most recent failed run, empty once it recovers.
func (p *Probe) LastError() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Start probes immediately and then every interval until ctx ends.
func (p *Probe) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.run(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.run(ctx)
		}
	}
}

func (p *Probe) run(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	err := p.fn(probeCtx)
	cancel()
	if ctx.Err() != nil {
		return
	}

	p.mu.Lock()
	if err != nil {
		p.lastErr = err.Error()
	} else {
		p.lastErr = ""
	}
	p.mu.Unlock()

	up := err == nil
	was := p.healthy.Swap(up)
	if up {
		metrics.DependencyUp.WithLabelValues(p.name).Set(1)
	} else {
		metrics.DependencyUp.WithLabelValues(p.name).Set(0)
	}
	switch {
	case up && !was:
		p.log.Info().Str("checker", p.name).Msg("dependency healthy")
	case !up && was:
		p.log.Error().Err(err).Str("checker", p.name).Msg("dependency unhealthy")
	case !up:
		p.log.Debug().Err(err).Str("checker", p.name).Msg("dependency still unhealthy")
	}
}
