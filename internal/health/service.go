package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Component is one dependency line in the health report.
type Component struct {
	Name     string `json:"name"`
	Healthy  bool   `json:"healthy"`
	Critical bool   `json:"critical"`
	Error    string `json:"error,omitempty"`
}

// ServiceHealthChecker folds dependency checkers into one service flag. Only
// critical checkers gate the flag; optional ones are reported but never take
// the service down.
type ServiceHealthChecker struct {
	healthy  atomic.Bool
	critical []HealthChecker
	optional []HealthChecker
	log      zerolog.Logger
}

func NewServiceHealthChecker(log zerolog.Logger, critical ...HealthChecker) *ServiceHealthChecker {
	return &ServiceHealthChecker{critical: critical, log: log}
}

// WithOptional adds checkers that are reported without gating the flag.
func (h *ServiceHealthChecker) WithOptional(deps ...HealthChecker) *ServiceHealthChecker {
	h.optional = append(h.optional, deps...)
	return h
}

func (h *ServiceHealthChecker) IsHealthy() bool { return h.healthy.Load() }

// Components lists every checker, critical first.
func (h *ServiceHealthChecker) Components() []Component {
	out := make([]Component, 0, len(h.critical)+len(h.optional))
	add := func(c HealthChecker, critical bool) {
		comp := Component{Name: c.Name(), Healthy: c.IsHealthy(), Critical: critical}
		if e, ok := c.(interface{ LastError() string }); ok && !comp.Healthy {
			comp.Error = e.LastError()
		}
		out = append(out, comp)
	}
	for _, c := range h.critical {
		add(c, true)
	}
	for _, c := range h.optional {
		add(c, false)
	}
	return out
}

// Start re-evaluates the flag every interval until ctx ends.
func (h *ServiceHealthChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	h.evaluate()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.evaluate()
		}
	}
}

func (h *ServiceHealthChecker) evaluate() {
	up := true
	for _, c := range h.critical {
		if !c.IsHealthy() {
			up = false
			h.log.Debug().Str("checker", c.Name()).Msg("critical dependency down")
		}
	}
	if was := h.healthy.Swap(up); was == up {
		return
	}
	if up {
		h.log.Info().Msg("service health: UP")
	} else {
		h.log.Error().Msg("service health: DOWN")
	}
}
