package api

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/starstrip/starstrip-planner/internal/api/respond"
	"github.com/starstrip/starstrip-planner/internal/health"
)

// HealthHandler serves the liveness report.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

// healthyFlag backs the default reporter until run.go binds the aggregator.
var healthyFlag atomic.Int32

var (
	serviceIsHealthy  = func() bool { return healthyFlag.Load() == 1 }
	serviceComponents func() []health.Component
)

// BindServiceHealth injects the service health function.
func BindServiceHealth(f func() bool) { serviceIsHealthy = f }

// BindComponents injects the per-dependency report; nil hides it.
func BindComponents(f func() []health.Component) { serviceComponents = f }

// HealthReport is the body of GET /api/health.
type HealthReport struct {
	Status     string             `json:"status"`
	Timestamp  string             `json:"timestamp"`
	Components []health.Component `json:"components,omitempty"`
}

// CheckHealth always answers 200; load balancers read status from the body.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	rep := HealthReport{Status: "unhealthy", Timestamp: time.Now().UTC().Format(time.RFC3339)}
	if serviceIsHealthy() {
		rep.Status = "healthy"
	}
	if serviceComponents != nil {
		rep.Components = serviceComponents()
	}
	respond.WriteJSON(w, http.StatusOK, rep)
}
