package api

import (
	"net/http"

	"github.com/starstrip/starstrip-planner/internal/api/respond"
	"github.com/starstrip/starstrip-planner/internal/carbon"
)

// CarbonHandler exposes the stateless footprint calculator.
type CarbonHandler struct{}

func NewCarbonHandler() *CarbonHandler { return &CarbonHandler{} }

type EstimateResponse struct {
	Breakdown   carbon.Breakdown  `json:"breakdown"`
	Tips        []carbon.Tip      `json:"tips"`
	Equivalents carbon.Comparison `json:"equivalents"`
}

// Estimate handles POST /api/carbon/estimate
func (h *CarbonHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	var req carbon.EstimateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	b, err := carbon.Estimate(req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, EstimateResponse{
		Breakdown:   b,
		Tips:        carbon.ReductionTips(b.Total),
		Equivalents: carbon.Equivalents(b.Total),
	})
}
