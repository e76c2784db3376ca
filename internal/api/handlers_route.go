package api

import (
	"net/http"

	"github.com/starstrip/starstrip-planner/internal/api/respond"
	"github.com/starstrip/starstrip-planner/internal/api/validate"
	"github.com/starstrip/starstrip-planner/internal/holiday"
	"github.com/starstrip/starstrip-planner/internal/model"
	"github.com/starstrip/starstrip-planner/internal/services"
)

// RouteHandler exposes itinerary generation.
type RouteHandler struct {
	svc     *services.RouteService
	maxDays int
}

func NewRouteHandler(svc *services.RouteService, maxDays int) *RouteHandler {
	return &RouteHandler{svc: svc, maxDays: maxDays}
}

// GenerateRouteRequest is the body of the generate and preview endpoints.
// Scheme is ignored by preview.
type GenerateRouteRequest struct {
	StartLocation string `json:"startLocation"`
	From          string `json:"from"`
	To            string `json:"to"`
	Scheme        string `json:"scheme"`
	Country       string `json:"country,omitempty"`
	Nationality   string `json:"nationality,omitempty"`
}

type TotalsRequest struct {
	Scheme    string               `json:"scheme"`
	Itinerary []model.ItineraryDay `json:"itinerary"`
}

// GenerateRoute handles POST /api/routes/generate
func (h *RouteHandler) GenerateRoute(w http.ResponseWriter, r *http.Request) {
	var req GenerateRouteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rr, err := h.parse(req, true)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	res, err := h.svc.Generate(r.Context(), rr)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, res)
}

// PreviewRoutes handles POST /api/routes/preview
func (h *RouteHandler) PreviewRoutes(w http.ResponseWriter, r *http.Request) {
	var req GenerateRouteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rr, err := h.parse(req, false)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	plans, err := h.svc.Preview(r.Context(), rr)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"plans": plans,
		"count": len(plans),
	})
}

// ComputeTotals handles POST /api/routes/totals
func (h *RouteHandler) ComputeTotals(w http.ResponseWriter, r *http.Request) {
	var req TotalsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var scheme model.Scheme
	if req.Scheme != "" {
		s, err := validate.Scheme(req.Scheme)
		if err != nil {
			respond.WriteBadRequest(w, err.Error())
			return
		}
		scheme = s
	}
	respond.WriteJSON(w, http.StatusOK, h.svc.Totals(req.Itinerary, scheme))
}

func (h *RouteHandler) parse(req GenerateRouteRequest, needScheme bool) (services.RouteRequest, error) {
	var out services.RouteRequest
	if err := validate.NonEmpty("startLocation", req.StartLocation); err != nil {
		return out, err
	}
	from, to, err := validate.DateRange(req.From, req.To, h.maxDays)
	if err != nil {
		return out, err
	}
	out = services.RouteRequest{StartLocation: req.StartLocation, From: from, To: to}
	if needScheme {
		if out.Scheme, err = validate.Scheme(req.Scheme); err != nil {
			return out, err
		}
	}
	switch {
	case req.Country != "":
		if out.Country, err = validate.Country(req.Country); err != nil {
			return out, err
		}
	case req.Nationality != "":
		c, ok := holiday.CountryForNationality(req.Nationality)
		if !ok {
			return out, errUnknownNationality
		}
		out.Country = c
	}
	return out, nil
}
