package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/starstrip/starstrip-planner/internal/api/respond"
	"github.com/starstrip/starstrip-planner/internal/api/validate"
	"github.com/starstrip/starstrip-planner/internal/services"
)

// TripHandler serves the per-owner carbon ledger.
type TripHandler struct {
	svc *services.TripService
	now func() time.Time
}

func NewTripHandler(svc *services.TripService) *TripHandler {
	return &TripHandler{svc: svc, now: time.Now}
}

// RecordTrip handles POST /api/users/{ownerKey}/trips
func (h *TripHandler) RecordTrip(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerVar(w, r)
	if !ok {
		return
	}
	var in services.TripInput
	if !decodeJSON(w, r, &in) {
		return
	}
	rec, err := h.svc.Record(r.Context(), owner, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, rec)
}

// ListTrips handles GET /api/users/{ownerKey}/trips
func (h *TripHandler) ListTrips(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerVar(w, r)
	if !ok {
		return
	}
	trips, err := h.svc.List(r.Context(), owner)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"trips": trips,
		"count": len(trips),
	})
}

// CarbonSummary handles GET /api/users/{ownerKey}/trips/carbon?year=
func (h *TripHandler) CarbonSummary(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerVar(w, r)
	if !ok {
		return
	}
	year, err := validate.Year(r.URL.Query().Get("year"), h.now().Year())
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	sum, err := h.svc.Summary(r.Context(), owner, year)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, sum)
}

func ownerVar(w http.ResponseWriter, r *http.Request) (string, bool) {
	owner := mux.Vars(r)["ownerKey"]
	if err := validate.ProfileKey("ownerKey", owner); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return "", false
	}
	return owner, true
}
