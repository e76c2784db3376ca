package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/starstrip/starstrip-planner/internal/api/respond"
	"github.com/starstrip/starstrip-planner/internal/api/validate"
	"github.com/starstrip/starstrip-planner/internal/holiday"
	"github.com/starstrip/starstrip-planner/internal/model"
	"github.com/starstrip/starstrip-planner/internal/services"
)

var errUnknownNationality = errors.New("nationality has no holiday calendar")

// HolidayHandler proxies the public holiday provider.
type HolidayHandler struct {
	lookup services.HolidayLookup
	now    func() time.Time
}

func NewHolidayHandler(lookup services.HolidayLookup) *HolidayHandler {
	return &HolidayHandler{lookup: lookup, now: time.Now}
}

// ListHolidays handles GET /api/holidays?country=&year= or ?nationality=&year=
func (h *HolidayHandler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var country string
	switch {
	case q.Get("country") != "":
		c, err := validate.Country(q.Get("country"))
		if err != nil {
			respond.WriteBadRequest(w, err.Error())
			return
		}
		country = c
	case q.Get("nationality") != "":
		c, ok := holiday.CountryForNationality(q.Get("nationality"))
		if !ok {
			respond.WriteBadRequest(w, errUnknownNationality.Error())
			return
		}
		country = c
	default:
		respond.WriteBadRequest(w, "country or nationality is required")
		return
	}
	year, err := validate.Year(q.Get("year"), h.now().Year())
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	list, err := h.lookup.PublicHolidays(r.Context(), country, year)
	switch {
	case err == nil:
	case errors.Is(err, model.ErrValidation), errors.Is(err, model.ErrNotFound):
		writeServiceError(w, r, err)
		return
	default:
		log.Warn().Err(err).Str("country", country).Int("year", year).Msg("holiday provider unavailable")
		respond.WriteBadGateway(w, "holiday provider unavailable")
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"country":  country,
		"year":     year,
		"holidays": list,
		"count":    len(list),
	})
}
