package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/starstrip/starstrip-planner/internal/api/respond"
	"github.com/starstrip/starstrip-planner/internal/catalog"
)

// CatalogHandler serves read-only catalog listings.
type CatalogHandler struct {
	cat *catalog.Catalog
}

func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{cat: cat}
}

type cityResponse struct {
	Name   string         `json:"name"`
	Region catalog.Region `json:"region"`
}

// ListCities handles GET /api/catalog/cities
func (h *CatalogHandler) ListCities(w http.ResponseWriter, r *http.Request) {
	cities := h.cat.Cities()
	out := make([]cityResponse, 0, len(cities))
	for _, c := range cities {
		out = append(out, cityResponse{Name: c, Region: catalog.RegionForCity(c)})
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"cities": out,
		"count":  len(out),
	})
}

// ListAttractions handles GET /api/catalog/attractions?city=&type=&region=&q=
func (h *CatalogHandler) ListAttractions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	region := catalog.Region(q.Get("region"))
	if region != "" && !region.Valid() {
		respond.WriteBadRequest(w, "unknown region")
		return
	}
	list := h.cat.FilterAttractions(catalog.AttractionFilter{
		City:   q.Get("city"),
		Type:   q.Get("type"),
		Region: region,
		Query:  q.Get("q"),
	})
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"attractions": list,
		"count":       len(list),
	})
}

// GetAttraction handles GET /api/catalog/attractions/{attractionId}
func (h *CatalogHandler) GetAttraction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["attractionId"]
	a, ok := h.cat.Attraction(id)
	if !ok {
		respond.WriteNotFound(w, "Attraction not found")
		return
	}
	respond.WriteJSON(w, http.StatusOK, a)
}

// ListMeals handles GET /api/catalog/meals?city=&cuisine=&type=&q=
func (h *CatalogHandler) ListMeals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list := h.cat.FilterMeals(catalog.MealFilter{
		City:    q.Get("city"),
		Cuisine: q.Get("cuisine"),
		Type:    q.Get("type"),
		Query:   q.Get("q"),
	})
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"meals": list,
		"count": len(list),
	})
}

// GetMeal handles GET /api/catalog/meals/{mealId}
func (h *CatalogHandler) GetMeal(w http.ResponseWriter, r *http.Request) {
	m, ok := h.cat.Meal(mux.Vars(r)["mealId"])
	if !ok {
		respond.WriteNotFound(w, "Meal not found")
		return
	}
	respond.WriteJSON(w, http.StatusOK, m)
}
