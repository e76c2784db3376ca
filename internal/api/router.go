package api

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/starstrip/starstrip-planner/internal/api/recovery"
	"github.com/starstrip/starstrip-planner/internal/catalog"
	"github.com/starstrip/starstrip-planner/internal/services"
	"github.com/starstrip/starstrip-planner/internal/store"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Store    store.Store
	Catalog  *catalog.Catalog
	Holidays services.HolidayLookup
	MaxDays  int
	Log      zerolog.Logger
}

// NewRouter creates the HTTP router with every API route.
func NewRouter(d Deps) *mux.Router {
	router := mux.NewRouter()

	// Global middlewares
	router.Use(recovery.Middleware)

	routeService := services.NewRouteService(d.Catalog, d.Holidays, d.Log)
	profileService := services.NewProfileService(d.Store, d.Log)
	tripService := services.NewTripService(d.Store)

	healthHandler := NewHealthHandler()
	catalogHandler := NewCatalogHandler(d.Catalog)
	routeHandler := NewRouteHandler(routeService, d.MaxDays)
	profileHandler := NewProfileHandler(profileService)
	tripHandler := NewTripHandler(tripService)
	carbonHandler := NewCarbonHandler()

	// Health and metrics
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Catalog
	router.HandleFunc("/api/catalog/cities", catalogHandler.ListCities).Methods("GET")
	router.HandleFunc("/api/catalog/attractions", catalogHandler.ListAttractions).Methods("GET")
	router.HandleFunc("/api/catalog/attractions/{attractionId}", catalogHandler.GetAttraction).Methods("GET")
	router.HandleFunc("/api/catalog/meals", catalogHandler.ListMeals).Methods("GET")
	router.HandleFunc("/api/catalog/meals/{mealId}", catalogHandler.GetMeal).Methods("GET")

	// Itineraries
	router.HandleFunc("/api/routes/generate", routeHandler.GenerateRoute).Methods("POST")
	router.HandleFunc("/api/routes/preview", routeHandler.PreviewRoutes).Methods("POST")
	router.HandleFunc("/api/routes/totals", routeHandler.ComputeTotals).Methods("POST")

	// Profile snapshots; the merge route is registered first so "merge" is never read as a key.
	router.HandleFunc("/api/profiles/merge", profileHandler.MergeGuest).Methods("POST")
	router.HandleFunc("/api/profiles/{profileKey}/{kind}", profileHandler.GetSnapshot).Methods("GET")
	router.HandleFunc("/api/profiles/{profileKey}/{kind}", profileHandler.PutSnapshot).Methods("PUT")
	router.HandleFunc("/api/profiles/{profileKey}/{kind}", profileHandler.DeleteSnapshot).Methods("DELETE")

	// Carbon ledger
	router.HandleFunc("/api/users/{ownerKey}/trips", tripHandler.RecordTrip).Methods("POST")
	router.HandleFunc("/api/users/{ownerKey}/trips", tripHandler.ListTrips).Methods("GET")
	router.HandleFunc("/api/users/{ownerKey}/trips/carbon", tripHandler.CarbonSummary).Methods("GET")
	router.HandleFunc("/api/carbon/estimate", carbonHandler.Estimate).Methods("POST")

	if d.Holidays != nil {
		router.HandleFunc("/api/holidays", NewHolidayHandler(d.Holidays).ListHolidays).Methods("GET")
	}

	return router
}
