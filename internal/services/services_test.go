package services

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starstrip/starstrip-planner/internal/catalog"
	"github.com/starstrip/starstrip-planner/internal/holiday"
	"github.com/starstrip/starstrip-planner/internal/model"
	"github.com/starstrip/starstrip-planner/internal/route"
	"github.com/starstrip/starstrip-planner/internal/store"
	"github.com/starstrip/starstrip-planner/internal/store/sqlite"
)

func newStore(t *testing.T) store.Store {
	t.Helper()
	s, err := sqlite.New(filepath.Join(t.TempDir(), "planner.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seededSources() func() route.RandomSource {
	return func() route.RandomSource { return rand.New(rand.NewPCG(7, 11)) }
}

func day(s string) time.Time {
	t, _ := time.Parse(model.DateLayout, s)
	return t
}

type stubHolidays struct {
	list []holiday.Holiday
	err  error
}

func (s stubHolidays) PublicHolidays(context.Context, string, int) ([]holiday.Holiday, error) {
	return s.list, s.err
}

func TestRouteGenerate(t *testing.T) {
	hs := stubHolidays{list: []holiday.Holiday{{Date: "2025-05-01", Name: "Labour Day"}, {Date: "2025-12-25"}}}
	svc := NewRouteService(catalog.Default(), hs, zerolog.Nop()).WithSourceFactory(seededSources())

	req := RouteRequest{StartLocation: "Beijing", From: day("2025-05-01"), To: day("2025-05-03"), Scheme: model.SchemeValue, Country: "US"}
	res, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Itinerary, 3)
	assert.Equal(t, route.CalculateRouteTotals(res.Itinerary, model.SchemeValue), res.Totals)
	assert.Equal(t, []string{"Beijing", "Beijing", "Beijing"}, res.Report.CitySchedule)
	require.Len(t, res.Holidays, 1)
	assert.Equal(t, "Labour Day", res.Holidays[0].Name)

	again, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, res.Itinerary, again.Itinerary, "same seed, same plan")
}

func TestRouteGenerateDegradesWithoutHolidays(t *testing.T) {
	svc := NewRouteService(catalog.Default(), stubHolidays{err: errors.New("offline")}, zerolog.Nop())
	res, err := svc.Generate(context.Background(), RouteRequest{
		StartLocation: "Shanghai", From: day("2025-05-01"), To: day("2025-05-01"), Scheme: model.SchemeTime, Country: "US",
	})
	require.NoError(t, err)
	assert.Len(t, res.Itinerary, 1)
	assert.Nil(t, res.Holidays)
}

func TestRoutePreviewCoversEveryScheme(t *testing.T) {
	svc := NewRouteService(catalog.Default(), nil, zerolog.Nop()).WithSourceFactory(seededSources())
	out, err := svc.Preview(context.Background(), RouteRequest{StartLocation: "Beijing", From: day("2025-05-01"), To: day("2025-05-02")})
	require.NoError(t, err)
	require.Len(t, out, 4)
	for i, scheme := range model.Schemes() {
		assert.Equal(t, scheme, out[i].Scheme)
		assert.Len(t, out[i].Itinerary, 2)
		assert.Equal(t, route.CalculateRouteTotals(out[i].Itinerary, scheme), out[i].Totals)
	}
}

func TestRoutePreviewHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := NewRouteService(catalog.Default(), nil, zerolog.Nop())
	_, err := svc.Preview(ctx, RouteRequest{StartLocation: "Beijing", From: day("2025-05-01"), To: day("2025-05-02")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTripLedger(t *testing.T) {
	ctx := context.Background()
	svc := NewTripService(newStore(t))

	_, err := svc.Record(ctx, "user_1", TripInput{Name: "Spring", StartDate: "2025-03-01", EndDate: "2025-03-04", CarbonFootprint: 300})
	require.NoError(t, err)
	rec, err := svc.Record(ctx, "user_1", TripInput{
		Name: "Autumn", StartDate: "2024-10-01", EndDate: "2024-10-02",
		Breakdown: model.CarbonBreakdown{Flights: 255, Trains: 49.2, Accommodation: 50},
	})
	require.NoError(t, err)
	assert.Equal(t, 354.2, rec.CarbonFootprint, "derived from breakdown")
	assert.NotEmpty(t, rec.ID)

	_, err = svc.Record(ctx, "user_2", TripInput{Name: "Other", StartDate: "2025-01-01", EndDate: "2025-01-01", CarbonFootprint: 1})
	require.NoError(t, err)

	total, err := svc.TotalCarbon(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, 654.2, total)

	yearly, err := svc.YearlyCarbon(ctx, "user_1", 2025)
	require.NoError(t, err)
	assert.Equal(t, 300.0, yearly)

	sum, err := svc.Summary(ctx, "user_1", 2024)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Trips)
	assert.Equal(t, 354.2, sum.Yearly)
	assert.Len(t, sum.Tips, 8)
	assert.Equal(t, 17, sum.Equivalents.Trees)

	list, err := svc.List(ctx, "user_1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestTripRecordValidation(t *testing.T) {
	svc := NewTripService(newStore(t))
	cases := map[string]TripInput{
		"no name":       {StartDate: "2025-01-01", EndDate: "2025-01-02"},
		"bad date":      {Name: "x", StartDate: "01/01/2025", EndDate: "2025-01-02"},
		"reversed":      {Name: "x", StartDate: "2025-01-03", EndDate: "2025-01-02"},
		"negative co2":  {Name: "x", StartDate: "2025-01-01", EndDate: "2025-01-02", CarbonFootprint: -1},
		"negative part": {Name: "x", StartDate: "2025-01-01", EndDate: "2025-01-02", Breakdown: model.CarbonBreakdown{Trains: -3}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Record(context.Background(), "user_1", in)
			assert.ErrorIs(t, err, model.ErrValidation)
		})
	}
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestProfileSnapshots(t *testing.T) {
	ctx := context.Background()
	svc := NewProfileService(newStore(t), zerolog.Nop())

	_, err := svc.Get(ctx, "user_1", model.KindPlanner)
	assert.ErrorIs(t, err, model.ErrNotFound)

	snap, err := svc.Put(ctx, "user_1", model.KindPlanner, json.RawMessage(`{"currentStep":7,"startLocation":"Xi'an"}`))
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Version)

	got, err := svc.Get(ctx, "user_1", model.KindPlanner)
	require.NoError(t, err)
	var st model.RoutePlannerState
	require.NoError(t, json.Unmarshal(got.Data, &st))
	assert.Equal(t, 3, st.CurrentStep, "normalised on write")
	assert.NotNil(t, st.Itinerary)

	_, err = svc.Put(ctx, "user_1", "wishlist", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, model.ErrValidation)
	_, err = svc.Put(ctx, "user_1", model.KindFavorites, json.RawMessage(`"nope"`))
	assert.ErrorIs(t, err, model.ErrValidation)

	require.NoError(t, svc.Delete(ctx, "user_1", model.KindPlanner))
	_, err = svc.Get(ctx, "user_1", model.KindPlanner)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestMergeGuest(t *testing.T) {
	ctx := context.Background()
	svc := NewProfileService(newStore(t), zerolog.Nop())

	userFav := model.Favorites{Attractions: []model.Attraction{{ID: "a", Name: "mine"}}, Restaurants: []model.Meal{}}
	guestFav := model.Favorites{Attractions: []model.Attraction{{ID: "a", Name: "guest"}, {ID: "b"}}, Restaurants: []model.Meal{{ID: "m"}}}
	guestPlan := model.NewRoutePlannerState()
	guestPlan.StartLocation = "Guilin"
	guestPlan.SelectedScheme = model.SchemeLowCarbon

	_, err := svc.Put(ctx, "user_1", model.KindFavorites, mustJSON(t, userFav))
	require.NoError(t, err)
	_, err = svc.Put(ctx, "guest_1", model.KindFavorites, mustJSON(t, guestFav))
	require.NoError(t, err)
	_, err = svc.Put(ctx, "guest_1", model.KindPlanner, mustJSON(t, guestPlan))
	require.NoError(t, err)

	res, err := svc.MergeGuest(ctx, "user_1", "guest_1")
	require.NoError(t, err)
	assert.Equal(t, &MergeResult{Merged: true, PlannerAdopted: true}, res)

	snap, err := svc.Get(ctx, "user_1", model.KindFavorites)
	require.NoError(t, err)
	var fav model.Favorites
	require.NoError(t, json.Unmarshal(snap.Data, &fav))
	require.Len(t, fav.Attractions, 2)
	assert.Equal(t, "mine", fav.Attractions[0].Name)
	assert.Equal(t, "m", fav.Restaurants[0].ID)

	snap, err = svc.Get(ctx, "user_1", model.KindPlanner)
	require.NoError(t, err)
	var plan model.RoutePlannerState
	require.NoError(t, json.Unmarshal(snap.Data, &plan))
	assert.Equal(t, "Guilin", plan.StartLocation)

	_, err = svc.Get(ctx, "guest_1", model.KindFavorites)
	assert.ErrorIs(t, err, model.ErrNotFound, "guest snapshots removed")

	again, err := svc.MergeGuest(ctx, "user_1", "guest_1")
	require.NoError(t, err)
	assert.False(t, again.Merged)

	_, err = svc.MergeGuest(ctx, "user_1", "user_1")
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestMergeGuestKeepsNonEmptyUserPlanner(t *testing.T) {
	ctx := context.Background()
	svc := NewProfileService(newStore(t), zerolog.Nop())

	userPlan := model.NewRoutePlannerState()
	userPlan.CurrentStep = 2
	guestPlan := model.NewRoutePlannerState()
	guestPlan.StartLocation = "Macau"

	_, err := svc.Put(ctx, "user_1", model.KindPlanner, mustJSON(t, userPlan))
	require.NoError(t, err)
	_, err = svc.Put(ctx, "guest_1", model.KindPlanner, mustJSON(t, guestPlan))
	require.NoError(t, err)

	res, err := svc.MergeGuest(ctx, "user_1", "guest_1")
	require.NoError(t, err)
	assert.True(t, res.Merged)
	assert.False(t, res.PlannerAdopted)

	snap, err := svc.Get(ctx, "user_1", model.KindPlanner)
	require.NoError(t, err)
	var plan model.RoutePlannerState
	require.NoError(t, json.Unmarshal(snap.Data, &plan))
	assert.Equal(t, 2, plan.CurrentStep)
	assert.Empty(t, plan.StartLocation)
}
