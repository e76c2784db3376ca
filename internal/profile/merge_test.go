package profile

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starstrip/starstrip-planner/internal/events"
	"github.com/starstrip/starstrip-planner/internal/identity"
	"github.com/starstrip/starstrip-planner/internal/model"
)

func TestMergeFavoritesDedupKeepsUserFirst(t *testing.T) {
	user := model.Favorites{
		Attractions: []model.Attraction{{ID: "a", Name: "user copy"}},
		Restaurants: []model.Meal{},
	}
	guest := model.Favorites{
		Attractions: []model.Attraction{{ID: "a", Name: "guest copy"}, {ID: "b"}},
		Restaurants: []model.Meal{{ID: "m"}},
	}

	got := MergeFavorites(user, guest)
	require.Len(t, got.Attractions, 2)
	assert.Equal(t, "a", got.Attractions[0].ID)
	assert.Equal(t, "user copy", got.Attractions[0].Name)
	assert.Equal(t, "b", got.Attractions[1].ID)
	assert.Equal(t, []model.Meal{{ID: "m"}}, got.Restaurants)
}

func TestMergePlanner(t *testing.T) {
	guest := model.NewRoutePlannerState()
	guest.StartLocation = "Shanghai"
	guest.SelectedScheme = model.SchemeTime
	guest.Itinerary = []model.ItineraryDay{{Date: "2025-05-01"}}

	empty := model.NewRoutePlannerState()
	adopted := MergePlanner(empty, guest)
	assert.Equal(t, guest.Clone(), adopted)
	assert.Equal(t, "2025-05-01", adopted.Itinerary[0].Date)

	user := model.NewRoutePlannerState()
	user.CurrentStep = 1
	assert.Equal(t, user, MergePlanner(user, guest), "a user on step 1 is not empty")

	user = model.NewRoutePlannerState()
	user.SelectedScheme = model.SchemeValue
	assert.Equal(t, user, MergePlanner(user, guest))
}

type session struct {
	bus       *events.Bus
	ids       *identity.Store
	planner   *Planner
	favorites *Favorites
	merger    *Merger
}

func newSession(t *testing.T) *session {
	t.Helper()
	bus := events.NewBus()
	ids := identity.NewStore(bus)
	planner := NewPlanner(NewPlannerPartitions(ids.ActiveKey), &fakeGenerator{})
	favorites := NewFavorites(NewFavoritesPartitions(ids.ActiveKey))
	planner.Partitions().Bind(bus)
	favorites.Partitions().Bind(bus)
	merger := NewMerger(ids, planner.Partitions(), favorites.Partitions(), zerolog.Nop())
	merger.Bind(bus)
	return &session{bus: bus, ids: ids, planner: planner, favorites: favorites, merger: merger}
}

func TestLoginMergesGuestIntoUser(t *testing.T) {
	s := newSession(t)
	s.ids.EnsureGuest()
	s.favorites.AddAttraction(model.Attraction{ID: "a"})
	s.favorites.AddRestaurant(model.Meal{ID: "m"})
	s.planner.Update(PlannerUpdate{
		StartLocation: ptr("Guilin"),
		DateRange:     &model.DateRange{From: date("2025-05-01"), To: date("2025-05-02")},
		Scheme:        ptr(model.SchemeLowCarbon),
	})
	guestPlan := s.planner.State()

	require.NoError(t, s.ids.Login(model.User{ID: "u1", Provider: model.ProviderGoogle}))

	assert.Equal(t, "u1", s.ids.ActiveKey())
	assert.Empty(t, s.ids.Identity().GuestID, "guest id retired")
	assert.True(t, s.favorites.IsAttractionFavorited("a"))
	assert.True(t, s.favorites.IsRestaurantFavorited("m"))
	assert.Equal(t, guestPlan, s.planner.State())
	assert.Equal(t, guestPlan, s.planner.Partitions().Current(), "current view mirrors merged state")
}

func TestLoginKeepsNonEmptyUserPlanner(t *testing.T) {
	s := newSession(t)

	// The user already has a plan from an earlier session.
	require.NoError(t, s.ids.Login(model.User{ID: "u1"}))
	s.planner.SetStep(2)
	s.favorites.AddAttraction(model.Attraction{ID: "a", Name: "mine"})
	userPlan := s.planner.State()
	s.ids.Logout()

	s.ids.EnsureGuest()
	s.planner.Update(PlannerUpdate{Scheme: ptr(model.SchemeTime)})
	s.favorites.AddAttraction(model.Attraction{ID: "a", Name: "guest"})
	s.favorites.AddAttraction(model.Attraction{ID: "b"})

	require.NoError(t, s.ids.Login(model.User{ID: "u1"}))
	assert.Equal(t, userPlan, s.planner.State())

	fav := s.favorites.List()
	require.Len(t, fav.Attractions, 2)
	assert.Equal(t, "mine", fav.Attractions[0].Name)
	assert.Equal(t, "b", fav.Attractions[1].ID)
}

func TestMergeFallsBackToGlobalPartition(t *testing.T) {
	s := newSession(t)
	s.favorites.AddAttraction(model.Attraction{ID: "anon"})

	s.ids.Restore(identity.State{User: &model.User{ID: "u1"}, GuestID: "guest_zz"})
	require.True(t, s.merger.MergeNow())
	assert.True(t, s.favorites.IsAttractionFavorited("anon"))
}

func TestMergeIsIdempotent(t *testing.T) {
	s := newSession(t)
	s.ids.EnsureGuest()
	s.favorites.AddAttraction(model.Attraction{ID: "a"})
	require.NoError(t, s.ids.Login(model.User{ID: "u1"}))

	favBefore := s.favorites.List()
	planBefore := s.planner.State()

	assert.False(t, s.merger.MergeNow(), "guest already cleared")
	require.NoError(t, s.ids.Login(model.User{ID: "u1", Email: "again@example.com"}))

	assert.Equal(t, favBefore, s.favorites.List())
	assert.Equal(t, planBefore, s.planner.State())
}

func TestNoMergeWithoutGuest(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.ids.Login(model.User{ID: "u1"}))
	_, ok := s.favorites.Partitions().Get("u1")
	assert.False(t, ok)
}

func TestEnsureGuestWhileSignedInDoesNotMerge(t *testing.T) {
	s := newSession(t)
	s.favorites.AddAttraction(model.Attraction{ID: "anon"})
	s.planner.SetStep(2)

	require.NoError(t, s.ids.Login(model.User{ID: "u1"}))
	userPlan := s.planner.State()
	userFav := s.favorites.List()

	assert.Empty(t, s.ids.EnsureGuest())
	assert.Equal(t, model.Identity{UserID: "u1"}, s.ids.Identity())
	assert.False(t, s.merger.MergeNow())
	assert.Equal(t, userPlan, s.planner.State())
	assert.Equal(t, userFav, s.favorites.List())
	assert.False(t, s.favorites.IsAttractionFavorited("anon"))
}

func TestIdentityChangeWithoutSignInDoesNotMerge(t *testing.T) {
	s := newSession(t)
	s.favorites.AddAttraction(model.Attraction{ID: "anon"})

	// A restored signed-in identity that later gains a guest id only through
	// the bus must not pull the global partition in.
	s.ids.Restore(identity.State{User: &model.User{ID: "u1"}})
	s.bus.Publish(events.Event{
		Kind:     events.IdentityChanged,
		Previous: model.Identity{UserID: "u1"},
		Current:  model.Identity{UserID: "u1", GuestID: "guest_zz"},
	})

	_, ok := s.favorites.Partitions().Get("u1")
	assert.False(t, ok)
}
