package profile

import (
	"github.com/rs/zerolog"

	"github.com/starstrip/starstrip-planner/internal/events"
	"github.com/starstrip/starstrip-planner/internal/metrics"
	"github.com/starstrip/starstrip-planner/internal/model"
)

// MergeFavorites concatenates to before from and keeps the first occurrence of
// each id, so the user's existing entries win over the guest's.
func MergeFavorites(to, from model.Favorites) model.Favorites {
	return model.Favorites{
		Attractions: dedupByID(append(append([]model.Attraction{}, to.Attractions...), from.Attractions...),
			func(a model.Attraction) string { return a.ID }),
		Restaurants: dedupByID(append(append([]model.Meal{}, to.Restaurants...), from.Restaurants...),
			func(m model.Meal) string { return m.ID }),
	}
}

// MergePlanner adopts from wholesale when to is empty, otherwise keeps to.
// Itineraries are never combined day by day.
func MergePlanner(to, from model.RoutePlannerState) model.RoutePlannerState {
	if IsEmptyPlanner(to) {
		return from.Clone()
	}
	return to.Clone()
}

// IsEmptyPlanner reports whether s has no itinerary, is on step 0 and has no scheme.
func IsEmptyPlanner(s model.RoutePlannerState) bool {
	return len(s.Itinerary) == 0 && s.CurrentStep == 0 && s.SelectedScheme == ""
}

func dedupByID[T any](items []T, id func(T) string) []T {
	seen := make(map[string]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, it := range items {
		k := id(it)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, it)
	}
	return out
}

// IdentitySource is the part of the identity store the merger needs.
type IdentitySource interface {
	Identity() model.Identity
	ClearGuest()
}

// Merger moves guest favorites and planner state into the user's partitions
// once an identity has both a user id and a guest id.
type Merger struct {
	ident     IdentitySource
	planner   *Partitions[model.RoutePlannerState]
	favorites *Partitions[model.Favorites]
	log       zerolog.Logger
}

func NewMerger(ident IdentitySource, planner *Partitions[model.RoutePlannerState], favorites *Partitions[model.Favorites], log zerolog.Logger) *Merger {
	return &Merger{ident: ident, planner: planner, favorites: favorites, log: log}
}

// Bind runs the merge when an identity change signs a user in. Subscribe the
// partitions before the merger so their current views are already refreshed
// when it runs.
func (m *Merger) Bind(bus *events.Bus) func() {
	return bus.Subscribe(func(evt events.Event) {
		if evt.Kind != events.IdentityChanged || evt.Current.UserID == evt.Previous.UserID {
			return
		}
		m.mergeFor(evt.Current)
	})
}

// MergeNow merges for the current identity. It reports whether a merge ran.
func (m *Merger) MergeNow() bool {
	return m.mergeFor(m.ident.Identity())
}

func (m *Merger) mergeFor(id model.Identity) bool {
	if id.UserID == "" || id.GuestID == "" {
		return false
	}

	fromFav, ok := m.favorites.Get(id.GuestID)
	if !ok {
		fromFav, ok = m.favorites.Get(model.GlobalProfileKey)
	}
	if !ok {
		fromFav = model.NewFavorites()
	}
	toFav, ok := m.favorites.Get(id.UserID)
	if !ok {
		toFav = model.NewFavorites()
	}
	m.favorites.Put(id.UserID, MergeFavorites(toFav, fromFav))

	fromRoute, ok := m.planner.Get(id.GuestID)
	if !ok {
		fromRoute, ok = m.planner.Get(model.GlobalProfileKey)
	}
	if !ok {
		fromRoute = m.planner.Current()
	}
	toRoute, ok := m.planner.Get(id.UserID)
	if !ok {
		toRoute = m.planner.Current()
	}
	adopted := IsEmptyPlanner(toRoute)
	m.planner.Put(id.UserID, MergePlanner(toRoute, fromRoute))

	metrics.GuestMerges.WithLabelValues("merged").Inc()
	m.log.Info().
		Str("user_id", id.UserID).
		Str("guest_id", id.GuestID).
		Bool("planner_adopted", adopted).
		Msg("guest profile merged")

	m.ident.ClearGuest()
	return true
}
