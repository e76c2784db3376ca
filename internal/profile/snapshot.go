package profile

import (
	"encoding/json"
	"fmt"

	"github.com/starstrip/starstrip-planner/internal/model"
)

// SnapshotVersion is the version written by the encoders.
const SnapshotVersion = 2

// Envelope tags persisted state with the version of its shape.
type Envelope struct {
	Version int             `json:"version"`
	State   json.RawMessage `json:"state"`
}

// PlannerTable is the current persisted planner shape.
type PlannerTable struct {
	State    model.RoutePlannerState            `json:"state"`
	Profiles map[string]model.RoutePlannerState `json:"profiles"`
}

// FavoritesTable is the current persisted favorites shape.
type FavoritesTable struct {
	Profiles map[string]model.Favorites `json:"profiles"`
}

// Versions 0 and 1 stored a single flat record with no profile table.
var (
	plannerUpgrades = map[int]func(json.RawMessage) (PlannerTable, error){
		0: plannerFromFlat,
		1: plannerFromFlat,
		2: plannerCurrent,
	}
	favoritesUpgrades = map[int]func(json.RawMessage) (FavoritesTable, error){
		0: favoritesFromFlat,
		1: favoritesFromFlat,
		2: favoritesCurrent,
	}
)

// LoadPlannerSnapshot decodes an envelope of any known version into the current
// shape. Empty input yields an initial table.
func LoadPlannerSnapshot(b []byte) (PlannerTable, error) {
	if len(b) == 0 {
		return initialPlannerTable(), nil
	}
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return PlannerTable{}, fmt.Errorf("%w: planner snapshot: %v", model.ErrValidation, err)
	}
	upgrade, ok := plannerUpgrades[env.Version]
	if !ok {
		return PlannerTable{}, fmt.Errorf("%w: planner snapshot version %d", model.ErrValidation, env.Version)
	}
	t, err := upgrade(env.State)
	if err != nil {
		return PlannerTable{}, fmt.Errorf("%w: planner snapshot v%d: %v", model.ErrValidation, env.Version, err)
	}
	return t, nil
}

// EncodePlannerSnapshot writes t at the current version.
func EncodePlannerSnapshot(t PlannerTable) ([]byte, error) {
	return encode(t)
}

// LoadFavoritesSnapshot decodes an envelope of any known version into the
// current shape. Empty input yields an initial table.
func LoadFavoritesSnapshot(b []byte) (FavoritesTable, error) {
	if len(b) == 0 {
		return initialFavoritesTable(), nil
	}
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return FavoritesTable{}, fmt.Errorf("%w: favorites snapshot: %v", model.ErrValidation, err)
	}
	upgrade, ok := favoritesUpgrades[env.Version]
	if !ok {
		return FavoritesTable{}, fmt.Errorf("%w: favorites snapshot version %d", model.ErrValidation, env.Version)
	}
	t, err := upgrade(env.State)
	if err != nil {
		return FavoritesTable{}, fmt.Errorf("%w: favorites snapshot v%d: %v", model.ErrValidation, env.Version, err)
	}
	return t, nil
}

// EncodeFavoritesSnapshot writes t at the current version.
func EncodeFavoritesSnapshot(t FavoritesTable) ([]byte, error) {
	return encode(t)
}

// DecodePlanner decodes one planner partition. The partition shape has not
// changed across versions; only the table around it has.
func DecodePlanner(data json.RawMessage) (model.RoutePlannerState, error) {
	s := model.NewRoutePlannerState()
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return model.RoutePlannerState{}, fmt.Errorf("%w: planner: %v", model.ErrValidation, err)
	}
	return normalizePlanner(s), nil
}

// DecodeFavorites decodes one favorites partition.
func DecodeFavorites(data json.RawMessage) (model.Favorites, error) {
	f := model.NewFavorites()
	if len(data) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(data, &f); err != nil {
		return model.Favorites{}, fmt.Errorf("%w: favorites: %v", model.ErrValidation, err)
	}
	return normalizeFavorites(f), nil
}

func encode(v any) ([]byte, error) {
	state, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Version: SnapshotVersion, State: state})
}

func initialPlannerTable() PlannerTable {
	return PlannerTable{
		State:    model.NewRoutePlannerState(),
		Profiles: map[string]model.RoutePlannerState{model.GlobalProfileKey: model.NewRoutePlannerState()},
	}
}

func initialFavoritesTable() FavoritesTable {
	return FavoritesTable{
		Profiles: map[string]model.Favorites{model.GlobalProfileKey: model.NewFavorites()},
	}
}

func plannerFromFlat(raw json.RawMessage) (PlannerTable, error) {
	var old struct {
		State *model.RoutePlannerState `json:"state"`
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &old); err != nil {
			return PlannerTable{}, err
		}
	}
	state := model.NewRoutePlannerState()
	if old.State != nil {
		state = normalizePlanner(*old.State)
	}
	return PlannerTable{
		State:    state,
		Profiles: map[string]model.RoutePlannerState{model.GlobalProfileKey: state.Clone()},
	}, nil
}

func plannerCurrent(raw json.RawMessage) (PlannerTable, error) {
	if len(raw) == 0 {
		return initialPlannerTable(), nil
	}
	t := PlannerTable{State: model.NewRoutePlannerState()}
	if err := json.Unmarshal(raw, &t); err != nil {
		return PlannerTable{}, err
	}
	t.State = normalizePlanner(t.State)
	if t.Profiles == nil {
		t.Profiles = map[string]model.RoutePlannerState{}
	}
	for k, v := range t.Profiles {
		t.Profiles[k] = normalizePlanner(v)
	}
	return t, nil
}

func favoritesFromFlat(raw json.RawMessage) (FavoritesTable, error) {
	f := model.NewFavorites()
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &f); err != nil {
			return FavoritesTable{}, err
		}
	}
	return FavoritesTable{
		Profiles: map[string]model.Favorites{model.GlobalProfileKey: normalizeFavorites(f)},
	}, nil
}

func favoritesCurrent(raw json.RawMessage) (FavoritesTable, error) {
	if len(raw) == 0 {
		return initialFavoritesTable(), nil
	}
	var t FavoritesTable
	if err := json.Unmarshal(raw, &t); err != nil {
		return FavoritesTable{}, err
	}
	if t.Profiles == nil {
		t.Profiles = map[string]model.Favorites{}
	}
	for k, v := range t.Profiles {
		t.Profiles[k] = normalizeFavorites(v)
	}
	return t, nil
}

func normalizePlanner(s model.RoutePlannerState) model.RoutePlannerState {
	if s.Itinerary == nil {
		s.Itinerary = []model.ItineraryDay{}
	}
	for i := range s.Itinerary {
		if s.Itinerary[i].Attractions == nil {
			s.Itinerary[i].Attractions = []model.Attraction{}
		}
		if s.Itinerary[i].Meals == nil {
			s.Itinerary[i].Meals = []model.Meal{}
		}
	}
	s.CurrentStep = clampStep(s.CurrentStep)
	return s
}

func normalizeFavorites(f model.Favorites) model.Favorites {
	if f.Attractions == nil {
		f.Attractions = []model.Attraction{}
	}
	if f.Restaurants == nil {
		f.Restaurants = []model.Meal{}
	}
	return f
}
