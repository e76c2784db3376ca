package profile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starstrip/starstrip-planner/internal/model"
)

func TestLoadPlannerSnapshotEmpty(t *testing.T) {
	tbl, err := LoadPlannerSnapshot(nil)
	require.NoError(t, err)
	assert.Equal(t, model.NewRoutePlannerState(), tbl.State)
	assert.Contains(t, tbl.Profiles, model.GlobalProfileKey)
}

func TestLoadPlannerSnapshotUpgradesFlatVersions(t *testing.T) {
	for _, v := range []string{"0", "1"} {
		t.Run("v"+v, func(t *testing.T) {
			raw := `{"version":` + v + `,"state":{"state":{
				"currentStep":2,
				"startLocation":"Hangzhou",
				"dateRange":{"from":"2025-05-01T00:00:00.000Z","to":"2025-05-03T00:00:00.000Z"},
				"selectedScheme":null,
				"itinerary":[{"date":"2025-05-01","attractions":[{"id":"hz-west-lake"}],"meals":null}],
				"totalCost":0,
				"totalCarbon":0}}}`

			tbl, err := LoadPlannerSnapshot([]byte(raw))
			require.NoError(t, err)
			require.Len(t, tbl.Profiles, 1)

			global := tbl.Profiles[model.GlobalProfileKey]
			assert.Equal(t, "Hangzhou", global.StartLocation)
			assert.Equal(t, 2, global.CurrentStep)
			assert.Equal(t, model.Scheme(""), global.SelectedScheme)
			assert.True(t, global.DateRange.Complete())
			assert.Equal(t, "2025-05-03", global.DateRange.To.Format(model.DateLayout))
			require.Len(t, global.Itinerary, 1)
			assert.NotNil(t, global.Itinerary[0].Meals)
			assert.Equal(t, global, tbl.State)
		})
	}
}

func TestLoadPlannerSnapshotFlatWithoutState(t *testing.T) {
	tbl, err := LoadPlannerSnapshot([]byte(`{"version":1,"state":{}}`))
	require.NoError(t, err)
	assert.Equal(t, model.NewRoutePlannerState(), tbl.Profiles[model.GlobalProfileKey])
}

func TestPlannerSnapshotRoundTrip(t *testing.T) {
	s := model.NewRoutePlannerState()
	s.StartLocation = "Chengdu"
	s.SelectedScheme = model.SchemeExperience
	s.DateRange = model.DateRange{From: date("2025-06-01"), To: date("2025-06-02")}
	in := PlannerTable{
		State:    s,
		Profiles: map[string]model.RoutePlannerState{"user_1": s, model.GlobalProfileKey: model.NewRoutePlannerState()},
	}

	b, err := EncodePlannerSnapshot(in)
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(b, &env))
	assert.Equal(t, SnapshotVersion, env.Version)

	out, err := LoadPlannerSnapshot(b)
	require.NoError(t, err)
	assert.Len(t, out.Profiles, 2)
	assert.Equal(t, "Chengdu", out.Profiles["user_1"].StartLocation)
	assert.True(t, out.Profiles["user_1"].DateRange.Equal(s.DateRange))
}

func TestLoadFavoritesSnapshotUpgradesFlat(t *testing.T) {
	raw := `{"version":0,"state":{"attractions":[{"id":"bj-forbidden-city"}],"restaurants":null}}`
	tbl, err := LoadFavoritesSnapshot([]byte(raw))
	require.NoError(t, err)

	global := tbl.Profiles[model.GlobalProfileKey]
	require.Len(t, global.Attractions, 1)
	assert.Equal(t, "bj-forbidden-city", global.Attractions[0].ID)
	assert.NotNil(t, global.Restaurants)
}

func TestFavoritesSnapshotRoundTrip(t *testing.T) {
	f := model.NewFavorites()
	f.Restaurants = append(f.Restaurants, model.Meal{ID: "sh-xiaolongbao"})
	b, err := EncodeFavoritesSnapshot(FavoritesTable{Profiles: map[string]model.Favorites{"guest_ab12cd34": f}})
	require.NoError(t, err)

	out, err := LoadFavoritesSnapshot(b)
	require.NoError(t, err)
	assert.Equal(t, map[string]model.Favorites{"guest_ab12cd34": f}, out.Profiles)
}

func TestLoadSnapshotRejectsUnknownVersion(t *testing.T) {
	_, err := LoadPlannerSnapshot([]byte(`{"version":7,"state":{}}`))
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = LoadFavoritesSnapshot([]byte(`{"version":-1,"state":{}}`))
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = LoadFavoritesSnapshot([]byte(`not json`))
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestDecodePartitions(t *testing.T) {
	s, err := DecodePlanner(json.RawMessage(`{"currentStep":9,"itinerary":null}`))
	require.NoError(t, err)
	assert.Equal(t, 3, s.CurrentStep)
	assert.NotNil(t, s.Itinerary)

	f, err := DecodeFavorites(nil)
	require.NoError(t, err)
	assert.Equal(t, model.NewFavorites(), f)

	_, err = DecodeFavorites(json.RawMessage(`[]`))
	assert.ErrorIs(t, err, model.ErrValidation)
}
