package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starstrip/starstrip-planner/internal/model"
)

func TestPreferencesDefaults(t *testing.T) {
	p := NewPreferences()
	assert.Equal(t, model.TravelerProfile{
		TravelPace:  model.PaceModerate,
		BudgetLevel: model.BudgetModerate,
		Interests:   []string{},
	}, p.Get())
}

func TestPreferencesPartialUpdate(t *testing.T) {
	p := NewPreferences()
	var seen []model.TravelerProfile
	p.OnChange(func(v model.TravelerProfile) { seen = append(seen, v) })

	got, err := p.Update(PreferencesUpdate{
		Nationality: ptr(" jp "),
		Interests:   []string{"food", " history", "food", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, "JP", got.Nationality)
	assert.Equal(t, []string{"food", "history"}, got.Interests)
	assert.Equal(t, model.PaceModerate, got.TravelPace)

	got, err = p.Update(PreferencesUpdate{TravelPace: ptr(model.PaceFast), HasCompletedProfile: ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, "JP", got.Nationality, "untouched fields survive")
	assert.Equal(t, model.PaceFast, got.TravelPace)
	assert.True(t, got.HasCompletedProfile)
	assert.Len(t, seen, 2)

	assert.Equal(t, model.NewTravelerProfile(), p.Reset())
	assert.Len(t, seen, 3)
}

func TestPreferencesRejectsBadValues(t *testing.T) {
	p := NewPreferences()
	cases := []PreferencesUpdate{
		{Nationality: ptr("JPN")},
		{TravelPace: ptr(model.TravelPace("sprint"))},
		{BudgetLevel: ptr(model.BudgetLevel("free"))},
	}
	for _, u := range cases {
		_, err := p.Update(u)
		assert.ErrorIs(t, err, model.ErrValidation)
	}
	assert.Equal(t, model.NewTravelerProfile(), p.Get(), "failed updates change nothing")
}

func TestDecodePreferences(t *testing.T) {
	got, err := DecodePreferences(nil)
	require.NoError(t, err)
	assert.Equal(t, model.NewTravelerProfile(), got)

	got, err = DecodePreferences([]byte(`{"nationality":"DE","travelPace":"warp","interests":["art","art"]}`))
	require.NoError(t, err)
	assert.Equal(t, "DE", got.Nationality)
	assert.Equal(t, model.PaceModerate, got.TravelPace)
	assert.Equal(t, model.BudgetModerate, got.BudgetLevel)
	assert.Equal(t, []string{"art"}, got.Interests)

	_, err = DecodePreferences([]byte(`{`))
	assert.ErrorIs(t, err, model.ErrValidation)
}
