package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityProfileKey(t *testing.T) {
	assert.Equal(t, "u1", Identity{UserID: "u1", GuestID: "guest_x"}.ProfileKey())
	assert.Equal(t, "guest_x", Identity{GuestID: "guest_x"}.ProfileKey())
	assert.Equal(t, GlobalProfileKey, Identity{}.ProfileKey())
}

func TestParseScheme(t *testing.T) {
	s, err := ParseScheme("lowCarbon")
	require.NoError(t, err)
	assert.Equal(t, SchemeLowCarbon, s)

	_, err = ParseScheme("fastest")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestRoutePlannerStateCloneIsDeep(t *testing.T) {
	from := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	s := NewRoutePlannerState()
	s.DateRange.From = &from
	s.Itinerary = []ItineraryDay{{Date: "2025-05-01", Attractions: []Attraction{{ID: "a"}}, Meals: []Meal{}}}

	c := s.Clone()
	c.Itinerary[0].Attractions[0].ID = "b"
	*c.DateRange.From = from.AddDate(0, 0, 1)

	assert.Equal(t, "a", s.Itinerary[0].Attractions[0].ID)
	assert.Equal(t, from, *s.DateRange.From)
}

func TestDateRangeEqual(t *testing.T) {
	a := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	b := time.Date(2025, 5, 1, 18, 0, 0, 0, time.UTC)
	assert.True(t, DateRange{From: &a}.Equal(DateRange{From: &b}))
	assert.False(t, DateRange{From: &a}.Equal(DateRange{}))
	assert.True(t, DateRange{}.Equal(DateRange{}))
}
