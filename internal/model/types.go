package model

import (
	"encoding/json"
	"time"
)

// DateLayout is the calendar-date format used on the wire and in itineraries.
const DateLayout = "2006-01-02"

// GlobalProfileKey is the partition used before any identity exists.
const GlobalProfileKey = "global"

// Coordinates locates an attraction.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Attraction is an immutable catalog entry.
type Attraction struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	City            string      `json:"city"`
	Duration        float64     `json:"duration"` // hours
	Cost            float64     `json:"cost"`
	CarbonFootprint float64     `json:"carbonFootprint"` // kg CO2
	Coordinates     Coordinates `json:"coordinates"`
	Type            string      `json:"type"`
	Image           string      `json:"image,omitempty"`
}

// Meal is an immutable catalog entry for a restaurant or dish.
type Meal struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	City            string  `json:"city"`
	Cost            float64 `json:"cost"`
	CarbonFootprint float64 `json:"carbonFootprint"`
	Type            string  `json:"type"`
	Cuisine         string  `json:"cuisine"`
	Image           string  `json:"image,omitempty"`
}

// ItineraryDay is one calendar day of a generated trip.
type ItineraryDay struct {
	Date        string       `json:"date"`
	Attractions []Attraction `json:"attractions"`
	Meals       []Meal       `json:"meals"`
}

// Clone returns a deep copy of the day.
func (d ItineraryDay) Clone() ItineraryDay {
	out := ItineraryDay{Date: d.Date}
	out.Attractions = append(make([]Attraction, 0, len(d.Attractions)), d.Attractions...)
	out.Meals = append(make([]Meal, 0, len(d.Meals)), d.Meals...)
	return out
}

// CloneItinerary deep-copies a list of days.
func CloneItinerary(days []ItineraryDay) []ItineraryDay {
	out := make([]ItineraryDay, 0, len(days))
	for _, d := range days {
		out = append(out, d.Clone())
	}
	return out
}

// DateRange is an inclusive pair of calendar dates. Nil means unset.
type DateRange struct {
	From *time.Time `json:"from"`
	To   *time.Time `json:"to"`
}

// Complete reports whether both ends are set.
func (r DateRange) Complete() bool { return r.From != nil && r.To != nil }

// Equal compares the calendar dates of two ranges.
func (r DateRange) Equal(o DateRange) bool {
	return sameDate(r.From, o.From) && sameDate(r.To, o.To)
}

// Clone returns a range that shares no pointers with r.
func (r DateRange) Clone() DateRange {
	var out DateRange
	if r.From != nil {
		f := *r.From
		out.From = &f
	}
	if r.To != nil {
		t := *r.To
		out.To = &t
	}
	return out
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Format(DateLayout) == b.Format(DateLayout)
}

// RoutePlannerState is the per-profile planner partition.
type RoutePlannerState struct {
	CurrentStep    int            `json:"currentStep"`
	StartLocation  string         `json:"startLocation"`
	DateRange      DateRange      `json:"dateRange"`
	SelectedScheme Scheme         `json:"selectedScheme"`
	Itinerary      []ItineraryDay `json:"itinerary"`
	TotalCost      float64        `json:"totalCost"`
	TotalCarbon    float64        `json:"totalCarbon"`
}

// NewRoutePlannerState returns the initial planner state.
func NewRoutePlannerState() RoutePlannerState {
	return RoutePlannerState{Itinerary: []ItineraryDay{}}
}

// Clone returns a deep copy of the planner state.
func (s RoutePlannerState) Clone() RoutePlannerState {
	out := s
	out.Itinerary = CloneItinerary(s.Itinerary)
	out.DateRange = s.DateRange.Clone()
	return out
}

// Favorites is the per-profile bookmark partition.
type Favorites struct {
	Attractions []Attraction `json:"attractions"`
	Restaurants []Meal       `json:"restaurants"`
}

// NewFavorites returns an empty favorites record.
func NewFavorites() Favorites {
	return Favorites{Attractions: []Attraction{}, Restaurants: []Meal{}}
}

// Clone returns a copy with independent slices.
func (f Favorites) Clone() Favorites {
	return Favorites{
		Attractions: append(make([]Attraction, 0, len(f.Attractions)), f.Attractions...),
		Restaurants: append(make([]Meal, 0, len(f.Restaurants)), f.Restaurants...),
	}
}

// Totals aggregates cost and carbon over an itinerary.
type Totals struct {
	TotalCost   float64 `json:"totalCost"`
	TotalCarbon float64 `json:"totalCarbon"`
}

// CarbonBreakdown splits a trip footprint by source.
type CarbonBreakdown struct {
	Flights       float64 `json:"flights"`
	Trains        float64 `json:"trains"`
	Accommodation float64 `json:"accommodation"`
	Activities    float64 `json:"activities"`
}

// TripRecord is an append-only ESG ledger entry.
type TripRecord struct {
	ID              string          `json:"id"`
	OwnerKey        string          `json:"ownerKey"`
	Name            string          `json:"name"`
	StartDate       string          `json:"startDate"`
	EndDate         string          `json:"endDate"`
	CarbonFootprint float64         `json:"carbonFootprint"`
	Breakdown       CarbonBreakdown `json:"breakdown"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// SnapshotKind names a persisted partition type.
type SnapshotKind string

const (
	KindPlanner   SnapshotKind = "planner"
	KindFavorites SnapshotKind = "favorites"
)

// Valid reports whether k is a known kind.
func (k SnapshotKind) Valid() bool {
	return k == KindPlanner || k == KindFavorites
}

// ProfileSnapshot is an opaque serialized partition stored by the persistence sink.
type ProfileSnapshot struct {
	ProfileKey string          `json:"profileKey"`
	Kind       SnapshotKind    `json:"kind"`
	Version    int             `json:"version"`
	Data       json.RawMessage `json:"data"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// Provider identifies how a user authenticated.
type Provider string

const (
	ProviderLocal       Provider = "local"
	ProviderApple       Provider = "apple"
	ProviderGoogle      Provider = "google"
	ProviderFacebook    Provider = "facebook"
	ProviderCredentials Provider = "credentials"
)

// Valid reports whether p is a supported provider.
func (p Provider) Valid() bool {
	switch p {
	case ProviderLocal, ProviderApple, ProviderGoogle, ProviderFacebook, ProviderCredentials:
		return true
	}
	return false
}

// User is an authenticated identity.
type User struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	Provider Provider `json:"provider"`
}

// Identity is the pair of ids from which the active profile key is derived.
type Identity struct {
	UserID  string `json:"userId,omitempty"`
	GuestID string `json:"guestId,omitempty"`
}

// ProfileKey returns the user id, else the guest id, else the global key.
func (i Identity) ProfileKey() string {
	if i.UserID != "" {
		return i.UserID
	}
	if i.GuestID != "" {
		return i.GuestID
	}
	return GlobalProfileKey
}

// TravelPace is how densely a traveller wants days filled.
type TravelPace string

const (
	PaceRelaxed  TravelPace = "relaxed"
	PaceModerate TravelPace = "moderate"
	PaceFast     TravelPace = "fast"
)

func (p TravelPace) Valid() bool {
	switch p {
	case PaceRelaxed, PaceModerate, PaceFast:
		return true
	}
	return false
}

// BudgetLevel is the traveller's spending band.
type BudgetLevel string

const (
	BudgetLow      BudgetLevel = "budget"
	BudgetModerate BudgetLevel = "moderate"
	BudgetLuxury   BudgetLevel = "luxury"
)

func (b BudgetLevel) Valid() bool {
	switch b {
	case BudgetLow, BudgetModerate, BudgetLuxury:
		return true
	}
	return false
}

// TravelerProfile holds device-wide preferences. It is not scoped by identity.
type TravelerProfile struct {
	Nationality         string      `json:"nationality"`
	TravelPace          TravelPace  `json:"travelPace"`
	BudgetLevel         BudgetLevel `json:"budgetLevel"`
	Interests           []string    `json:"interests"`
	HasCompletedProfile bool        `json:"hasCompletedProfile"`
}

func NewTravelerProfile() TravelerProfile {
	return TravelerProfile{TravelPace: PaceModerate, BudgetLevel: BudgetModerate, Interests: []string{}}
}

func (p TravelerProfile) Clone() TravelerProfile {
	out := p
	out.Interests = append(make([]string, 0, len(p.Interests)), p.Interests...)
	return out
}
