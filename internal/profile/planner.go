package profile

import (
	"cmp"
	"slices"
	"time"

	"github.com/starstrip/starstrip-planner/internal/model"
	"github.com/starstrip/starstrip-planner/internal/route"
)

const maxStep = 3

// ItineraryGenerator produces a wholesale itinerary for a complete request.
type ItineraryGenerator interface {
	Generate(start string, from, to time.Time, scheme model.Scheme) []model.ItineraryDay
}

// PlannerUpdate is a partial planner update. Nil fields are left unchanged.
type PlannerUpdate struct {
	StartLocation *string
	DateRange     *model.DateRange
	Scheme        *model.Scheme
	CurrentStep   *int
}

// Planner is the identity-scoped route planner.
type Planner struct {
	parts *Partitions[model.RoutePlannerState]
	gen   ItineraryGenerator
}

// NewPlannerPartitions creates an empty planner table resolving keys through resolve.
func NewPlannerPartitions(resolve KeyResolver) *Partitions[model.RoutePlannerState] {
	return NewPartitions(resolve, model.NewRoutePlannerState, model.RoutePlannerState.Clone)
}

// NewPlanner wraps parts. gen is used when start, dates and scheme are all set.
func NewPlanner(parts *Partitions[model.RoutePlannerState], gen ItineraryGenerator) *Planner {
	return &Planner{parts: parts, gen: gen}
}

// Partitions exposes the underlying table.
func (p *Planner) Partitions() *Partitions[model.RoutePlannerState] { return p.parts }

// State returns the active planner partition.
func (p *Planner) State() model.RoutePlannerState { return p.parts.Read() }

// SetStep moves the wizard to step, clamped to [0,3].
func (p *Planner) SetStep(step int) model.RoutePlannerState {
	return p.parts.Write(func(s model.RoutePlannerState) model.RoutePlannerState {
		s.CurrentStep = clampStep(step)
		return s
	})
}

// Update applies u. When start location, both dates and scheme are set and at
// least one of them changed, the itinerary and totals are regenerated.
func (p *Planner) Update(u PlannerUpdate) model.RoutePlannerState {
	return p.parts.Write(func(s model.RoutePlannerState) model.RoutePlannerState {
		changed := false
		if u.StartLocation != nil && *u.StartLocation != s.StartLocation {
			s.StartLocation = *u.StartLocation
			changed = true
		}
		if u.DateRange != nil && !u.DateRange.Equal(s.DateRange) {
			s.DateRange = u.DateRange.Clone()
			changed = true
		}
		if u.Scheme != nil && *u.Scheme != s.SelectedScheme {
			s.SelectedScheme = *u.Scheme
			changed = true
		}
		if u.CurrentStep != nil {
			s.CurrentStep = clampStep(*u.CurrentStep)
		}
		if changed && ready(s) {
			s = p.regenerate(s)
		}
		return s
	})
}

// Regenerate rebuilds the itinerary from the stored inputs. It is a no-op when
// the inputs are incomplete.
func (p *Planner) Regenerate() model.RoutePlannerState {
	return p.parts.Write(func(s model.RoutePlannerState) model.RoutePlannerState {
		if !ready(s) {
			return s
		}
		return p.regenerate(s)
	})
}

// Reset restores the initial state for the active profile.
func (p *Planner) Reset() model.RoutePlannerState {
	return p.parts.Write(func(model.RoutePlannerState) model.RoutePlannerState {
		return model.NewRoutePlannerState()
	})
}

// AddAttraction appends a to the day at date, creating the day if absent.
func (p *Planner) AddAttraction(date string, a model.Attraction) model.RoutePlannerState {
	return p.parts.Write(func(s model.RoutePlannerState) model.RoutePlannerState {
		idx := slices.IndexFunc(s.Itinerary, func(d model.ItineraryDay) bool { return d.Date == date })
		if idx >= 0 {
			s.Itinerary[idx].Attractions = append(s.Itinerary[idx].Attractions, a)
		} else {
			s.Itinerary = append(s.Itinerary, model.ItineraryDay{
				Date:        date,
				Attractions: []model.Attraction{a},
				Meals:       []model.Meal{},
			})
			slices.SortStableFunc(s.Itinerary, func(x, y model.ItineraryDay) int {
				return cmp.Compare(x.Date, y.Date)
			})
		}
		return withTotals(s)
	})
}

// RemoveAttraction drops the attraction with id from the day at date.
func (p *Planner) RemoveAttraction(date, id string) model.RoutePlannerState {
	return p.parts.Write(func(s model.RoutePlannerState) model.RoutePlannerState {
		for i := range s.Itinerary {
			if s.Itinerary[i].Date != date {
				continue
			}
			s.Itinerary[i].Attractions = slices.DeleteFunc(s.Itinerary[i].Attractions, func(a model.Attraction) bool {
				return a.ID == id
			})
		}
		return withTotals(s)
	})
}

// ReorderAttractions replaces the attraction order of the day at date.
func (p *Planner) ReorderAttractions(date string, attractions []model.Attraction) model.RoutePlannerState {
	return p.parts.Write(func(s model.RoutePlannerState) model.RoutePlannerState {
		for i := range s.Itinerary {
			if s.Itinerary[i].Date == date {
				s.Itinerary[i].Attractions = slices.Clone(attractions)
			}
		}
		return s
	})
}

func (p *Planner) regenerate(s model.RoutePlannerState) model.RoutePlannerState {
	s.Itinerary = p.gen.Generate(s.StartLocation, *s.DateRange.From, *s.DateRange.To, s.SelectedScheme)
	return withTotals(s)
}

func withTotals(s model.RoutePlannerState) model.RoutePlannerState {
	t := route.CalculateRouteTotals(s.Itinerary, s.SelectedScheme)
	s.TotalCost = t.TotalCost
	s.TotalCarbon = t.TotalCarbon
	return s
}

func ready(s model.RoutePlannerState) bool {
	return s.StartLocation != "" && s.DateRange.Complete() && s.SelectedScheme != ""
}

func clampStep(step int) int {
	return max(0, min(step, maxStep))
}
