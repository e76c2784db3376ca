// Package route implements itinerary generation: scheme ranking, day
// scheduling over the catalog, and trip totals.
package route

import (
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"

	"github.com/starstrip/starstrip-planner/internal/catalog"
	"github.com/starstrip/starstrip-planner/internal/metrics"
	"github.com/starstrip/starstrip-planner/internal/model"
)

const (
	defaultMaxHours       = 8.0
	defaultMaxAttractions = 3
)

// RandomSource yields floats in [0,1).
type RandomSource interface {
	Float64() float64
}

// NewRandomSource returns a source backed by the runtime's random generator.
func NewRandomSource() RandomSource { return globalRand{} }

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// Report documents how a plan was produced.
type Report struct {
	CitySchedule           []string `json:"citySchedule"`
	AttractionFallbackDays []int    `json:"attractionFallbackDays"`
	MealFallbackDays       []int    `json:"mealFallbackDays"`
	EmptyDays              []int    `json:"emptyDays"`
}

// Plan is a generated itinerary plus its Report.
type Plan struct {
	Days   []model.ItineraryDay `json:"days"`
	Report Report               `json:"report"`
}

// Generator schedules attractions and meals day by day.
type Generator struct {
	catalog        *catalog.Catalog
	rnd            RandomSource
	log            zerolog.Logger
	maxHours       float64
	maxAttractions int
}

// Option configures a Generator.
type Option func(*Generator)

func WithLogger(l zerolog.Logger) Option { return func(g *Generator) { g.log = l } }

// WithDailyLimits overrides the per-day hour budget and attraction cap.
func WithDailyLimits(maxHours float64, maxAttractions int) Option {
	return func(g *Generator) {
		if maxHours > 0 {
			g.maxHours = maxHours
		}
		if maxAttractions > 0 {
			g.maxAttractions = maxAttractions
		}
	}
}

// NewGenerator returns a Generator over cat. A nil rnd uses NewRandomSource.
func NewGenerator(cat *catalog.Catalog, rnd RandomSource, opts ...Option) *Generator {
	if rnd == nil {
		rnd = NewRandomSource()
	}
	g := &Generator{
		catalog:        cat,
		rnd:            rnd,
		log:            zerolog.Nop(),
		maxHours:       defaultMaxHours,
		maxAttractions: defaultMaxAttractions,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// GenerateRoute builds an itinerary from the embedded catalog.
func GenerateRoute(start string, from, to time.Time, scheme model.Scheme) []model.ItineraryDay {
	return NewGenerator(catalog.Default(), nil).Generate(start, from, to, scheme)
}

// Generate returns one ItineraryDay per calendar day in [from, to].
func (g *Generator) Generate(start string, from, to time.Time, scheme model.Scheme) []model.ItineraryDay {
	return g.GenerateWithReport(start, from, to, scheme).Days
}

// GenerateWithReport is Generate plus a record of the city schedule and of
// which days fell back to rotation.
func (g *Generator) GenerateWithReport(start string, from, to time.Time, scheme model.Scheme) Plan {
	days := calendarDays(from, to)
	schedule := CitySchedule(start, len(days))
	plan := Plan{
		Days: make([]model.ItineraryDay, 0, len(days)),
		Report: Report{
			CitySchedule:           schedule,
			AttractionFallbackDays: []int{},
			MealFallbackDays:       []int{},
			EmptyDays:              []int{},
		},
	}

	usedAttractions := make(map[string]struct{})
	usedMeals := make(map[string]struct{})

	for i, day := range days {
		city := schedule[i]
		entry := model.ItineraryDay{
			Date:        day.Format(model.DateLayout),
			Attractions: []model.Attraction{},
			Meals:       []model.Meal{},
		}

		cityAttractions := g.catalog.AttractionsIn(city)
		if len(cityAttractions) == 0 {
			g.log.Warn().Str("city", city).Int("day", i).Msg("no attractions for city")
			plan.Report.EmptyDays = append(plan.Report.EmptyDays, i)
			plan.Days = append(plan.Days, entry)
			continue
		}

		ranked := Rank(cityAttractions, scheme)
		entry.Attractions = g.pickAttractions(ranked, usedAttractions)
		if len(entry.Attractions) == 0 {
			entry.Attractions = append(entry.Attractions, ranked[i%len(ranked)])
			plan.Report.AttractionFallbackDays = append(plan.Report.AttractionFallbackDays, i)
			metrics.FallbackDays.WithLabelValues("attraction").Inc()
			g.log.Debug().Str("city", city).Int("day", i).Msg("attraction pool exhausted, using rotation")
		}

		var fallback bool
		entry.Meals, fallback = g.pickMeals(g.catalog.MealsIn(city), usedMeals, i)
		if fallback {
			plan.Report.MealFallbackDays = append(plan.Report.MealFallbackDays, i)
			metrics.FallbackDays.WithLabelValues("meal").Inc()
			g.log.Debug().Str("city", city).Int("day", i).Msg("meal pool exhausted, using rotation")
		}

		plan.Days = append(plan.Days, entry)
	}

	if scheme.Valid() {
		metrics.ItinerariesGenerated.WithLabelValues(string(scheme)).Inc()
	} else {
		metrics.ItinerariesGenerated.WithLabelValues("none").Inc()
	}
	g.log.Debug().
		Str("start", start).
		Str("scheme", string(scheme)).
		Int("days", len(plan.Days)).
		Int("unique_attractions", len(usedAttractions)).
		Int("unique_meals", len(usedMeals)).
		Msg("itinerary generated")
	return plan
}

// pickAttractions greedily takes ranked, unused attractions within the daily
// hour budget and attraction cap. Candidates that would exceed the budget are
// skipped.
func (g *Generator) pickAttractions(ranked []model.Attraction, used map[string]struct{}) []model.Attraction {
	picked := []model.Attraction{}
	hours := 0.0
	for _, a := range ranked {
		if _, ok := used[a.ID]; ok {
			continue
		}
		if hours+a.Duration <= g.maxHours && len(picked) < g.maxAttractions {
			picked = append(picked, a)
			used[a.ID] = struct{}{}
			hours += a.Duration
		}
		if len(picked) >= g.maxAttractions {
			break
		}
	}
	return picked
}

// pickMeals selects lunch and dinner for day dayIdx. The bool result reports
// whether the rotation fallback was used.
func (g *Generator) pickMeals(cityMeals []model.Meal, used map[string]struct{}, dayIdx int) ([]model.Meal, bool) {
	available := make([]model.Meal, 0, len(cityMeals))
	for _, m := range cityMeals {
		if _, ok := used[m.ID]; !ok {
			available = append(available, m)
		}
	}

	switch {
	case len(available) >= 2:
		g.shuffle(available)
		lunch, dinner := available[0], available[1]
		used[lunch.ID] = struct{}{}
		used[dinner.ID] = struct{}{}
		return []model.Meal{lunch, dinner}, false
	case len(available) == 1:
		used[available[0].ID] = struct{}{}
		return []model.Meal{available[0]}, false
	case len(cityMeals) > 0:
		// Indices may collide when the city has a single meal; that day gets one meal.
		i1 := (dayIdx * 2) % len(cityMeals)
		i2 := (dayIdx*2 + 1) % len(cityMeals)
		meals := []model.Meal{cityMeals[i1]}
		if i1 != i2 {
			meals = append(meals, cityMeals[i2])
		}
		return meals, true
	}
	return []model.Meal{}, false
}

// shuffle is a Fisher-Yates shuffle driven by the injected source.
func (g *Generator) shuffle(meals []model.Meal) {
	for i := len(meals) - 1; i > 0; i-- {
		j := int(g.rnd.Float64() * float64(i+1))
		if j > i {
			j = i
		}
		meals[i], meals[j] = meals[j], meals[i]
	}
}

// calendarDays returns each calendar date in [from, to] at midnight in from's
// location. It is empty when from is after to.
func calendarDays(from, to time.Time) []time.Time {
	loc := from.Location()
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	to = to.In(loc)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, loc)

	days := []time.Time{}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
