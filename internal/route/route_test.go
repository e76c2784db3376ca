package route

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starstrip/starstrip-planner/internal/catalog"
	"github.com/starstrip/starstrip-planner/internal/model"
)

func day(s string) time.Time {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func seeded(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func ids(as []model.Attraction) []string {
	out := make([]string, 0, len(as))
	for _, a := range as {
		out = append(out, a.ID)
	}
	return out
}

func TestRank(t *testing.T) {
	in := []model.Attraction{
		{ID: "a", Duration: 1, Cost: 100, CarbonFootprint: 5},
		{ID: "b", Duration: 3, Cost: 0, CarbonFootprint: 1},
		{ID: "c", Duration: 2, Cost: 10, CarbonFootprint: 9},
	}

	tests := []struct {
		scheme model.Scheme
		want   []string
	}{
		{model.SchemeTime, []string{"a", "c", "b"}},
		// scores: a=120, b=60, c=50
		{model.SchemeExperience, []string{"a", "b", "c"}},
		// value: a=0.01, b=3 (cost 0 counts as 1), c=0.2
		{model.SchemeValue, []string{"b", "c", "a"}},
		{model.SchemeLowCarbon, []string{"b", "a", "c"}},
		{"", []string{"a", "b", "c"}},
		{"bogus", []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.scheme), func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Rank(in, tt.scheme)))
		})
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids(in), "input must not be reordered")
	assert.Empty(t, Rank(nil, model.SchemeTime))
}

func TestRankValueKeepsDisplayCost(t *testing.T) {
	out := Rank([]model.Attraction{{ID: "free", Duration: 1, Cost: 0}}, model.SchemeValue)
	assert.Equal(t, 0.0, out[0].Cost)
}

func TestCitySchedule(t *testing.T) {
	tests := []struct {
		name  string
		start string
		n     int
		want  []string
	}{
		{"zero", "Shanghai", 0, []string{}},
		{"one day", "Shanghai", 1, []string{"Shanghai"}},
		{"two days", "Shanghai", 2, []string{"Shanghai", "Shanghai"}},
		{"three days ceil favors start", "Shanghai", 3, []string{"Shanghai", "Shanghai", "Suzhou"}},
		{"four days", "Guangzhou", 4, []string{"Guangzhou", "Guangzhou", "Hong Kong", "Hong Kong"}},
		{"four days single cluster", "Beijing", 4, []string{"Beijing", "Beijing", "Beijing", "Beijing"}},
		{"five days", "Shanghai", 5, []string{"Shanghai", "Shanghai", "Suzhou", "Suzhou", "Hangzhou"}},
		{"seven days", "Macau", 7, []string{"Macau", "Macau", "Macau", "Hong Kong", "Hong Kong", "Guangzhou", "Guangzhou"}},
		{"unknown city", "Atlantis", 5, []string{"Atlantis", "Atlantis", "Atlantis", "Atlantis", "Atlantis"}},
		{"unknown city three days", "Atlantis", 3, []string{"Atlantis", "Atlantis", "Atlantis"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CitySchedule(tt.start, tt.n))
		})
	}
}

func TestGenerateDayCountAndOrder(t *testing.T) {
	g := NewGenerator(catalog.Default(), seeded(1))
	days := g.Generate("Shanghai", day("2025-04-29"), day("2025-05-03"), model.SchemeTime)
	require.Len(t, days, 5)
	want := []string{"2025-04-29", "2025-04-30", "2025-05-01", "2025-05-02", "2025-05-03"}
	for i, d := range days {
		assert.Equal(t, want[i], d.Date)
	}
}

func TestGenerateIgnoresTimeOfDay(t *testing.T) {
	g := NewGenerator(catalog.Default(), seeded(1))
	from := time.Date(2025, 1, 1, 23, 30, 0, 0, time.UTC)
	to := time.Date(2025, 1, 2, 0, 15, 0, 0, time.UTC)
	assert.Len(t, g.Generate("Beijing", from, to, model.SchemeValue), 2)
}

func TestGenerateReversedRangeIsEmpty(t *testing.T) {
	g := NewGenerator(catalog.Default(), seeded(1))
	plan := g.GenerateWithReport("Beijing", day("2025-05-03"), day("2025-05-01"), model.SchemeTime)
	assert.Empty(t, plan.Days)
	assert.Empty(t, plan.Report.CitySchedule)
}

func TestGenerateUnknownCityDegradesToEmptyDays(t *testing.T) {
	g := NewGenerator(catalog.Default(), seeded(1))
	plan := g.GenerateWithReport("Atlantis", day("2025-05-01"), day("2025-05-02"), model.SchemeTime)
	require.Len(t, plan.Days, 2)
	for _, d := range plan.Days {
		assert.Empty(t, d.Attractions)
		assert.Empty(t, d.Meals)
	}
	assert.Equal(t, []int{0, 1}, plan.Report.EmptyDays)
}

func TestGenerateInvariantsAcrossCatalog(t *testing.T) {
	cities := []string{"Beijing", "Shanghai", "Guangzhou", "Xi'an", "Wuzhen", "Hong Kong"}
	for _, scheme := range model.Schemes() {
		for _, city := range cities {
			for _, n := range []int{1, 3, 6, 12} {
				g := NewGenerator(catalog.Default(), seeded(uint64(n)))
				from := day("2025-06-01")
				plan := g.GenerateWithReport(city, from, from.AddDate(0, 0, n-1), scheme)
				require.Len(t, plan.Days, n)

				fallback := map[int]bool{}
				for _, i := range plan.Report.AttractionFallbackDays {
					fallback[i] = true
				}
				seen := map[string]int{}
				for i, d := range plan.Days {
					assert.LessOrEqual(t, len(d.Meals), 2)
					if fallback[i] {
						assert.Len(t, d.Attractions, 1, "%s/%s day %d", scheme, city, i)
						continue
					}
					assert.LessOrEqual(t, len(d.Attractions), 3)
					hours := 0.0
					for _, a := range d.Attractions {
						hours += a.Duration
						prev, dup := seen[a.ID]
						assert.False(t, dup, "%s reused on day %d (first day %d)", a.ID, i, prev)
						seen[a.ID] = i
					}
					assert.LessOrEqual(t, hours, 8.0)
				}
			}
		}
	}
}

func TestGenerateSkipsAttractionsThatExceedBudget(t *testing.T) {
	cat := catalog.New([]model.Attraction{
		{ID: "long", City: "X", Duration: 5},
		{ID: "mid", City: "X", Duration: 4},
		{ID: "short", City: "X", Duration: 2},
		{ID: "tiny", City: "X", Duration: 1},
	}, nil)
	g := NewGenerator(cat, seeded(1))
	days := g.Generate("X", day("2025-01-01"), day("2025-01-01"), model.SchemeExperience)
	// experience order: long(100) mid(80) short(40) tiny(20); long+mid > 8, so mid is skipped.
	assert.Equal(t, []string{"long", "short", "tiny"}, ids(days[0].Attractions))
}

func TestGenerateCapsAttractionsPerDay(t *testing.T) {
	cat := catalog.New([]model.Attraction{
		{ID: "a", City: "X", Duration: 1},
		{ID: "b", City: "X", Duration: 1},
		{ID: "c", City: "X", Duration: 1},
		{ID: "d", City: "X", Duration: 1},
	}, nil)
	days := NewGenerator(cat, seeded(1)).Generate("X", day("2025-01-01"), day("2025-01-02"), model.SchemeTime)
	assert.Equal(t, []string{"a", "b", "c"}, ids(days[0].Attractions))
	assert.Equal(t, []string{"d"}, ids(days[1].Attractions))
}

func TestGenerateAttractionFallbackRotation(t *testing.T) {
	cat := catalog.New([]model.Attraction{
		{ID: "a1", City: "X", Duration: 2},
		{ID: "a2", City: "X", Duration: 7},
	}, nil)
	g := NewGenerator(cat, seeded(1))
	plan := g.GenerateWithReport("X", day("2025-01-01"), day("2025-01-04"), model.SchemeTime)

	// Day 0 takes a1 then skips a2 (9h). Day 1 takes a2. Days 2 and 3 rotate.
	assert.Equal(t, []string{"a1"}, ids(plan.Days[0].Attractions))
	assert.Equal(t, []string{"a2"}, ids(plan.Days[1].Attractions))
	assert.Equal(t, []string{"a1"}, ids(plan.Days[2].Attractions)) // 2 % 2
	assert.Equal(t, []string{"a2"}, ids(plan.Days[3].Attractions)) // 3 % 2
	assert.Equal(t, []int{2, 3}, plan.Report.AttractionFallbackDays)
}

func TestGenerateOversizedAttractionIsForcedByFallback(t *testing.T) {
	cat := catalog.New([]model.Attraction{{ID: "trek", City: "X", Duration: 10}}, nil)
	plan := NewGenerator(cat, seeded(1)).GenerateWithReport("X", day("2025-01-01"), day("2025-01-01"), model.SchemeTime)
	assert.Equal(t, []string{"trek"}, ids(plan.Days[0].Attractions))
	assert.Equal(t, []int{0}, plan.Report.AttractionFallbackDays)
}

func TestGenerateMealSelection(t *testing.T) {
	cat := catalog.New(
		[]model.Attraction{{ID: "a", City: "X", Duration: 1}},
		[]model.Meal{{ID: "m0", City: "X"}, {ID: "m1", City: "X"}, {ID: "m2", City: "X"}},
	)
	plan := NewGenerator(cat, seeded(7)).GenerateWithReport("X", day("2025-01-01"), day("2025-01-03"), model.SchemeTime)

	first := plan.Days[0].Meals
	require.Len(t, first, 2)
	assert.NotEqual(t, first[0].ID, first[1].ID)

	second := plan.Days[1].Meals
	require.Len(t, second, 1)
	assert.NotContains(t, []string{first[0].ID, first[1].ID}, second[0].ID)

	// Day 2 rotates: indices (4%3, 5%3) = (1, 2).
	third := plan.Days[2].Meals
	require.Len(t, third, 2)
	assert.Equal(t, "m1", third[0].ID)
	assert.Equal(t, "m2", third[1].ID)
	assert.Equal(t, []int{2}, plan.Report.MealFallbackDays)
}

func TestGenerateMealRotationCollisionYieldsOneMeal(t *testing.T) {
	cat := catalog.New(
		[]model.Attraction{{ID: "a", City: "X", Duration: 1}},
		[]model.Meal{{ID: "only", City: "X"}},
	)
	days := NewGenerator(cat, seeded(1)).Generate("X", day("2025-01-01"), day("2025-01-02"), model.SchemeTime)
	require.Len(t, days[0].Meals, 1)
	require.Len(t, days[1].Meals, 1)
	assert.Equal(t, "only", days[1].Meals[0].ID)
}

func TestGenerateDeterministicWithSameSeed(t *testing.T) {
	a := NewGenerator(catalog.Default(), seeded(42)).Generate("Hangzhou", day("2025-03-01"), day("2025-03-07"), model.SchemeValue)
	b := NewGenerator(catalog.Default(), seeded(42)).Generate("Hangzhou", day("2025-03-01"), day("2025-03-07"), model.SchemeValue)
	assert.Equal(t, a, b)
}

func TestGenerateRouteUsesDefaultCatalog(t *testing.T) {
	days := GenerateRoute("Chengdu", day("2025-03-01"), day("2025-03-02"), model.SchemeLowCarbon)
	require.Len(t, days, 2)
	assert.NotEmpty(t, days[0].Attractions)
	assert.Equal(t, "Chengdu", days[0].Attractions[0].City)
}

func TestWithDailyLimits(t *testing.T) {
	cat := catalog.New([]model.Attraction{
		{ID: "a", City: "X", Duration: 1},
		{ID: "b", City: "X", Duration: 1},
	}, nil)
	days := NewGenerator(cat, seeded(1), WithDailyLimits(1.5, 5)).Generate("X", day("2025-01-01"), day("2025-01-01"), model.SchemeTime)
	assert.Equal(t, []string{"a"}, ids(days[0].Attractions))
}

func TestCalculateRouteTotals(t *testing.T) {
	one := []model.ItineraryDay{{
		Date:        "2025-01-01",
		Attractions: []model.Attraction{{Cost: 100, CarbonFootprint: 10}},
	}}
	assert.Equal(t, model.Totals{TotalCost: 100, TotalCarbon: 37}, CalculateRouteTotals(one, model.SchemeValue))

	two := []model.ItineraryDay{
		{Attractions: []model.Attraction{{Cost: 10.1, CarbonFootprint: 2.5}}, Meals: []model.Meal{{Cost: 20.2, CarbonFootprint: 1.5}}},
		{Meals: []model.Meal{{Cost: 0.1, CarbonFootprint: 6}}},
	}
	// base carbon = 10
	tests := []struct {
		scheme model.Scheme
		carbon float64
	}{
		{model.SchemeTime, 178},      // 18 + 160
		{model.SchemeExperience, 115}, // 15 + 100
		{model.SchemeValue, 62},       // 12 + 50
		{model.SchemeLowCarbon, 32},   // 8 + 24
		{"", 73},                      // 13 + 60
	}
	for _, tt := range tests {
		got := CalculateRouteTotals(two, tt.scheme)
		assert.Equal(t, 30.4, got.TotalCost, tt.scheme)
		assert.Equal(t, tt.carbon, got.TotalCarbon, tt.scheme)
	}

	assert.Equal(t, model.Totals{}, CalculateRouteTotals(nil, model.SchemeTime))
}

func TestCalculateRouteTotalsRoundsHalfUp(t *testing.T) {
	days := []model.ItineraryDay{{Attractions: []model.Attraction{{CarbonFootprint: 0.625}}}}
	// 0.625 * 0.8 + 12 = 12.5
	assert.Equal(t, 13.0, CalculateRouteTotals(days, model.SchemeLowCarbon).TotalCarbon)
}
