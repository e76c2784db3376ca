package route

import (
	"cmp"
	"slices"

	"github.com/starstrip/starstrip-planner/internal/model"
)

// Rank returns a reordered copy of attractions expressing preference under scheme.
// Unknown or unset schemes keep the input order. The input is never modified.
func Rank(attractions []model.Attraction, scheme model.Scheme) []model.Attraction {
	sorted := slices.Clone(attractions)
	if sorted == nil {
		sorted = []model.Attraction{}
	}

	switch scheme {
	case model.SchemeTime:
		slices.SortStableFunc(sorted, func(a, b model.Attraction) int {
			return cmp.Compare(a.Duration, b.Duration)
		})
	case model.SchemeExperience:
		slices.SortStableFunc(sorted, func(a, b model.Attraction) int {
			return cmp.Compare(experienceScore(b), experienceScore(a))
		})
	case model.SchemeValue:
		slices.SortStableFunc(sorted, func(a, b model.Attraction) int {
			return cmp.Compare(valueScore(b), valueScore(a))
		})
	case model.SchemeLowCarbon:
		slices.SortStableFunc(sorted, func(a, b model.Attraction) int {
			return cmp.Compare(a.CarbonFootprint, b.CarbonFootprint)
		})
	}
	return sorted
}

func experienceScore(a model.Attraction) float64 {
	return a.Cost + a.Duration*20
}

// valueScore is hours per currency unit; free attractions count as cost 1.
func valueScore(a model.Attraction) float64 {
	cost := a.Cost
	if cost == 0 {
		cost = 1
	}
	return a.Duration / cost
}
