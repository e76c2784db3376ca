package route

import (
	"github.com/shopspring/decimal"

	"github.com/starstrip/starstrip-planner/internal/model"
)

// carbonWeight models transport and accommodation that the catalog does not itemize.
type carbonWeight struct {
	multiplier decimal.Decimal
	perDay     decimal.Decimal
}

var (
	carbonWeights = map[model.Scheme]carbonWeight{
		model.SchemeTime:       {decimal.RequireFromString("1.8"), decimal.NewFromInt(80)},
		model.SchemeExperience: {decimal.RequireFromString("1.5"), decimal.NewFromInt(50)},
		model.SchemeValue:      {decimal.RequireFromString("1.2"), decimal.NewFromInt(25)},
		model.SchemeLowCarbon:  {decimal.RequireFromString("0.8"), decimal.NewFromInt(12)},
	}
	defaultCarbonWeight = carbonWeight{decimal.RequireFromString("1.3"), decimal.NewFromInt(30)}
)

// CalculateRouteTotals sums cost over every attraction and meal and estimates
// carbon as round(base*multiplier + days*perDay) for scheme.
func CalculateRouteTotals(itinerary []model.ItineraryDay, scheme model.Scheme) model.Totals {
	cost := decimal.Zero
	base := decimal.Zero
	for _, day := range itinerary {
		for _, a := range day.Attractions {
			cost = cost.Add(decimal.NewFromFloat(a.Cost))
			base = base.Add(decimal.NewFromFloat(a.CarbonFootprint))
		}
		for _, m := range day.Meals {
			cost = cost.Add(decimal.NewFromFloat(m.Cost))
			base = base.Add(decimal.NewFromFloat(m.CarbonFootprint))
		}
	}

	w, ok := carbonWeights[scheme]
	if !ok {
		w = defaultCarbonWeight
	}
	carbon := base.Mul(w.multiplier).
		Add(w.perDay.Mul(decimal.NewFromInt(int64(len(itinerary))))).
		Round(0)

	return model.Totals{
		TotalCost:   cost.InexactFloat64(),
		TotalCarbon: carbon.InexactFloat64(),
	}
}
