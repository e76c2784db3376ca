// Package carbon estimates trip emissions in kg CO2 and suggests ways to cut them.
package carbon

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/starstrip/starstrip-planner/internal/model"
)

// Mode is a transport mode.
type Mode string

const (
	ModeFlight Mode = "flight"
	ModeTrain  Mode = "train"
	ModeBus    Mode = "bus"
	ModeCar    Mode = "car"
)

// kg CO2 per passenger km.
var transportFactors = map[Mode]float64{
	ModeFlight: 0.255,
	ModeTrain:  0.041,
	ModeBus:    0.089,
	ModeCar:    0.192,
}

// kg CO2 per night.
var accommodationFactors = map[string]float64{
	"budget":   15,
	"moderate": 25,
	"luxury":   50,
}

const defaultAccommodationFactor = 25

// TransportEmissions returns the footprint of travelling km by mode.
func TransportEmissions(mode Mode, km float64) (float64, error) {
	f, ok := transportFactors[mode]
	if !ok {
		return 0, fmt.Errorf("%w: unknown transport mode %q", model.ErrValidation, mode)
	}
	if km < 0 {
		return 0, fmt.Errorf("%w: negative distance", model.ErrValidation)
	}
	return mul(km, f), nil
}

// AccommodationEmissions returns the footprint of nights at the given level.
// Unknown levels are priced as moderate.
func AccommodationEmissions(nights int, level string) float64 {
	f, ok := accommodationFactors[level]
	if !ok {
		f = defaultAccommodationFactor
	}
	return mul(float64(nights), f)
}

// Leg is one transport segment.
type Leg struct {
	Mode Mode    `json:"mode"`
	KM   float64 `json:"km"`
}

type EstimateRequest struct {
	Legs          []Leg   `json:"legs"`
	Nights        int     `json:"nights"`
	Accommodation string  `json:"accommodation"`
	Activities    float64 `json:"activities"`
}

// Breakdown is an estimate split by source. Ground transport (train, bus, car)
// is reported under Trains.
type Breakdown struct {
	Flights       float64 `json:"flights"`
	Trains        float64 `json:"trains"`
	Accommodation float64 `json:"accommodation"`
	Activities    float64 `json:"activities"`
	Total         float64 `json:"total"`
}

// Ledger drops the total for storage on a trip record.
func (b Breakdown) Ledger() model.CarbonBreakdown {
	return model.CarbonBreakdown{
		Flights:       b.Flights,
		Trains:        b.Trains,
		Accommodation: b.Accommodation,
		Activities:    b.Activities,
	}
}

// Estimate sums every component of req.
func Estimate(req EstimateRequest) (Breakdown, error) {
	if req.Nights < 0 || req.Activities < 0 {
		return Breakdown{}, fmt.Errorf("%w: nights and activities must not be negative", model.ErrValidation)
	}
	flights, ground := decimal.Zero, decimal.Zero
	for i, leg := range req.Legs {
		e, err := TransportEmissions(leg.Mode, leg.KM)
		if err != nil {
			return Breakdown{}, fmt.Errorf("leg %d: %w", i, err)
		}
		if leg.Mode == ModeFlight {
			flights = flights.Add(decimal.NewFromFloat(e))
		} else {
			ground = ground.Add(decimal.NewFromFloat(e))
		}
	}
	stay := decimal.NewFromFloat(AccommodationEmissions(req.Nights, req.Accommodation))
	act := decimal.NewFromFloat(req.Activities)

	return Breakdown{
		Flights:       flights.InexactFloat64(),
		Trains:        ground.InexactFloat64(),
		Accommodation: stay.InexactFloat64(),
		Activities:    act.InexactFloat64(),
		Total:         flights.Add(ground).Add(stay).Add(act).InexactFloat64(),
	}, nil
}

// Tip is a reduction suggestion. Icon is a display hint.
type Tip struct {
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

var baseTips = []Tip{
	{Icon: "Train", Title: "High-Speed Rail", Description: "Use trains for short distances"},
	{Icon: "Building", Title: "Eco Hotels", Description: "Choose sustainable accommodation"},
	{Icon: "Bus", Title: "Public Transport", Description: "Prefer buses and trains"},
	{Icon: "Package", Title: "Pack Light", Description: "Reduce luggage weight"},
	{Icon: "Recycle", Title: "Reusable Items", Description: "Bring water bottle and bag"},
	{Icon: "Utensils", Title: "Local Food", Description: "Support local restaurants"},
	{Icon: "Plane", Title: "Direct Flights", Description: "Avoid connections"},
	{Icon: "Clock", Title: "Off-Peak Travel", Description: "Visit during quieter times"},
}

var heavyTips = []Tip{
	{Icon: "Calendar", Title: "Longer Trips", Description: "Extend trip duration"},
	{Icon: "Mountain", Title: "Scenic Routes", Description: "Choose train routes"},
}

// HeavyFootprint is the threshold above which trip-shape tips lead the list.
const HeavyFootprint = 500

// ReductionTips returns suggestions for a footprint in kg CO2.
func ReductionTips(footprint float64) []Tip {
	if footprint > HeavyFootprint {
		out := make([]Tip, 0, len(heavyTips)+6)
		out = append(out, heavyTips...)
		return append(out, baseTips[:6]...)
	}
	return append([]Tip(nil), baseTips...)
}

// Comparison expresses a footprint in familiar units.
type Comparison struct {
	Trees   int     `json:"trees"`   // trees needed to offset it for a year
	CarDays float64 `json:"carDays"` // days of driving a car
	Flights float64 `json:"flights"` // domestic flights
}

// Equivalents converts footprint into a Comparison.
func Equivalents(footprint float64) Comparison {
	c := decimal.NewFromFloat(footprint)
	return Comparison{
		Trees:   int(math.Ceil(footprint / 21.77)),
		CarDays: c.Div(decimal.NewFromInt(4600)).Round(2).InexactFloat64(),
		Flights: c.Div(decimal.NewFromInt(90)).Round(1).InexactFloat64(),
	}
}

func mul(a, b float64) float64 {
	return decimal.NewFromFloat(a).Mul(decimal.NewFromFloat(b)).InexactFloat64()
}
