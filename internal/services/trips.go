package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/starstrip/starstrip-planner/internal/carbon"
	"github.com/starstrip/starstrip-planner/internal/metrics"
	"github.com/starstrip/starstrip-planner/internal/model"
	"github.com/starstrip/starstrip-planner/internal/store"
)

// TripInput is the caller-supplied part of a ledger entry.
type TripInput struct {
	Name            string                `json:"name"`
	StartDate       string                `json:"startDate"`
	EndDate         string                `json:"endDate"`
	CarbonFootprint float64               `json:"carbonFootprint"`
	Breakdown       model.CarbonBreakdown `json:"breakdown"`
}

// CarbonSummary is the footprint dashboard for one owner.
type CarbonSummary struct {
	Total       float64           `json:"total"`
	Year        int               `json:"year"`
	Yearly      float64           `json:"yearly"`
	Trips       int               `json:"trips"`
	Tips        []carbon.Tip      `json:"tips"`
	Equivalents carbon.Comparison `json:"equivalents"`
}

// TripService manages the append-only carbon ledger.
type TripService struct {
	store store.Store
	now   func() time.Time
}

func NewTripService(s store.Store) *TripService {
	return &TripService{store: s, now: func() time.Time { return time.Now().UTC() }}
}

// Record validates in and appends it under owner. A zero footprint is derived
// from the breakdown.
func (s *TripService) Record(ctx context.Context, owner string, in TripInput) (*model.TripRecord, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: trip name is required", model.ErrValidation)
	}
	start, err := time.Parse(model.DateLayout, in.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: startDate must be YYYY-MM-DD", model.ErrValidation)
	}
	end, err := time.Parse(model.DateLayout, in.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: endDate must be YYYY-MM-DD", model.ErrValidation)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: endDate before startDate", model.ErrValidation)
	}
	b := in.Breakdown
	if in.CarbonFootprint < 0 || b.Flights < 0 || b.Trains < 0 || b.Accommodation < 0 || b.Activities < 0 {
		return nil, fmt.Errorf("%w: emissions must not be negative", model.ErrValidation)
	}
	footprint := in.CarbonFootprint
	if footprint == 0 {
		footprint = sum(b.Flights, b.Trains, b.Accommodation, b.Activities)
	}

	rec, err := s.store.Trips().Append(ctx, &model.TripRecord{
		ID:              uuid.NewString(),
		OwnerKey:        owner,
		Name:            name,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		CarbonFootprint: footprint,
		Breakdown:       b,
		CreatedAt:       s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("append trip: %w", err)
	}
	metrics.TripsRecorded.Inc()
	return rec, nil
}

func (s *TripService) List(ctx context.Context, owner string) ([]*model.TripRecord, error) {
	return s.store.Trips().List(ctx, owner)
}

// TotalCarbon sums every trip of owner.
func (s *TripService) TotalCarbon(ctx context.Context, owner string) (float64, error) {
	trips, err := s.List(ctx, owner)
	if err != nil {
		return 0, err
	}
	return totalCarbon(trips, 0), nil
}

// YearlyCarbon sums the trips of owner that start in year.
func (s *TripService) YearlyCarbon(ctx context.Context, owner string, year int) (float64, error) {
	trips, err := s.List(ctx, owner)
	if err != nil {
		return 0, err
	}
	return totalCarbon(trips, year), nil
}

// Summary reports totals for owner, with tips and equivalents for year.
func (s *TripService) Summary(ctx context.Context, owner string, year int) (*CarbonSummary, error) {
	trips, err := s.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	yearly := totalCarbon(trips, year)
	return &CarbonSummary{
		Total:       totalCarbon(trips, 0),
		Year:        year,
		Yearly:      yearly,
		Trips:       len(trips),
		Tips:        carbon.ReductionTips(yearly),
		Equivalents: carbon.Equivalents(yearly),
	}, nil
}

// totalCarbon sums footprints; year 0 means all years.
func totalCarbon(trips []*model.TripRecord, year int) float64 {
	total := decimal.Zero
	prefix := strconv.Itoa(year) + "-"
	for _, t := range trips {
		if year != 0 && !strings.HasPrefix(t.StartDate, prefix) {
			continue
		}
		total = total.Add(decimal.NewFromFloat(t.CarbonFootprint))
	}
	return total.InexactFloat64()
}

func sum(vs ...float64) float64 {
	total := decimal.Zero
	for _, v := range vs {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.InexactFloat64()
}
