package services

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/starstrip/starstrip-planner/internal/catalog"
	"github.com/starstrip/starstrip-planner/internal/holiday"
	"github.com/starstrip/starstrip-planner/internal/model"
	"github.com/starstrip/starstrip-planner/internal/route"
)

// HolidayLookup is the part of the holiday client RouteService needs.
type HolidayLookup interface {
	PublicHolidays(ctx context.Context, country string, year int) ([]holiday.Holiday, error)
}

// RouteRequest is a validated generation request. Country is optional and
// enables holiday annotation.
type RouteRequest struct {
	StartLocation string
	From, To      time.Time
	Scheme        model.Scheme
	Country       string
}

// RouteResult is one generated plan.
type RouteResult struct {
	Scheme    model.Scheme         `json:"scheme"`
	Itinerary []model.ItineraryDay `json:"itinerary"`
	Totals    model.Totals         `json:"totals"`
	Report    route.Report         `json:"report"`
	Holidays  []holiday.Holiday    `json:"holidays,omitempty"`
}

// RouteService generates itineraries over a catalog.
type RouteService struct {
	cat       *catalog.Catalog
	holidays  HolidayLookup
	newSource func() route.RandomSource
	log       zerolog.Logger
}

// NewRouteService builds a service. holidays may be nil.
func NewRouteService(cat *catalog.Catalog, holidays HolidayLookup, log zerolog.Logger) *RouteService {
	return &RouteService{
		cat:      cat,
		holidays: holidays,
		newSource: func() route.RandomSource {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
		log: log,
	}
}

// WithSourceFactory replaces the per-generation random source factory.
func (s *RouteService) WithSourceFactory(f func() route.RandomSource) *RouteService {
	s.newSource = f
	return s
}

// Generate produces one plan for req.
func (s *RouteService) Generate(ctx context.Context, req RouteRequest) (*RouteResult, error) {
	res := s.generate(req.StartLocation, req.From, req.To, req.Scheme)
	res.Holidays = s.annotate(ctx, req)
	return res, nil
}

// Preview generates one plan per scheme concurrently. Each goroutine owns its
// generator and random source.
func (s *RouteService) Preview(ctx context.Context, req RouteRequest) ([]*RouteResult, error) {
	schemes := model.Schemes()
	out := make([]*RouteResult, len(schemes))

	g, gctx := errgroup.WithContext(ctx)
	for i, scheme := range schemes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = s.generate(req.StartLocation, req.From, req.To, scheme)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if hs := s.annotate(ctx, req); len(hs) > 0 {
		for _, r := range out {
			r.Holidays = hs
		}
	}
	return out, nil
}

// Totals recomputes the totals of an edited itinerary.
func (s *RouteService) Totals(itinerary []model.ItineraryDay, scheme model.Scheme) model.Totals {
	return route.CalculateRouteTotals(itinerary, scheme)
}

func (s *RouteService) generate(start string, from, to time.Time, scheme model.Scheme) *RouteResult {
	gen := route.NewGenerator(s.cat, s.newSource(), route.WithLogger(s.log))
	plan := gen.GenerateWithReport(start, from, to, scheme)
	return &RouteResult{
		Scheme:    scheme,
		Itinerary: plan.Days,
		Totals:    route.CalculateRouteTotals(plan.Days, scheme),
		Report:    plan.Report,
	}
}

// annotate returns the holidays inside the request range. Lookup failures
// degrade to no annotation.
func (s *RouteService) annotate(ctx context.Context, req RouteRequest) []holiday.Holiday {
	if s.holidays == nil || req.Country == "" || req.To.Before(req.From) {
		return nil
	}
	var all []holiday.Holiday
	for y := req.From.Year(); y <= req.To.Year(); y++ {
		hs, err := s.holidays.PublicHolidays(ctx, req.Country, y)
		if err != nil {
			s.log.Warn().Err(err).Str("country", req.Country).Int("year", y).Msg("holiday annotation skipped")
			return nil
		}
		all = append(all, hs...)
	}
	return holiday.HolidaysInRange(all, req.From, req.To)
}
