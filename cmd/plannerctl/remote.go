package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/starstrip/starstrip-planner/internal/carbon"
	"github.com/starstrip/starstrip-planner/internal/model"
	"github.com/starstrip/starstrip-planner/internal/session"
)

func newClient() *resty.Client {
	return resty.New().
		SetBaseURL(apiURL).
		SetHeader("Accept", "application/json").
		SetTimeout(15 * time.Second)
}

// call performs one request and decodes a 2xx body into out.
func call(ctx context.Context, method, path string, body, out any) error {
	req := newClient().R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}
	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		return err
	}
	log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode()).Dur("elapsed", time.Since(start)).Msg("api call")
	if resp.IsError() {
		return fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

func newRouteCmd() *cobra.Command {
	routeCmd := &cobra.Command{Use: "route", Short: "Generate itineraries on the service"}

	var city, from, to, scheme, country, nationality string
	addFlags := func(c *cobra.Command) {
		c.Flags().StringVar(&city, "city", "", "Start city (required)")
		c.Flags().StringVar(&from, "from", "", "First day YYYY-MM-DD (required)")
		c.Flags().StringVar(&to, "to", "", "Last day YYYY-MM-DD (required)")
		c.Flags().StringVar(&country, "country", "", "Annotate with public holidays of this country")
		c.Flags().StringVar(&nationality, "nationality", "", "Annotate with holidays for this nationality (default: saved preference)")
	}
	body := func(cmd *cobra.Command) (map[string]any, error) {
		nat := nationality
		if country == "" && nat == "" {
			saved, err := savedNationality(cmd)
			if err != nil {
				return nil, err
			}
			nat = saved
		}
		return map[string]any{
			"startLocation": city,
			"from":          from,
			"to":            to,
			"scheme":        scheme,
			"country":       country,
			"nationality":   nat,
		}, nil
	}

	gen := &cobra.Command{
		Use:   "generate",
		Short: "Generate one itinerary",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := body(cmd)
			if err != nil {
				return err
			}
			var out json.RawMessage
			if err := call(cmd.Context(), "POST", "/api/routes/generate", req, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	addFlags(gen)
	gen.Flags().StringVar(&scheme, "scheme", "experience", "time, experience, value or lowCarbon")
	routeCmd.AddCommand(gen)

	preview := &cobra.Command{
		Use:   "preview",
		Short: "Generate one itinerary per scheme",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := body(cmd)
			if err != nil {
				return err
			}
			var out json.RawMessage
			if err := call(cmd.Context(), "POST", "/api/routes/preview", req, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	addFlags(preview)
	routeCmd.AddCommand(preview)

	return routeCmd
}

func newTripsCmd() *cobra.Command {
	tripsCmd := &cobra.Command{Use: "trips", Short: "Carbon ledger operations"}
	var owner string
	tripsCmd.PersistentFlags().StringVarP(&owner, "owner", "o", "", "Owner profile key (defaults to the local active key)")

	resolveOwner := func(cmd *cobra.Command) (string, error) {
		if owner != "" {
			return owner, nil
		}
		var key string
		err := withSession(cmd, func(_ context.Context, s *session.Session) error {
			key = s.Identity.ActiveKey()
			return nil
		})
		return key, err
	}

	var in struct {
		name, startDate, endDate string
		footprint                float64
		b                        model.CarbonBreakdown
	}
	add := &cobra.Command{
		Use:   "add",
		Short: "Record a completed trip",
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := resolveOwner(cmd)
			if err != nil {
				return err
			}
			var out model.TripRecord
			err = call(cmd.Context(), "POST", "/api/users/"+o+"/trips", map[string]any{
				"name":            in.name,
				"startDate":       in.startDate,
				"endDate":         in.endDate,
				"carbonFootprint": in.footprint,
				"breakdown":       in.b,
			}, &out)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	add.Flags().StringVar(&in.name, "name", "", "Trip name (required)")
	add.Flags().StringVar(&in.startDate, "start", "", "Start date YYYY-MM-DD (required)")
	add.Flags().StringVar(&in.endDate, "end", "", "End date YYYY-MM-DD (required)")
	add.Flags().Float64Var(&in.footprint, "footprint", 0, "Total kg CO2e (defaults to the breakdown sum)")
	add.Flags().Float64Var(&in.b.Flights, "flights", 0, "Flight emissions")
	add.Flags().Float64Var(&in.b.Trains, "trains", 0, "Ground transport emissions")
	add.Flags().Float64Var(&in.b.Accommodation, "accommodation", 0, "Accommodation emissions")
	add.Flags().Float64Var(&in.b.Activities, "activities", 0, "Activity emissions")
	_ = add.MarkFlagRequired("name")
	tripsCmd.AddCommand(add)

	tripsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List recorded trips",
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := resolveOwner(cmd)
			if err != nil {
				return err
			}
			var out json.RawMessage
			if err := call(cmd.Context(), "GET", "/api/users/"+o+"/trips", nil, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	})

	var year int
	summary := &cobra.Command{
		Use:   "carbon",
		Short: "Show the carbon dashboard for a year",
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := resolveOwner(cmd)
			if err != nil {
				return err
			}
			var out json.RawMessage
			path := "/api/users/" + o + "/trips/carbon?year=" + strconv.Itoa(year)
			if err := call(cmd.Context(), "GET", path, nil, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	summary.Flags().IntVar(&year, "year", time.Now().Year(), "Calendar year")
	tripsCmd.AddCommand(summary)

	return tripsCmd
}

func newCarbonCmd() *cobra.Command {
	carbonCmd := &cobra.Command{Use: "carbon", Short: "Footprint calculator"}

	var req carbon.EstimateRequest
	var flightKM, trainKM, busKM, carKM float64
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate a trip footprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, l := range []carbon.Leg{
				{Mode: carbon.ModeFlight, KM: flightKM},
				{Mode: carbon.ModeTrain, KM: trainKM},
				{Mode: carbon.ModeBus, KM: busKM},
				{Mode: carbon.ModeCar, KM: carKM},
			} {
				if l.KM > 0 {
					req.Legs = append(req.Legs, l)
				}
			}
			var out json.RawMessage
			if err := call(cmd.Context(), "POST", "/api/carbon/estimate", req, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().Float64Var(&flightKM, "flight-km", 0, "Distance flown")
	cmd.Flags().Float64Var(&trainKM, "train-km", 0, "Distance by train")
	cmd.Flags().Float64Var(&busKM, "bus-km", 0, "Distance by bus")
	cmd.Flags().Float64Var(&carKM, "car-km", 0, "Distance by car")
	cmd.Flags().IntVar(&req.Nights, "nights", 0, "Nights of accommodation")
	cmd.Flags().StringVar(&req.Accommodation, "accommodation", "moderate", "budget, moderate or luxury")
	cmd.Flags().Float64Var(&req.Activities, "activities", 0, "Activity emissions")
	carbonCmd.AddCommand(cmd)
	return carbonCmd
}

func newHolidaysCmd() *cobra.Command {
	var country, nationality string
	var year int
	cmd := &cobra.Command{
		Use:   "holidays",
		Short: "List public holidays for a country or nationality",
		RunE: func(cmd *cobra.Command, args []string) error {
			if country == "" && nationality == "" {
				saved, err := savedNationality(cmd)
				if err != nil {
					return err
				}
				if saved == "" {
					return fmt.Errorf("--country or --nationality required (or set one with prefs set --nationality)")
				}
				nationality = saved
			}
			req := newClient().R().SetContext(cmd.Context()).
				SetQueryParam("year", strconv.Itoa(year))
			if country != "" {
				req.SetQueryParam("country", country)
			} else {
				req.SetQueryParam("nationality", nationality)
			}
			resp, err := req.Get("/api/holidays")
			if err != nil {
				return err
			}
			if resp.IsError() {
				return fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
			}
			return printJSON(cmd.OutOrStdout(), json.RawMessage(resp.Body()))
		},
	}
	cmd.Flags().StringVar(&country, "country", "", "ISO country code")
	cmd.Flags().StringVar(&nationality, "nationality", "", "Traveller nationality code")
	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "Calendar year")
	return cmd
}

// newProfilesCmd syncs local partitions with the service snapshot store.
func newProfilesCmd() *cobra.Command {
	profilesCmd := &cobra.Command{Use: "profiles", Short: "Sync profile snapshots with the service"}

	profilesCmd.AddCommand(&cobra.Command{
		Use:   "push",
		Short: "Upload the active planner and favorites",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session.Session) error {
				key := s.Identity.ActiveKey()
				if err := call(ctx, "PUT", "/api/profiles/"+key+"/planner", s.Planner.State(), nil); err != nil {
					return err
				}
				if err := call(ctx, "PUT", "/api/profiles/"+key+"/favorites", s.Favorites.List(), nil); err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]string{"pushed": key})
			})
		},
	})

	profilesCmd.AddCommand(&cobra.Command{
		Use:   "pull",
		Short: "Replace the active planner and favorites with the service copy",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session.Session) error {
				key := s.Identity.ActiveKey()
				var plan, fav struct {
					Data json.RawMessage `json:"data"`
				}
				if err := call(ctx, "GET", "/api/profiles/"+key+"/planner", nil, &plan); err != nil {
					return err
				}
				if err := call(ctx, "GET", "/api/profiles/"+key+"/favorites", nil, &fav); err != nil {
					return err
				}
				var p model.RoutePlannerState
				var f model.Favorites
				if err := json.Unmarshal(plan.Data, &p); err != nil {
					return err
				}
				if err := json.Unmarshal(fav.Data, &f); err != nil {
					return err
				}
				s.Planner.Partitions().Put(key, p)
				s.Favorites.Partitions().Put(key, f)
				return printJSON(cmd.OutOrStdout(), map[string]string{"pulled": key})
			})
		},
	})

	var userID, guestID string
	merge := &cobra.Command{
		Use:   "merge",
		Short: "Merge a guest's server snapshots into a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out json.RawMessage
			if err := call(cmd.Context(), "POST", "/api/profiles/merge", map[string]string{"userId": userID, "guestId": guestID}, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	merge.Flags().StringVar(&userID, "user", "", "User ID (required)")
	merge.Flags().StringVar(&guestID, "guest", "", "Guest ID (required)")
	_ = merge.MarkFlagRequired("user")
	_ = merge.MarkFlagRequired("guest")
	profilesCmd.AddCommand(merge)

	return profilesCmd
}
