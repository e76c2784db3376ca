// Package session assembles the client-side state stores around one events bus
// and keeps them persisted.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/starstrip/starstrip-planner/internal/events"
	"github.com/starstrip/starstrip-planner/internal/identity"
	"github.com/starstrip/starstrip-planner/internal/model"
	"github.com/starstrip/starstrip-planner/internal/profile"
)

// Document names.
const (
	DocAuth      = "auth"
	DocPlanner   = "planner"
	DocFavorites = "favorites"
	DocPrefs     = "preferences"
)

// Loader reads a persisted document. A missing document is model.ErrNotFound.
type Loader interface {
	Load(ctx context.Context, name string) ([]byte, error)
}

// Enqueuer accepts fire-and-forget writes.
type Enqueuer interface {
	Enqueue(name string, body []byte) bool
}

// Session owns the identity, planner, favorites and preference stores.
type Session struct {
	Bus         *events.Bus
	Identity    *identity.Store
	Planner     *profile.Planner
	Favorites   *profile.Favorites
	Merger      *profile.Merger
	Preferences *profile.Preferences

	log zerolog.Logger
	out Enqueuer
}

// New wires the stores. The partitions subscribe before the merger so that a
// merge always sees refreshed views.
func New(gen profile.ItineraryGenerator, log zerolog.Logger) *Session {
	bus := events.NewBus()
	ids := identity.NewStore(bus)

	planner := profile.NewPlanner(profile.NewPlannerPartitions(ids.ActiveKey), gen)
	favorites := profile.NewFavorites(profile.NewFavoritesPartitions(ids.ActiveKey))
	planner.Partitions().Bind(bus)
	favorites.Partitions().Bind(bus)

	merger := profile.NewMerger(ids, planner.Partitions(), favorites.Partitions(), log)
	merger.Bind(bus)

	return &Session{
		Bus:         bus,
		Identity:    ids,
		Planner:     planner,
		Favorites:   favorites,
		Merger:      merger,
		Preferences: profile.NewPreferences(),
		log:         log,
	}
}

// Load restores every document. Missing documents leave the initial state.
// A persisted identity that still carries both ids is merged immediately.
func (s *Session) Load(ctx context.Context, l Loader) error {
	if b, err := load(ctx, l, DocAuth); err != nil {
		return err
	} else if len(b) > 0 {
		var st identity.State
		if err := json.Unmarshal(b, &st); err != nil {
			return fmt.Errorf("%w: auth document: %v", model.ErrValidation, err)
		}
		s.Identity.Restore(st)
	}

	b, err := load(ctx, l, DocPlanner)
	if err != nil {
		return err
	}
	pt, err := profile.LoadPlannerSnapshot(b)
	if err != nil {
		return err
	}
	s.Planner.Partitions().Replace(pt.Profiles)

	b, err = load(ctx, l, DocFavorites)
	if err != nil {
		return err
	}
	ft, err := profile.LoadFavoritesSnapshot(b)
	if err != nil {
		return err
	}
	s.Favorites.Partitions().Replace(ft.Profiles)

	b, err = load(ctx, l, DocPrefs)
	if err != nil {
		return err
	}
	prefs, err := profile.DecodePreferences(b)
	if err != nil {
		return err
	}
	s.Preferences.Restore(prefs)

	if s.Merger.MergeNow() {
		s.log.Info().Str("profile_key", s.Identity.ActiveKey()).Msg("pending guest merge completed on load")
	}
	return nil
}

func load(ctx context.Context, l Loader, name string) ([]byte, error) {
	b, err := l.Load(ctx, name)
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return b, nil
}

// Persist sends every later change to out. Writes are never awaited.
func (s *Session) Persist(out Enqueuer) {
	s.out = out
	s.Planner.Partitions().OnChange(func(string, model.RoutePlannerState) { s.savePlanner() })
	s.Favorites.Partitions().OnChange(func(string, model.Favorites) { s.saveFavorites() })
	s.Preferences.OnChange(func(model.TravelerProfile) { s.savePreferences() })
	s.Bus.Subscribe(func(evt events.Event) {
		if evt.Kind == events.IdentityChanged {
			s.saveAuth()
		}
	})
}

// Flush enqueues every document.
func (s *Session) Flush() {
	s.saveAuth()
	s.savePlanner()
	s.saveFavorites()
	s.savePreferences()
}

func (s *Session) savePreferences() {
	b, err := json.Marshal(s.Preferences.Get())
	s.enqueue(DocPrefs, b, err)
}

func (s *Session) saveAuth() {
	b, err := json.Marshal(s.Identity.Snapshot())
	s.enqueue(DocAuth, b, err)
}

func (s *Session) savePlanner() {
	parts := s.Planner.Partitions()
	b, err := profile.EncodePlannerSnapshot(profile.PlannerTable{State: parts.Current(), Profiles: parts.Profiles()})
	s.enqueue(DocPlanner, b, err)
}

func (s *Session) saveFavorites() {
	b, err := profile.EncodeFavoritesSnapshot(profile.FavoritesTable{Profiles: s.Favorites.Partitions().Profiles()})
	s.enqueue(DocFavorites, b, err)
}

func (s *Session) enqueue(name string, body []byte, err error) {
	if s.out == nil {
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("document", name).Msg("encode session document")
		return
	}
	s.out.Enqueue(name, body)
}
