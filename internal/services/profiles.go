package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/starstrip/starstrip-planner/internal/metrics"
	"github.com/starstrip/starstrip-planner/internal/model"
	"github.com/starstrip/starstrip-planner/internal/profile"
	"github.com/starstrip/starstrip-planner/internal/store"
)

// MergeResult describes a server-side guest merge.
type MergeResult struct {
	Merged         bool `json:"merged"`
	PlannerAdopted bool `json:"plannerAdopted"`
}

// ProfileService is the snapshot sink plus the server-side merge.
type ProfileService struct {
	store store.Store
	log   zerolog.Logger
}

func NewProfileService(s store.Store, log zerolog.Logger) *ProfileService {
	return &ProfileService{store: s, log: log}
}

func (s *ProfileService) Get(ctx context.Context, key string, kind model.SnapshotKind) (*model.ProfileSnapshot, error) {
	return s.store.Profiles().GetSnapshot(ctx, key, kind)
}

// Put normalises data through the partition decoder for kind and stores it at
// the current snapshot version.
func (s *ProfileService) Put(ctx context.Context, key string, kind model.SnapshotKind, data json.RawMessage) (*model.ProfileSnapshot, error) {
	var (
		norm any
		err  error
	)
	switch kind {
	case model.KindPlanner:
		norm, err = profile.DecodePlanner(data)
	case model.KindFavorites:
		norm, err = profile.DecodeFavorites(data)
	default:
		return nil, fmt.Errorf("%w: unknown snapshot kind %q", model.ErrValidation, kind)
	}
	if err != nil {
		return nil, err
	}
	return s.put(ctx, key, kind, norm)
}

func (s *ProfileService) Delete(ctx context.Context, key string, kind model.SnapshotKind) error {
	return s.store.Profiles().DeleteSnapshot(ctx, key, kind)
}

// MergeGuest folds the guest's snapshots into the user's and deletes the
// guest's. A guest with no snapshots is a no-op, so repeating a merge is safe.
func (s *ProfileService) MergeGuest(ctx context.Context, userID, guestID string) (*MergeResult, error) {
	if userID == "" || guestID == "" || userID == guestID {
		return nil, fmt.Errorf("%w: distinct userId and guestId are required", model.ErrValidation)
	}

	guestFav, hasFav, err := s.favorites(ctx, guestID)
	if err != nil {
		return nil, err
	}
	guestPlan, hasPlan, err := s.planner(ctx, guestID)
	if err != nil {
		return nil, err
	}
	if !hasFav && !hasPlan {
		metrics.GuestMerges.WithLabelValues("noop").Inc()
		return &MergeResult{}, nil
	}

	res := &MergeResult{Merged: true}
	if hasFav {
		userFav, _, err := s.favorites(ctx, userID)
		if err != nil {
			return nil, err
		}
		if _, err := s.put(ctx, userID, model.KindFavorites, profile.MergeFavorites(userFav, guestFav)); err != nil {
			return nil, err
		}
	}
	if hasPlan {
		userPlan, _, err := s.planner(ctx, userID)
		if err != nil {
			return nil, err
		}
		res.PlannerAdopted = profile.IsEmptyPlanner(userPlan)
		if _, err := s.put(ctx, userID, model.KindPlanner, profile.MergePlanner(userPlan, guestPlan)); err != nil {
			return nil, err
		}
	}

	for _, kind := range []model.SnapshotKind{model.KindFavorites, model.KindPlanner} {
		if err := s.store.Profiles().DeleteSnapshot(ctx, guestID, kind); err != nil {
			return nil, fmt.Errorf("delete guest %s snapshot: %w", kind, err)
		}
	}

	metrics.GuestMerges.WithLabelValues("merged").Inc()
	s.log.Info().
		Str("user_id", userID).
		Str("guest_id", guestID).
		Bool("planner_adopted", res.PlannerAdopted).
		Msg("guest snapshots merged")
	return res, nil
}

func (s *ProfileService) favorites(ctx context.Context, key string) (model.Favorites, bool, error) {
	snap, err := s.store.Profiles().GetSnapshot(ctx, key, model.KindFavorites)
	if errors.Is(err, model.ErrNotFound) {
		return model.NewFavorites(), false, nil
	}
	if err != nil {
		return model.Favorites{}, false, err
	}
	f, err := profile.DecodeFavorites(snap.Data)
	return f, err == nil, err
}

func (s *ProfileService) planner(ctx context.Context, key string) (model.RoutePlannerState, bool, error) {
	snap, err := s.store.Profiles().GetSnapshot(ctx, key, model.KindPlanner)
	if errors.Is(err, model.ErrNotFound) {
		return model.NewRoutePlannerState(), false, nil
	}
	if err != nil {
		return model.RoutePlannerState{}, false, err
	}
	p, err := profile.DecodePlanner(snap.Data)
	return p, err == nil, err
}

func (s *ProfileService) put(ctx context.Context, key string, kind model.SnapshotKind, v any) (*model.ProfileSnapshot, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return s.store.Profiles().PutSnapshot(ctx, &model.ProfileSnapshot{
		ProfileKey: key,
		Kind:       kind,
		Version:    profile.SnapshotVersion,
		Data:       b,
	})
}
