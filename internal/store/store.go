package store

import (
	"context"

	"github.com/starstrip/starstrip-planner/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (sqlite, postgres).
type Store interface {
	Profiles() Profiles
	Trips() Trips
	Close() error
}

// Profiles is the snapshot sink keyed by (profileKey, kind).
type Profiles interface {
	// PutSnapshot upserts and returns the stored row with UpdatedAt set.
	PutSnapshot(ctx context.Context, s *model.ProfileSnapshot) (*model.ProfileSnapshot, error)
	// GetSnapshot returns model.ErrNotFound when no row exists.
	GetSnapshot(ctx context.Context, profileKey string, kind model.SnapshotKind) (*model.ProfileSnapshot, error)
	// DeleteSnapshot is a no-op for a missing row.
	DeleteSnapshot(ctx context.Context, profileKey string, kind model.SnapshotKind) error
}

// Trips is the append-only ESG ledger.
type Trips interface {
	// Append returns model.ErrConflict when the trip ID is already stored.
	Append(ctx context.Context, t *model.TripRecord) (*model.TripRecord, error)
	// List returns an owner's trips oldest first.
	List(ctx context.Context, ownerKey string) ([]*model.TripRecord, error)
}
