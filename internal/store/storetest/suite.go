package storetest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/starstrip/starstrip-planner/internal/model"
	"github.com/starstrip/starstrip-planner/internal/store"
)

// Run exercises a compliance suite against a store.Store implementation.
// Implementations should provide a clean, isolated store and return it from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	// Unique keys so a shared database can be reused between runs
	userKey := "user_" + uuid.NewString()[:8]
	otherKey := "guest_" + uuid.NewString()[:8]

	// Profiles: missing
	if _, err := s.Profiles().GetSnapshot(ctx, userKey, model.KindPlanner); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetSnapshot missing: want ErrNotFound, got %v", err)
	}

	// Profiles: put + get
	data := json.RawMessage(`{"currentStep":1,"startLocation":"Beijing","itinerary":[]}`)
	put, err := s.Profiles().PutSnapshot(ctx, &model.ProfileSnapshot{ProfileKey: userKey, Kind: model.KindPlanner, Version: 2, Data: data})
	if err != nil {
		t.Fatalf("PutSnapshot: %v", err)
	}
	if put.UpdatedAt.IsZero() {
		t.Fatalf("PutSnapshot: UpdatedAt not set")
	}
	got, err := s.Profiles().GetSnapshot(ctx, userKey, model.KindPlanner)
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}
	if got.Version != 2 || !sameJSON(t, got.Data, data) {
		t.Fatalf("GetSnapshot: got version=%d data=%s", got.Version, got.Data)
	}

	// Profiles: upsert replaces
	data2 := json.RawMessage(`{"currentStep":3,"startLocation":"Xi'an","itinerary":[]}`)
	if _, err := s.Profiles().PutSnapshot(ctx, &model.ProfileSnapshot{ProfileKey: userKey, Kind: model.KindPlanner, Version: 2, Data: data2}); err != nil {
		t.Fatalf("PutSnapshot upsert: %v", err)
	}
	got, err = s.Profiles().GetSnapshot(ctx, userKey, model.KindPlanner)
	if err != nil || !sameJSON(t, got.Data, data2) {
		t.Fatalf("GetSnapshot after upsert: got=%v err=%v", got, err)
	}

	// Profiles: kinds are independent
	if _, err := s.Profiles().GetSnapshot(ctx, userKey, model.KindFavorites); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetSnapshot other kind: want ErrNotFound, got %v", err)
	}

	// Profiles: delete, twice
	if err := s.Profiles().DeleteSnapshot(ctx, userKey, model.KindPlanner); err != nil {
		t.Fatalf("DeleteSnapshot: %v", err)
	}
	if err := s.Profiles().DeleteSnapshot(ctx, userKey, model.KindPlanner); err != nil {
		t.Fatalf("DeleteSnapshot missing: %v", err)
	}
	if _, err := s.Profiles().GetSnapshot(ctx, userKey, model.KindPlanner); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetSnapshot after delete: want ErrNotFound, got %v", err)
	}

	// Trips
	if lst, err := s.Trips().List(ctx, userKey); err != nil || len(lst) != 0 {
		t.Fatalf("List empty: n=%d err=%v", len(lst), err)
	}
	base := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	first := &model.TripRecord{
		ID: uuid.NewString(), OwnerKey: userKey, Name: "Golden week", StartDate: "2025-05-01", EndDate: "2025-05-05",
		CarbonFootprint: 420.5,
		Breakdown:       model.CarbonBreakdown{Flights: 255, Trains: 49.2, Accommodation: 100, Activities: 16.3},
		CreatedAt:       base,
	}
	if _, err := s.Trips().Append(ctx, first); err != nil {
		t.Fatalf("Append first: %v", err)
	}
	second := &model.TripRecord{
		ID: uuid.NewString(), OwnerKey: userKey, Name: "Autumn", StartDate: "2024-10-01", EndDate: "2024-10-03",
		CarbonFootprint: 80, CreatedAt: base.Add(time.Hour),
	}
	if _, err := s.Trips().Append(ctx, second); err != nil {
		t.Fatalf("Append second: %v", err)
	}
	if _, err := s.Trips().Append(ctx, &model.TripRecord{
		ID: uuid.NewString(), OwnerKey: otherKey, Name: "Other", StartDate: "2025-01-01", EndDate: "2025-01-01",
	}); err != nil {
		t.Fatalf("Append other: %v", err)
	}
	if _, err := s.Trips().Append(ctx, first); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("Append duplicate id: want ErrConflict, got %v", err)
	}

	lst, err := s.Trips().List(ctx, userKey)
	if err != nil || len(lst) != 2 {
		t.Fatalf("List: n=%d err=%v", len(lst), err)
	}
	if lst[0].ID != first.ID || lst[1].ID != second.ID {
		t.Fatalf("List order: got %s, %s", lst[0].Name, lst[1].Name)
	}
	if lst[0].StartDate != "2025-05-01" || lst[0].Breakdown != first.Breakdown || lst[0].CarbonFootprint != 420.5 {
		t.Fatalf("List roundtrip: %+v", lst[0])
	}
	if !lst[0].CreatedAt.Equal(base) {
		t.Fatalf("List createdAt: got %v want %v", lst[0].CreatedAt, base)
	}
}

func sameJSON(t *testing.T, a, b []byte) bool {
	t.Helper()
	var x, y any
	if err := json.Unmarshal(a, &x); err != nil {
		t.Fatalf("decode %s: %v", a, err)
	}
	if err := json.Unmarshal(b, &y); err != nil {
		t.Fatalf("decode %s: %v", b, err)
	}
	xb, _ := json.Marshal(x)
	yb, _ := json.Marshal(y)
	return string(xb) == string(yb)
}
