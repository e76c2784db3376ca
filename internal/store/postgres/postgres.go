package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/starstrip/starstrip-planner/internal/model"
	"github.com/starstrip/starstrip-planner/internal/store"
)

// uniqueViolation is the SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS profile_snapshots (
        profile_key TEXT NOT NULL,
        kind TEXT NOT NULL,
        version INT NOT NULL,
        data JSONB NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
        PRIMARY KEY (profile_key, kind)
    )`,
	`CREATE TABLE IF NOT EXISTS trips (
        trip_id TEXT PRIMARY KEY,
        owner_key TEXT NOT NULL,
        name TEXT NOT NULL,
        start_date DATE NOT NULL,
        end_date DATE NOT NULL,
        carbon_footprint DOUBLE PRECISION NOT NULL,
        flights DOUBLE PRECISION NOT NULL DEFAULT 0,
        trains DOUBLE PRECISION NOT NULL DEFAULT 0,
        accommodation DOUBLE PRECISION NOT NULL DEFAULT 0,
        activities DOUBLE PRECISION NOT NULL DEFAULT 0,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE INDEX IF NOT EXISTS trips_owner_idx ON trips (owner_key, created_at)`,
}

// Migrate creates the tables if they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, s := range schema {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("postgres schema: %w", err)
		}
	}
	return nil
}

// NewWithDB constructs a native Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Profiles() store.Profiles { return &profiles{db: s.db} }
func (s *pgStore) Trips() store.Trips       { return &trips{db: s.db} }
func (s *pgStore) Close() error             { return s.db.Close() }

// HealthPing implements health.HealthPinger for Postgres-backed store.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Bootstrap connects with dsn and applies the schema.
func Bootstrap(ctx context.Context, dsn string) error {
	if dsn == "" {
		return nil // No DSN configured, skip bootstrap
	}

	db, err := Open(dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return Migrate(ctx, db)
}

// --- Profiles ---
type profiles struct{ db *sql.DB }

func (p *profiles) PutSnapshot(ctx context.Context, snap *model.ProfileSnapshot) (*model.ProfileSnapshot, error) {
	out := *snap
	row := p.db.QueryRowContext(ctx, `
        INSERT INTO profile_snapshots (profile_key, kind, version, data)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (profile_key, kind) DO UPDATE
            SET version=EXCLUDED.version, data=EXCLUDED.data, updated_at=now()
        RETURNING updated_at
    `, snap.ProfileKey, string(snap.Kind), snap.Version, string(snap.Data))
	if err := row.Scan(&out.UpdatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *profiles) GetSnapshot(ctx context.Context, profileKey string, kind model.SnapshotKind) (*model.ProfileSnapshot, error) {
	out := model.ProfileSnapshot{ProfileKey: profileKey, Kind: kind}
	var data []byte
	row := p.db.QueryRowContext(ctx, `
        SELECT version, data, updated_at FROM profile_snapshots WHERE profile_key=$1 AND kind=$2
    `, profileKey, string(kind))
	if err := row.Scan(&out.Version, &data, &out.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: snapshot %s/%s", model.ErrNotFound, profileKey, kind)
		}
		return nil, err
	}
	out.Data = data
	return &out, nil
}

func (p *profiles) DeleteSnapshot(ctx context.Context, profileKey string, kind model.SnapshotKind) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM profile_snapshots WHERE profile_key=$1 AND kind=$2`, profileKey, string(kind))
	return err
}

// --- Trips ---
type trips struct{ db *sql.DB }

func (t *trips) Append(ctx context.Context, rec *model.TripRecord) (*model.TripRecord, error) {
	out := *rec
	b := out.Breakdown
	var created sql.NullTime
	if !out.CreatedAt.IsZero() {
		created = sql.NullTime{Time: out.CreatedAt, Valid: true}
	}
	row := t.db.QueryRowContext(ctx, `
        INSERT INTO trips (trip_id, owner_key, name, start_date, end_date, carbon_footprint,
            flights, trains, accommodation, activities, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,COALESCE($11, now()))
        RETURNING created_at
    `, out.ID, out.OwnerKey, out.Name, out.StartDate, out.EndDate, out.CarbonFootprint,
		b.Flights, b.Trains, b.Accommodation, b.Activities, created)
	if err := row.Scan(&out.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: trip %s already recorded", model.ErrConflict, out.ID)
		}
		return nil, err
	}
	return &out, nil
}

func (t *trips) List(ctx context.Context, ownerKey string) ([]*model.TripRecord, error) {
	rows, err := t.db.QueryContext(ctx, `
        SELECT trip_id, owner_key, name, to_char(start_date, 'YYYY-MM-DD'), to_char(end_date, 'YYYY-MM-DD'),
            carbon_footprint, flights, trains, accommodation, activities, created_at
        FROM trips WHERE owner_key=$1 ORDER BY created_at, trip_id
    `, ownerKey)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.TripRecord
	for rows.Next() {
		var r model.TripRecord
		if err := rows.Scan(&r.ID, &r.OwnerKey, &r.Name, &r.StartDate, &r.EndDate, &r.CarbonFootprint,
			&r.Breakdown.Flights, &r.Breakdown.Trains, &r.Breakdown.Accommodation, &r.Breakdown.Activities,
			&r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}
