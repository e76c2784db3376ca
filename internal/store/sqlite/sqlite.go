// Package sqlite is the single-file store driver used by the local build target.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/starstrip/starstrip-planner/internal/model"
	"github.com/starstrip/starstrip-planner/internal/store"
)

// Open opens (or creates) a SQLite database at path with WAL journaling.
func Open(path string) (*sql.DB, error) {
	// ensure parent directory exists to avoid SQLITE_CANTOPEN errors
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the store tables if they do not exist.
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ProfileSnapshots (
            ProfileKey TEXT NOT NULL,
            Kind TEXT NOT NULL,
            Version INTEGER NOT NULL,
            Data TEXT NOT NULL,
            UpdatedAt TIMESTAMP NOT NULL,
            PRIMARY KEY(ProfileKey, Kind)
        );`,
		`CREATE TABLE IF NOT EXISTS Trips (
            TripId TEXT PRIMARY KEY,
            OwnerKey TEXT NOT NULL,
            Name TEXT NOT NULL,
            StartDate TEXT NOT NULL,
            EndDate TEXT NOT NULL,
            CarbonFootprint REAL NOT NULL,
            Flights REAL NOT NULL DEFAULT 0,
            Trains REAL NOT NULL DEFAULT 0,
            Accommodation REAL NOT NULL DEFAULT 0,
            Activities REAL NOT NULL DEFAULT 0,
            CreatedAt TIMESTAMP NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS TripsByOwner ON Trips(OwnerKey, CreatedAt);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("sqlite schema: %w", err)
		}
	}
	return nil
}

// New opens the file at path, applies the schema and returns a store.
func New(path string) (store.Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewWithDB(db), nil
}

// NewWithDB wraps an open database that already has the schema.
func NewWithDB(db *sql.DB) store.Store { return &sqliteStore{db: db} }

type sqliteStore struct{ db *sql.DB }

func (s *sqliteStore) Profiles() store.Profiles { return &profiles{db: s.db} }
func (s *sqliteStore) Trips() store.Trips       { return &trips{db: s.db} }
func (s *sqliteStore) Close() error             { return s.db.Close() }

// HealthPing implements health.HealthPinger.
func (s *sqliteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// --- Profiles ---
type profiles struct{ db *sql.DB }

func (p *profiles) PutSnapshot(ctx context.Context, snap *model.ProfileSnapshot) (*model.ProfileSnapshot, error) {
	now := time.Now().UTC()
	_, err := p.db.ExecContext(ctx, `
        INSERT INTO ProfileSnapshots (ProfileKey, Kind, Version, Data, UpdatedAt)
        VALUES (?,?,?,?,?)
        ON CONFLICT(ProfileKey, Kind) DO UPDATE SET
            Version=excluded.Version, Data=excluded.Data, UpdatedAt=excluded.UpdatedAt
    `, snap.ProfileKey, string(snap.Kind), snap.Version, string(snap.Data), now)
	if err != nil {
		return nil, err
	}
	out := *snap
	out.UpdatedAt = now
	return &out, nil
}

func (p *profiles) GetSnapshot(ctx context.Context, profileKey string, kind model.SnapshotKind) (*model.ProfileSnapshot, error) {
	out := model.ProfileSnapshot{ProfileKey: profileKey, Kind: kind}
	var data string
	row := p.db.QueryRowContext(ctx, `
        SELECT Version, Data, UpdatedAt FROM ProfileSnapshots WHERE ProfileKey=? AND Kind=?
    `, profileKey, string(kind))
	if err := row.Scan(&out.Version, &data, &out.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: snapshot %s/%s", model.ErrNotFound, profileKey, kind)
		}
		return nil, err
	}
	out.Data = []byte(data)
	return &out, nil
}

func (p *profiles) DeleteSnapshot(ctx context.Context, profileKey string, kind model.SnapshotKind) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM ProfileSnapshots WHERE ProfileKey=? AND Kind=?`, profileKey, string(kind))
	return err
}

// --- Trips ---
type trips struct{ db *sql.DB }

func (t *trips) Append(ctx context.Context, rec *model.TripRecord) (*model.TripRecord, error) {
	out := *rec
	if out.CreatedAt.IsZero() {
		out.CreatedAt = time.Now().UTC()
	}
	b := out.Breakdown
	_, err := t.db.ExecContext(ctx, `
        INSERT INTO Trips (TripId, OwnerKey, Name, StartDate, EndDate, CarbonFootprint,
            Flights, Trains, Accommodation, Activities, CreatedAt)
        VALUES (?,?,?,?,?,?,?,?,?,?,?)
    `, out.ID, out.OwnerKey, out.Name, out.StartDate, out.EndDate, out.CarbonFootprint,
		b.Flights, b.Trains, b.Accommodation, b.Activities, out.CreatedAt)
	var se *sqlite.Error
	if errors.As(err, &se) && (se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE) {
		return nil, fmt.Errorf("%w: trip %s already recorded", model.ErrConflict, out.ID)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (t *trips) List(ctx context.Context, ownerKey string) ([]*model.TripRecord, error) {
	rows, err := t.db.QueryContext(ctx, `
        SELECT TripId, OwnerKey, Name, StartDate, EndDate, CarbonFootprint,
            Flights, Trains, Accommodation, Activities, CreatedAt
        FROM Trips WHERE OwnerKey=? ORDER BY CreatedAt, TripId
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
