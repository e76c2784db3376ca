package localstate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starstrip/starstrip-planner/internal/model"
	"github.com/starstrip/starstrip-planner/internal/store/sqlite"
)

// EnsureSchema creates the documents table if it does not exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS Documents (
            Name TEXT PRIMARY KEY,
            Body TEXT NOT NULL,
            UpdatedAt TIMESTAMP NOT NULL
        );`)
	return err
}

// Documents is a named blob table. Each persisted session store (auth,
// planner, favorites) is one document.
type Documents struct {
	db *sql.DB
}

// OpenDocuments opens the sqlite file at path and applies the schema.
func OpenDocuments(path string) (*Documents, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, err
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("documents schema: %w", err)
	}
	return &Documents{db: db}, nil
}

// Load returns the body of name, or model.ErrNotFound.
func (d *Documents) Load(ctx context.Context, name string) ([]byte, error) {
	var body string
	err := d.db.QueryRowContext(ctx, `SELECT Body FROM Documents WHERE Name=?`, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: document %s", model.ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return []byte(body), nil
}

// Save upserts name. It implements persist.Sink.
func (d *Documents) Save(ctx context.Context, name string, body []byte) error {
	_, err := d.db.ExecContext(ctx, `
        INSERT INTO Documents (Name, Body, UpdatedAt) VALUES (?,?,?)
        ON CONFLICT(Name) DO UPDATE SET Body=excluded.Body, UpdatedAt=excluded.UpdatedAt
    `, name, string(body), time.Now().UTC())
	return err
}

func (d *Documents) Close() error { return d.db.Close() }
