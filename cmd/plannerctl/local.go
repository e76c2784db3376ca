package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/starstrip/starstrip-planner/internal/catalog"
	"github.com/starstrip/starstrip-planner/internal/localstate"
	"github.com/starstrip/starstrip-planner/internal/persist"
	"github.com/starstrip/starstrip-planner/internal/route"
	"github.com/starstrip/starstrip-planner/internal/session"
)

// withSession loads the local session, runs fn and flushes pending writes.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session.Session) error) error {
	path, err := localstate.SessionDBPath()
	if err != nil {
		return err
	}
	docs, err := localstate.OpenDocuments(path)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer func() { _ = docs.Close() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()

	gen := route.NewGenerator(catalog.Default(), nil, route.WithLogger(log.Logger))
	s := session.New(gen, log.Logger)
	if err := s.Load(ctx, docs); err != nil {
		return err
	}

	w := persist.NewWriter(docs, persist.Config{}, log.Logger)
	s.Persist(w)
	err = fn(ctx, s)
	w.Close()
	return err
}
