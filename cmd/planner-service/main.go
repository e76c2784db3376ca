package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/starstrip/starstrip-planner/internal/plannerservice"
)

func main() {
	if err := plannerservice.Run(); err != nil {
		log.Error().Err(err).Msg("planner service failed")
		os.Exit(1)
	}
}
