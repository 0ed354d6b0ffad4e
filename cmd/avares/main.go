package main

import (
	"context"
	"os"
	"time"

	"github.com/beam-cloud/avares/pkg/commands"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := commands.RootCmd.ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("avares failed")
		os.Exit(1)
	}
}
