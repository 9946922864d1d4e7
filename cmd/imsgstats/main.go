package main

import (
	"os"

	"github.com/rs/zerolog/log"
)

func main() {
	if err := Execute(); err != nil {
		log.Error().Err(err).Msg("imsgstats failed")
		os.Exit(1)
	}
}
