package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/ManuelReschke/ScrapMarket/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		log.Error().Err(err).Msg("scrapmarket failed")
		os.Exit(1)
	}
}
