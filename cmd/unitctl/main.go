// Command unitctl inspects and cleans the unit entries of a badger or sqlite
// store.
//
//	unitctl --backend sqlite --path units.db keys
//	unitctl --backend badger --path ./data get counter
//	unitctl --path units.db rm counter
//	unitctl --path units.db clear
package main

import (
	"os"

	"github.com/rs/zerolog"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if err := newRootCommand(log).Execute(); err != nil {
		log.Error().Err(err).Msg("unitctl failed")
		os.Exit(1)
	}
}
