// Package gtlog is the process-wide logger for gotensor's core packages.
package gtlog

import (
	"os"

	"github.com/rs/zerolog"
	logger "github.com/rs/zerolog/log"
)

// Log is the shared logger used by the arena, autograd engine and
// optimizers to report allocation, backward-pass and step events.
var Log = logger.With().Caller().Logger().Output(zerolog.ConsoleWriter{Out: os.Stderr})

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}
