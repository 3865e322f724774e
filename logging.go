package giftid

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds a zerolog.Logger for the service. format selects the
// output encoding: "console" gives a human-readable, colorized writer
// for local development; anything else (including "") gives structured
// JSON to stdout, the right default for a process running under a log
// collector.
func NewLogger(format string, workshopID uint16) zerolog.Logger {
	var output = os.Stdout

	var base zerolog.Logger
	if format == "console" {
		writer := zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339Nano,
		}
		base = zerolog.New(writer).With().Timestamp().Logger()
	} else {
		base = zerolog.New(output).With().Timestamp().Logger()
	}

	return base.With().
		Str("service", "giftid").
		Uint16("workshop_id", workshopID).
		Logger()
}
