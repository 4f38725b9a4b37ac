// Package logger configures the process-wide zerolog logger shared by the
// huddle API server, the sync daemon and the seeder.
package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Log is the shared instance. Binaries call SetLevel once at startup with
// the configured server mode; packages log through rs/zerolog/log or this.
var Log zerolog.Logger

func init() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano

	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "2006-01-02 15:04:05",
	}

	Log = zerolog.New(output).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Caller().
		Logger()
}

// SetLevel maps the server mode to a log level: "debug" gets debug logging,
// "release" runs at info. Anything else is treated as an explicit zerolog
// level name.
func SetLevel(mode string) {
	var level zerolog.Level

	switch strings.ToLower(mode) {
	case "debug":
		level = zerolog.DebugLevel
	case "release":
		level = zerolog.InfoLevel
	default:
		parsed, err := zerolog.ParseLevel(strings.ToLower(mode))
		if err != nil {
			Log.Warn().Str("mode", mode).Msg("unknown log mode, defaulting to info")
			parsed = zerolog.InfoLevel
		}
		level = parsed
	}

	zerolog.SetGlobalLevel(level)
	Log = Log.Level(level)
}
