// Package buildlog provides structured logging for the host-side
// tooling in this repo (cmd/gendispatch, cmd/launcher). Nothing under
// pkg/ ever imports this package: those packages are payload-resident
// and must assume no I/O is available at runtime.
package buildlog

import (
	"os"

	"github.com/rs/zerolog"
)

// Log is the process-wide logger, grounded on ongyuann-GoC2's
// internal/log package: stderr sink, Unix-epoch timestamps, level
// controlled by the GOSHELLFORGE_LOG environment variable.
var Log zerolog.Logger

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	Log = zerolog.New(os.Stderr).With().Timestamp().Logger()

	switch os.Getenv("GOSHELLFORGE_LOG") {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// WithBuildID returns a child logger tagging every event with a build
// correlation id, used by cmd/gendispatch to tie a generated table
// back to the manifest run that produced it.
func WithBuildID(buildID string) zerolog.Logger {
	return Log.With().Str("build_id", buildID).Logger()
}
