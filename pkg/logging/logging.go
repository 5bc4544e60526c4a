package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nkjain92/gpt-image-1/pkg/config"
)

// Setup configures the global zerolog logger.
// Uses console writer for human-readable logs unless LOG_FORMAT=json.
func Setup(cfg config.Log) {
	SetupWriter(cfg, os.Stdout)
}

// SetupWriter is Setup with an explicit destination.
func SetupWriter(cfg config.Log, out io.Writer) {
	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	w := out
	if cfg.Format != "json" {
		w = zerolog.NewConsoleWriter(func(cw *zerolog.ConsoleWriter) {
			cw.Out = out
			cw.TimeFormat = time.RFC3339
		})
	}

	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	// log.Ctx falls back to this when no request logger is attached.
	zerolog.DefaultContextLogger = &log.Logger
}
