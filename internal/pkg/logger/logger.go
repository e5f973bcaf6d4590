package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"adminconsole/internal/platform/config"
)

func parseLevel(name string) zerolog.Level {
	switch name {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Init configures the global zerolog logger and returns it.
func Init(cfg config.LoggingConfig) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	var out io.Writer = os.Stdout
	if cfg.Output == "stderr" {
		out = os.Stderr
	}
	if cfg.Output == "file" && cfg.FilePath != "" {
		file, err := openLogFile(cfg.FilePath)
		if err != nil {
			log.Error().Err(err).Str("path", cfg.FilePath).Msg("failed to open log file, using stdout")
		} else {
			out = file
		}
	}

	if cfg.Format == "text" && (out == io.Writer(os.Stdout) || out == io.Writer(os.Stderr)) {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
	}
	return log.Logger
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0664)
}

// Component returns a child of the global logger tagged with the component name.
func Component(name string) zerolog.Logger {
	return log.Logger.With().Str("component", name).Logger()
}
