package utils

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"

	"agenda/pkg/config"
)

var logFile io.WriteCloser

// InitLogger configures the global logger. The terminal belongs to the UI, so
// logs only go to a rotated file and only in verbose mode.
func InitLogger(cfg *config.Config) error {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	if !cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.Disabled)
		log.Logger = zerolog.Nop()
		return nil
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return errors.Wrap(err, "create log directory")
	}
	logFile = &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	}

	log.Logger = zerolog.New(logFile).With().Timestamp().Logger()
	log.Info().Str("file", cfg.LogFile).Msg("verbose logging enabled")
	return nil
}

// CloseLogger closes the log file if it's open
func CloseLogger() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}
