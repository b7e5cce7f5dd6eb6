// Package logger builds the zerolog logger shared by every component.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds a logger from the given config: a console writer on stderr and,
// when LogFile is set, a JSON writer behind lumberjack rotation.
func New(cfg LogConfig) (zerolog.Logger, error) {
	writers := make([]io.Writer, 0, 2)

	if cfg.Format == "json" {
		writers = append(writers, os.Stderr)
	} else {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
			NoColor:    cfg.NoColor,
		})
	}

	if cfg.LogFile != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.MaxLogSizeMB,
			MaxBackups: cfg.MaxLogBackups,
		})
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(LevelForVerbosity(cfg.Verbosity)).
		With().Timestamp().Logger()

	return logger, nil
}

// LevelForVerbosity maps the -v flag onto a zerolog level.
func LevelForVerbosity(v int) zerolog.Level {
	switch {
	case v <= 0:
		return zerolog.ErrorLevel
	case v == 1:
		return zerolog.WarnLevel
	case v == 2:
		return zerolog.InfoLevel
	default:
		return zerolog.DebugLevel
	}
}
