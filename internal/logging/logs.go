package logging

import (
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

var current atomic.Pointer[zerolog.Logger]

func init() {
	l := zerolog.New(os.Stderr).Level(zerolog.InfoLevel)
	current.Store(&l)
}

func apply(cfg Config) {
	SetOutput(os.Stderr, cfg)
}

// SetOutput rebuilds the shared logger writing to w.
func SetOutput(w io.Writer, cfg Config) {
	out := w
	if !cfg.Bypass {
		console := zerolog.ConsoleWriter{Out: w, NoColor: cfg.NoColor, TimeFormat: time.RFC3339}
		if !cfg.Timestamp {
			console.PartsExclude = []string{zerolog.TimestampFieldName}
		}
		out = console
	}
	ctx := zerolog.New(out).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	if cfg.Level < zerolog.GlobalLevel() {
		zerolog.SetGlobalLevel(cfg.Level)
	}
	l := ctx.Logger().Level(cfg.Level)
	current.Store(&l)
}

// Logger returns the shared logger.
func Logger() *zerolog.Logger {
	return current.Load()
}

func Tracef(format string, args ...any) { Logger().Trace().Msgf(format, args...) }
func Debugf(format string, args ...any) { Logger().Debug().Msgf(format, args...) }
func Infof(format string, args ...any)  { Logger().Info().Msgf(format, args...) }
func Warnf(format string, args ...any)  { Logger().Warn().Msgf(format, args...) }
func Errf(format string, args ...any)   { Logger().Error().Msgf(format, args...) }

// Logf writes regardless of the configured level.
func Logf(format string, args ...any) { Logger().Log().Msgf(format, args...) }

// Swap installs l as the shared logger and returns the previous one.
func Swap(l *zerolog.Logger) *zerolog.Logger {
	return current.Swap(l)
}
