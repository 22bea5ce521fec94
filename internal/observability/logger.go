package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger installs the process logger used by the gin middleware and the
// cmd entry points. Output is human readable unless json is set.
func InitLogger(app string, json bool) zerolog.Logger {
	var out io.Writer = os.Stdout
	if !json {
		out = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}
	logger := zerolog.New(out).With().Timestamp().Str("app", app).Logger()
	log.Logger = logger
	return logger
}
