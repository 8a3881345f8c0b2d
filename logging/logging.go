package logging

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	logger zerolog.Logger
	once   sync.Once
)

// Get returns the process-wide logger. Diagnostics go to stderr so that
// stdout stays free for result reporting.
func Get() zerolog.Logger {
	once.Do(func() {
		logLevel := zerolog.DebugLevel
		if os.Getenv("NO_DEBUG") != "" {
			logLevel = zerolog.InfoLevel
		}

		console := zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}

		logger = zerolog.New(console).Level(logLevel).With().Timestamp().Caller().Logger()
	})

	return logger
}
