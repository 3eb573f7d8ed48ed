// Package observe carries the structured-logging hooks used by the adapters
// and the composition root. The library stays silent by default: the package
// logger is a no-op until a host application (or the CLI's --verbose flag)
// installs a real zerolog.Logger.
package observe

import (
	"io"
	"sync/atomic"

	"github.com/rs/zerolog"
)

var current atomic.Pointer[zerolog.Logger]

func init() {
	nop := zerolog.Nop()
	current.Store(&nop)
}

// SetLogger installs the logger used for all configuration events.
func SetLogger(logger zerolog.Logger) {
	current.Store(&logger)
}

// NewConsoleLogger builds a human-readable logger writing to w, suitable for
// the CLI's verbose mode.
func NewConsoleLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
}

// Layer starts a debug event tagged with the layer name and source path that
// every configuration lifecycle message carries. An empty path is logged
// explicitly so downstream processors always see the field.
func Layer(layer, path string) *zerolog.Event {
	event := current.Load().Debug().Str("layer", layer)
	if path == "" {
		return event.Str("path", "")
	}
	return event.Str("path", path)
}

// Info starts an info-level event for merge-lifecycle milestones.
func Info() *zerolog.Event {
	return current.Load().Info()
}

// Error starts an error-level event for source-level failures.
func Error() *zerolog.Event {
	return current.Load().Error()
}
