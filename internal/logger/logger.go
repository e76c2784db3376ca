// Package logger builds zerolog loggers whose error events carry pkg/errors
// stack traces.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	zpkgerrors "github.com/rs/zerolog/pkgerrors"
)

var installOnce sync.Once

// install points zerolog's process-wide error hooks at pkg/errors.
func install() {
	installOnce.Do(func() {
		zerolog.ErrorStackMarshaler = func(err error) interface{} {
			return zpkgerrors.MarshalStack(withStack(err))
		}
		zerolog.ErrorMarshalFunc = func(err error) interface{} {
			return withStack(err)
		}
	})
}

// withStack keeps an existing stack and records the caller's otherwise.
func withStack(err error) error {
	if _, ok := err.(interface{ StackTrace() pkgerrors.StackTrace }); ok {
		return err
	}
	return pkgerrors.WithStack(err)
}

// New is the service logger: JSON on stdout tagged with service. Call .Stack()
// on an error event to render its trace.
func New(service string) zerolog.Logger {
	return NewWithWriter(service, os.Stdout)
}

func NewWithWriter(service string, w io.Writer) zerolog.Logger {
	install()
	return zerolog.New(w).With().Str("service", service).Timestamp().Logger()
}

// Console is the plain-text logger for command-line tools. Debug is hidden
// unless verbose is set.
func Console(w io.Writer, verbose bool) zerolog.Logger {
	install()
	lvl := zerolog.InfoLevel
	if verbose {
		lvl = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: "2006-01-02 15:04:05", NoColor: true}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// WithLevel applies a level name such as "debug" or "warn" to l. An empty name
// leaves l unchanged.
func WithLevel(l zerolog.Logger, name string) (zerolog.Logger, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return l, nil
	}
	lvl, err := zerolog.ParseLevel(name)
	if err != nil {
		return l, fmt.Errorf("log level %q: %w", name, err)
	}
	return l.Level(lvl), nil
}
