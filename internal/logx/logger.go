// Package logx configures the process-wide zerolog logger.
package logx

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/roach88/vitrine/internal/config"
)

var DefaultOptions = &Options{
	Environment: config.Development,
}

// Options selects the logger flavour.
type Options struct {
	Environment config.Environment

	// Verbose lowers the level to debug in production.
	Verbose bool

	// Out defaults to stderr.
	Out io.Writer
}

func safe(opts ...Options) *Options {
	if len(opts) == 0 {
		return DefaultOptions
	}
	return &opts[0]
}

// Init replaces the global logger.
func Init(opts ...Options) {
	log.Logger = New(*safe(opts...))
}

// New builds a logger without touching the global one. Production gets
// JSON at info level, everything else a console writer at debug level.
func New(o Options) zerolog.Logger {
	out := o.Out
	if out == nil {
		out = os.Stderr
	}
	if o.Environment.IsProduction() {
		level := zerolog.InfoLevel
		if o.Verbose {
			level = zerolog.DebugLevel
		}
		return zerolog.New(out).Level(level).With().Timestamp().Logger()
	}
	console := zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = out
	})
	return zerolog.New(console).Level(zerolog.DebugLevel).With().Timestamp().Caller().Logger()
}

// Logger returns the global logger.
func Logger() *zerolog.Logger {
	return &log.Logger
}

// OrNop returns l, or a disabled logger when l is nil.
func OrNop(l *zerolog.Logger) *zerolog.Logger {
	if l != nil {
		return l
	}
	nop := zerolog.Nop()
	return &nop
}

func Debug() *zerolog.Event {
	return log.Debug()
}

func Info() *zerolog.Event {
	return log.Info()
}

func Warn() *zerolog.Event {
	return log.Warn()
}

func Error() *zerolog.Event {
	return log.Error()
}

func Fatal() *zerolog.Event {
	return log.Fatal()
}
