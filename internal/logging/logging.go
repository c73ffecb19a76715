// Package logging builds the zerolog logger used by the ruleflow command.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Options struct {
	Level  string    // debug, info, warn, error; default info
	Format string    // json or console; default console
	Writer io.Writer // default os.Stderr
}

// New returns a logger writing to opt.Writer with a timestamp on each event.
func New(opt Options) (zerolog.Logger, error) {
	w := opt.Writer
	if w == nil {
		w = os.Stderr
	}
	level := zerolog.InfoLevel
	if opt.Level != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(opt.Level))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("log level %q: %w", opt.Level, err)
		}
		level = l
	}
	switch strings.ToLower(opt.Format) {
	case "", "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: !isTerminal(w)}
	case "json":
	default:
		return zerolog.Nop(), fmt.Errorf("log format %q: want json or console", opt.Format)
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
