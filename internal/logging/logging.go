// Package logging builds the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	slogmulti "github.com/samber/slog-multi"
)

// LogFileName is the file inside the output directory that receives a JSON copy of every record.
const LogFileName = "weather-voice.log"

// Options configures New.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // text or json
	Dir    string // when set, records are also appended to Dir/LogFileName
	Stderr io.Writer
}

// New returns a logger fanning out to stderr and, optionally, a log file.
// The returned close func releases the file handle.
func New(opts Options) (*slog.Logger, func() error, error) {
	level := parseLevel(opts.Level)
	handlerOpts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	w := opts.Stderr
	if w == nil {
		w = os.Stderr
	}
	handlers := []slog.Handler{newHandler(w, opts.Format, handlerOpts)}

	closeFn := func() error { return nil }
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o750); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory %s: %w", opts.Dir, err)
		}
		f, err := os.OpenFile(filepath.Join(opts.Dir, LogFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, handlerOpts))
		closeFn = f.Close
	}

	return slog.New(slogmulti.Fanout(handlers...)), closeFn, nil
}

func newHandler(w io.Writer, format string, opts *slog.HandlerOptions) slog.Handler {
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
