// Package log configures the process-wide slog logger used by the
// command layer and recovers panics into log records.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

var (
	initOnce    sync.Once
	initialized atomic.Bool
	logCloser   io.Closer
)

// Options controls Setup.
type Options struct {
	Debug bool
	// File, when set, receives the log instead of stderr.
	File string
	// Writer overrides both File and stderr.
	Writer io.Writer
}

// Setup installs the default slog handler. Only the first call has an effect.
func Setup(opts Options) error {
	var err error
	initOnce.Do(func() {
		level := slog.LevelInfo
		if opts.Debug {
			level = slog.LevelDebug
		}

		w := opts.Writer
		if w == nil && opts.File != "" {
			var f *os.File
			f, err = os.OpenFile(opts.File, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
			if err != nil {
				err = fmt.Errorf("open log file: %w", err)
				return
			}
			w, logCloser = f, f
		}
		if w == nil {
			w = os.Stderr
		}

		slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:     level,
			AddSource: opts.Debug,
		})))
		initialized.Store(true)
	})
	return err
}

// Close releases the log file opened by Setup, if any.
func Close() error {
	if logCloser == nil {
		return nil
	}
	err := logCloser.Close()
	logCloser = nil
	return err
}

func Initialized() bool {
	return initialized.Load()
}

// RecoverPanic must be deferred. It logs a panic with its stack and runs cleanup.
func RecoverPanic(name string, cleanup func()) {
	if r := recover(); r != nil {
		if Initialized() {
			slog.Error(fmt.Sprintf("Panic in %s", name),
				"panic", r,
				"stack", string(debug.Stack()))
		}
		if cleanup != nil {
			cleanup()
		}
	}
}
