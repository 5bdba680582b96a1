// Package logging provides the component logger of the decode, verify and
// sim commands. Defaults come from SIM86_* environment variables; Options
// set by the command line take precedence.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"sim86/internal/decoder"
)

// LoggerCloser wraps a logger and closes its file, if it owns one.
type LoggerCloser struct {
	*log.Logger
	closer io.Closer
}

// Close closes the underlying writer if it's closeable
func (lc *LoggerCloser) Close() error {
	if lc.closer != nil {
		return lc.closer.Close()
	}
	return nil
}

// Options configures New. The zero value logs at SIM86_LOG_LEVEL to stderr.
type Options struct {
	// Debug forces the debug level regardless of SIM86_LOG_LEVEL.
	Debug bool
	// Prefix replaces SIM86_LOG_PREFIX.
	Prefix string
	// Writer replaces stderr and SIM86_LOG_TO_FILE.
	Writer io.Writer
}

// ParseLevel maps a SIM86_LOG_LEVEL value to a level, defaulting to info.
func ParseLevel(s string) log.Level {
	switch s {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func (o Options) level() log.Level {
	if o.Debug {
		return log.DebugLevel
	}
	return ParseLevel(os.Getenv("SIM86_LOG_LEVEL"))
}

func (o Options) prefix() string {
	if o.Prefix != "" {
		return o.Prefix
	}
	if p := os.Getenv("SIM86_LOG_PREFIX"); p != "" {
		return p
	}
	return "sim86 "
}

// output picks the destination. A file opened for SIM86_LOG_TO_FILE=1 is
// returned as the closer; stderr is never closed.
func (o Options) output() (io.Writer, io.Closer) {
	if o.Writer != nil {
		return o.Writer, nil
	}
	if os.Getenv("SIM86_LOG_TO_FILE") == "1" {
		name := fmt.Sprintf("sim86-%s-debug.log", time.Now().Format("20060102-150405"))
		f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err == nil {
			return f, f
		}
		// fall back to stderr
	}
	return os.Stderr, nil
}

// New creates a component logger.
func New(opts Options) *LoggerCloser {
	w, closer := opts.output()
	lg := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Level:           opts.level(),
		Prefix:          opts.prefix(),
	})
	return &LoggerCloser{Logger: lg, closer: closer}
}

// Instruction records one decoded instruction at debug level.
func (lc *LoggerCloser) Instruction(addr uint32, raw []byte, text string) {
	lc.Debug("decoded", "addr", fmt.Sprintf("%04x", addr), "bytes", fmt.Sprintf("% x", raw), "text", text)
}

// DecodeAborted records the error that stopped decoding. A *DecodeError
// is logged with its offset and offending byte.
func (lc *LoggerCloser) DecodeAborted(err error) {
	var de *decoder.DecodeError
	if errors.As(err, &de) {
		lc.Error("decode aborted",
			"offset", fmt.Sprintf("%04x", de.Offset),
			"byte", fmt.Sprintf("0x%02x", de.Byte),
			"error", de.Err)
		return
	}
	lc.Error("decode aborted", "error", err)
}
