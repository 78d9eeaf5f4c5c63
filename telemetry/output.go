package telemetry

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// OutputManager writes Snapshot rows to a CSV file, writing the header only
// on the first call. A nil *OutputManager makes every method a no-op, so
// output is opt-in.
type OutputManager struct {
	dir            string
	file           *os.File
	headerWritten  bool
}

// NewOutputManager creates dir if needed and opens scenario.csv inside it.
// Returns nil, nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating telemetry output directory: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, "scenario.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating scenario.csv: %w", err)
	}
	return &OutputManager{dir: dir, file: f}, nil
}

// WriteSnapshot appends one row, writing a header only on the first call.
func (om *OutputManager) WriteSnapshot(s Snapshot) error {
	if om == nil {
		return nil
	}
	rows := []Snapshot{s}
	if !om.headerWritten {
		om.headerWritten = true
		return gocsv.Marshal(rows, om.file)
	}
	return gocsv.MarshalWithoutHeaders(rows, om.file)
}

// Close closes the underlying file, a no-op on a nil *OutputManager.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	return om.file.Close()
}

// Logger is the console-facing half of a two-tier logging split: slog
// carries structured per-event records (stamp placement failures,
// explosions), Logger carries human-readable per-tick/per-scenario
// summaries to an injected io.Writer.
type Logger struct {
	w      io.Writer
	slog   *slog.Logger
}

// NewLogger wraps w and logger; either may be nil (discarding that tier).
func NewLogger(w io.Writer, logger *slog.Logger) *Logger {
	return &Logger{w: w, slog: logger}
}

// Logf writes a formatted line to the console tier, a no-op if w is nil.
func (l *Logger) Logf(format string, args ...any) {
	if l == nil || l.w == nil {
		return
	}
	fmt.Fprintf(l.w, format+"\n", args...)
}

// Event logs a structured record through the slog tier, a no-op if no
// logger was injected.
func (l *Logger) Event(msg string, args ...any) {
	if l == nil || l.slog == nil {
		return
	}
	l.slog.Info(msg, args...)
}
