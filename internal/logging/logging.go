package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	serviceName          = "budgetcoach"
	defaultRetentionDays = 7
	dateLayout           = "20060102"
)

const (
	envLogLevel  = "BUDGET_COACH_LOG_LEVEL"
	envLogFormat = "BUDGET_COACH_LOG_FORMAT"
)

// DailyWriter appends to one file per day and prunes files older than the
// retention window.
type DailyWriter struct {
	dir           string
	prefix        string
	retentionDays int

	mu          sync.Mutex
	currentDate string
	file        *os.File
}

// NewDailyWriter creates a rotating writer in dir using prefix for file names.
func NewDailyWriter(dir, prefix string, retentionDays int) (*DailyWriter, error) {
	if retentionDays <= 0 {
		retentionDays = defaultRetentionDays
	}
	if prefix == "" {
		prefix = serviceName
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	w := &DailyWriter{dir: dir, prefix: prefix, retentionDays: retentionDays}
	if err := w.rotate(time.Now()); err != nil {
		return nil, err
	}
	return w, nil
}

// Write implements io.Writer.
func (w *DailyWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.rotate(time.Now()); err != nil {
		return 0, err
	}
	return w.file.Write(p)
}

// Close closes the current file.
func (w *DailyWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func (w *DailyWriter) pathFor(date string) string {
	return filepath.Join(w.dir, fmt.Sprintf("%s-%s.log", w.prefix, date))
}

func (w *DailyWriter) rotate(now time.Time) error {
	date := now.Format(dateLayout)
	if w.file != nil && date == w.currentDate {
		return nil
	}
	if w.file != nil {
		_ = w.file.Close()
	}
	file, err := os.OpenFile(w.pathFor(date), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	w.file = file
	w.currentDate = date
	w.prune(now)
	return nil
}

func (w *DailyWriter) prune(now time.Time) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return
	}
	cutoff := now.AddDate(0, 0, -w.retentionDays)
	prefix := w.prefix + "-"
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".log") {
			continue
		}
		date, err := time.Parse(dateLayout, strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".log"))
		if err != nil {
			continue
		}
		if date.Before(cutoff) {
			_ = os.Remove(filepath.Join(w.dir, name))
		}
	}
}

// NewLogger creates a slog.Logger writing to stdout and a daily file in
// logDir, and installs it as the default logger. The level and format can be
// overridden through the environment.
func NewLogger(logDir string, level slog.Level) (*slog.Logger, *DailyWriter, error) {
	writer, err := NewDailyWriter(logDir, serviceName, defaultRetentionDays)
	if err != nil {
		return nil, nil, err
	}
	handler := newHandler(io.MultiWriter(os.Stdout, writer), ParseLevel(os.Getenv(envLogLevel), level))
	logger := slog.New(handler).With("service", serviceName)
	slog.SetDefault(logger)
	return logger, writer, nil
}

// ParseLevel maps a level name or number to a slog.Level, returning fallback
// for empty or unknown input.
func ParseLevel(value string, fallback slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return fallback
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if i, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		return slog.Level(i)
	}
	return fallback
}

func newHandler(w io.Writer, level slog.Level) slog.Handler {
	options := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(strings.TrimSpace(os.Getenv(envLogFormat)), "json") {
		return slog.NewJSONHandler(w, options)
	}
	return slog.NewTextHandler(w, options)
}
