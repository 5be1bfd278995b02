package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const appName = "algotimer"

// Options configure the application logger.
type Options struct {
	// Dir receives algotimer-<date>.log. The terminal belongs to the TUI, so
	// file output is the only sink.
	Dir    string
	Level  string
	Format string
	Now    time.Time
}

// New creates the process logger. The returned close func releases the file sink.
func New(opts Options) (*logrus.Logger, func() error, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(strings.TrimSpace(opts.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if opts.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}

	if opts.Dir == "" {
		logger.SetOutput(io.Discard)
		return logger, func() error { return nil }, nil
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	path := filepath.Join(opts.Dir, fmt.Sprintf("%s-%s.log", appName, now.Format("2006-01-02")))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger.SetOutput(file)
	return logger, file.Close, nil
}

// Component returns an entry tagged with the component name.
func Component(logger *logrus.Logger, name string) *logrus.Entry {
	return logger.WithField("component", name)
}

// Discard is a logger that drops everything; handy for tests and CLI paths.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
