// Package logging holds the process-wide logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the shared logger. It writes text to stderr until Init is
// called with a file configured.
var Logger = logrus.New()

// Options configures Init.
type Options struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	JSON       bool
}

// Init configures Logger. When opts.File is set, output goes to a
// lumberjack rotating file; the returned closer flushes and closes it.
func Init(opts Options) (io.Closer, error) {
	level := logrus.InfoLevel
	if opts.Level != "" {
		parsed, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("logging: %w", err)
		}
		level = parsed
	}
	Logger.SetLevel(level)

	if opts.JSON {
		Logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if opts.File == "" {
		Logger.SetOutput(os.Stderr)
		return nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return nil, fmt.Errorf("logging: create log dir: %w", err)
	}
	rotator := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	}
	Logger.SetOutput(rotator)
	Logger.WithField("file", opts.File).Info("logger initialized")
	return rotator, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Discard silences Logger, for tests.
func Discard() {
	Logger.SetOutput(io.Discard)
}
