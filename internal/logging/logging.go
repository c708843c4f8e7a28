// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging owns the onboard logger.
//
// The TUI owns the terminal, so log output goes to a rotated file under
// ~/.onboard/logs rather than stderr. Session events use upper-case event
// names (SESSION_CREATED, SESSION_WARNING, ...) so they can be grepped out
// of the file as an audit trail.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the logger.
type Options struct {
	// Level is a logrus level name: debug, info, warn, error.
	Level string

	// Format is "text" or "json".
	Format string

	// File is the log file path. Empty writes to Output instead.
	File string

	// MaxSizeMB, MaxBackups and MaxAgeDays control rotation of File.
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int

	// Output is used when File is empty. Defaults to stderr.
	Output io.Writer
}

var (
	mu     sync.Mutex
	logger = logrus.New()
	closer io.Closer
)

// Init configures the package logger. Calling Init again replaces the
// previous configuration and closes the previous log file.
func Init(opts Options) (*logrus.Logger, error) {
	mu.Lock()
	defer mu.Unlock()

	l := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if strings.EqualFold(opts.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			DisableColors: opts.File != "",
		})
	}

	var out io.Writer = os.Stderr
	var newCloser io.Closer
	switch {
	case opts.File != "":
		if err := os.MkdirAll(filepath.Dir(opts.File), 0700); err != nil {
			return nil, err
		}
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		}
		out = rotator
		newCloser = rotator
	case opts.Output != nil:
		out = opts.Output
	}
	l.SetOutput(out)

	if closer != nil {
		closer.Close()
	}
	closer = newCloser
	logger = l
	return l, nil
}

// L returns the package logger.
func L() *logrus.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// Discard returns a logger that drops everything. Used by tests and by
// components constructed without a logger.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Close flushes and closes the rotated log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	return err
}
