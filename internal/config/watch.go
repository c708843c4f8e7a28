// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultWatchDebounce collapses the burst of events editors produce on save.
const DefaultWatchDebounce = 250 * time.Millisecond

// Watch reloads the config file at path whenever it changes and passes
// each valid result to onChange. Invalid files are logged and skipped so
// the previous configuration stays in force. Watch blocks until ctx is
// done.
//
// The parent directory is watched rather than the file itself so that
// atomic rename-over saves are seen.
func Watch(ctx context.Context, path string, log *logrus.Logger, onChange func(*Config)) error {
	return watch(ctx, path, DefaultWatchDebounce, log, onChange)
}

func watch(ctx context.Context, path string, debounce time.Duration, log *logrus.Logger, onChange func(*Config)) error {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.PanicLevel)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}

	// Pending reload fires once the events settle.
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&fsnotify.Write == fsnotify.Write ||
				event.Op&fsnotify.Create == fsnotify.Create ||
				event.Op&fsnotify.Rename == fsnotify.Rename {
				timer.Reset(debounce)
			}

		case <-timer.C:
			cfg, err := LoadFromPath(target)
			if err != nil {
				log.WithFields(logrus.Fields{
					"event": "CONFIG_RELOAD_FAILED",
					"path":  target,
				}).WithError(err).Warn("keeping previous configuration")
				continue
			}
			log.WithFields(logrus.Fields{
				"event": "CONFIG_RELOADED",
				"path":  target,
			}).Info("configuration reloaded")
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("config watcher error")
		}
	}
}
