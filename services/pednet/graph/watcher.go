// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// RebuildHandler is called when a debounced pedigree file change is ready.
type RebuildHandler func(path string)

// PedigreeWatcher watches a single pedigree file and triggers full
// rebuilds on change.
//
// # Description
//
// Watches the file's parent directory so that editor save strategies
// (write to temp, rename over target) are still observed, filters events
// down to the target file, and debounces bursts into a single handler
// call. There is no incremental update path: every trigger means rebuild
// from scratch.
//
// # Thread Safety
//
// Safe for concurrent use. The handler is called from a single goroutine.
type PedigreeWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	handler  RebuildHandler
	debounce time.Duration

	events   chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	mu       sync.RWMutex
	watching bool
}

// PedigreeWatcherOptions configures the PedigreeWatcher.
type PedigreeWatcherOptions struct {
	// DebounceWindow is how long to wait for more changes before
	// triggering a rebuild. Default: 250ms.
	DebounceWindow time.Duration
}

// DefaultPedigreeWatcherOptions returns sensible defaults.
func DefaultPedigreeWatcherOptions() PedigreeWatcherOptions {
	return PedigreeWatcherOptions{
		DebounceWindow: 250 * time.Millisecond,
	}
}

// NewPedigreeWatcher creates a watcher for the given pedigree file.
//
// # Inputs
//
//   - path: Path to the pedigree file to watch.
//   - handler: Function called with the file path after debounce.
//   - opts: Optional configuration (nil uses defaults).
//
// # Outputs
//
//   - *PedigreeWatcher: Ready-to-use watcher (call Start to begin).
//   - error: Non-nil if the underlying watcher could not be created.
func NewPedigreeWatcher(path string, handler RebuildHandler, opts *PedigreeWatcherOptions) (*PedigreeWatcher, error) {
	if opts == nil {
		defaults := DefaultPedigreeWatcherOptions()
		opts = &defaults
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, err
	}

	return &PedigreeWatcher{
		path:     abs,
		watcher:  watcher,
		handler:  handler,
		debounce: opts.DebounceWindow,
		events:   make(chan struct{}, 64),
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching the pedigree file.
//
// Spawns two goroutines: an event filter and a debouncer. Both exit when
// Stop() is called or the context is canceled.
func (w *PedigreeWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return nil
	}
	w.watching = true
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	go w.processEvents(ctx)
	go w.debounceLoop(ctx)

	return nil
}

// Stop stops the watcher. Idempotent.
func (w *PedigreeWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()

		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
	})
}

// IsWatching returns true if the watcher is currently active.
func (w *PedigreeWatcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.watching
}

// processEvents filters directory events down to the watched file.
func (w *PedigreeWatcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			select {
			case w.events <- struct{}{}:
			default:
				// A trigger is already pending, one rebuild covers both.
			}
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// debounceLoop collapses event bursts into single handler calls.
func (w *PedigreeWatcher) debounceLoop(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case <-w.events:
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case <-timerC:
			timer = nil
			timerC = nil
			if w.handler != nil {
				w.handler(w.path)
			}
		}
	}
}
