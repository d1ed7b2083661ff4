// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/daveshawley/familytree/pkg/types"
)

const defaultDebounce = 500 * time.Millisecond

// WatchRecords runs IngestRecords whenever a record file under
// cfg.RecordsDir is written or created, until ctx is cancelled. Events
// are debounced because editors produce bursts of writes for a single
// save; zero debounce selects the default. notify, when non-nil,
// receives the summary of each completed run. A failing run is logged
// and the watch continues.
func (l *Layer) WatchRecords(ctx context.Context, cfg types.IngestConfig, debounce time.Duration, progress io.Writer, notify func(IngestSummary)) error {
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(cfg.RecordsDir); err != nil {
		return fmt.Errorf("watching %s: %w", cfg.RecordsDir, err)
	}

	var timer *time.Timer
	pending := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			switch filepath.Ext(event.Name) {
			case ".yaml", ".yml":
			default:
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.log.Warn("watcher error", zap.Error(err))

		case <-pending:
			summary, err := l.IngestRecords(ctx, cfg, progress)
			if err != nil {
				l.log.Warn("ingest failed", zap.Error(err))
				continue
			}
			if notify != nil {
				notify(summary)
			}
		}
	}
}
