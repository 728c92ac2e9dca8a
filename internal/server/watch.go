package server

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchCatalog invalidates the service's bundle cache whenever the catalog
// file changes, so a corpus add/rm in another process is picked up without a
// server restart. The watcher runs until ctx is canceled.
func (s *Service) WatchCatalog(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// Watch the directory: the catalog is replaced by rename, which drops a
	// watch placed on the file itself.
	catalogPath := s.store.Path()
	if err := watcher.Add(filepath.Dir(catalogPath)); err != nil {
		_ = watcher.Close()
		return err
	}

	go func() {
		defer func() { _ = watcher.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(catalogPath) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
					s.logger.Debug("catalog changed on disk", slog.String("op", event.Op.String()))
					s.InvalidateCache()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("catalog watch error", slog.String("error", err.Error()))
			}
		}
	}()
	return nil
}
