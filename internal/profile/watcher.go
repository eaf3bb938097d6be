package profile

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// debounceDelay coalesces bursts of write events into a single reload.
// Editors commonly truncate then write, producing several events per save.
const debounceDelay = 250 * time.Millisecond

// Watcher reloads the profile database into a Handle whenever the file
// changes on disk, so edits made by external tooling take effect without a
// restart.
type Watcher struct {
	path   string
	handle *Handle
	fsw    *fsnotify.Watcher
}

// NewWatcher watches path and publishes reloaded snapshots to handle.
// Watching the parent directory rather than the file itself survives
// rename-based atomic saves.
func NewWatcher(path string, handle *Handle) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fs watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	return &Watcher{path: path, handle: handle, fsw: fsw}, nil
}

// Run processes filesystem events until the context is canceled. Reload
// failures leave the previous snapshot in place.
func (w *Watcher) Run(ctx context.Context) {
	defer w.fsw.Close()

	var pending *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(debounceDelay, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logrus.WithError(err).Warn("profile db watcher error")
		case <-reload:
			db, err := Load(w.path)
			if err != nil {
				logrus.WithError(err).Warn("profile db reload failed, keeping previous snapshot")
				continue
			}
			w.handle.Replace(db)
			logrus.WithField("path", w.path).Info("profile db reloaded")
		}
	}
}
