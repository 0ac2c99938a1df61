package fs

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/stewardhq/steward/internal/domain/asset"
)

const defaultDebounce = 250 * time.Millisecond

// DriftHandler receives the keys of managed asset files that changed on disk.
type DriftHandler func(keys []string)

// Watcher reports file changes under the store root. Events are debounced so
// an editor save burst produces one notification per key. The engine writes
// through the store as well, so a drift event is a hint, not proof of an
// external edit.
type Watcher struct {
	root     string
	watcher  *fsnotify.Watcher
	handler  DriftHandler
	debounce time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a watcher over the asset root. handler receives batches
// of changed keys; nil falls back to logging each change.
func NewWatcher(root string, handler DriftHandler) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create asset watcher: %w", err)
	}
	if handler == nil {
		handler = logDrift
	}
	return &Watcher{
		root:     root,
		watcher:  fsw,
		handler:  handler,
		debounce: defaultDebounce,
		done:     make(chan struct{}),
	}, nil
}

// Start registers the directory tree and dispatches drift batches until ctx
// is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}
		if !d.IsDir() {
			return nil
		}
		return w.watcher.Add(path)
	})
	if err != nil {
		return fmt.Errorf("watch asset dir %s: %w", w.root, err)
	}
	go w.loop(ctx)
	return nil
}

// Stop closes the watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()
	})
}

func (w *Watcher) loop(ctx context.Context) {
	pending := make(map[string]struct{})
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if len(pending) > 0 {
			keys := make([]string, 0, len(pending))
			for k := range pending {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			w.handler(keys)
			clear(pending)
		}
		if timer != nil {
			timer.Stop()
			timer = nil
			timerC = nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case <-w.done:
			flush()
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					w.watcher.Add(event.Name)
					continue
				}
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			key, ok := w.keyFor(event.Name)
			if !ok {
				continue
			}
			pending[key] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("asset watcher error", "error", err)
		case <-timerC:
			flush()
		}
	}
}

// keyFor maps an event path to a managed asset key, rejecting paths outside
// the root and files without a recognized class.
func (w *Watcher) keyFor(path string) (string, bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == ".." || filepath.IsAbs(rel) {
		return "", false
	}
	key := filepath.ToSlash(rel)
	if asset.ClassOf(key) == asset.ClassOther {
		return "", false
	}
	return key, true
}

func logDrift(keys []string) {
	for _, key := range keys {
		slog.Warn("asset file changed on disk", "key", key)
	}
}
