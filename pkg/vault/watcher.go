package vault

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fsnotify/fsnotify"

	log "github.com/sirupsen/logrus"
)

// Watcher observes a vault directory and calls notify whenever a note is
// created, written, renamed, or removed. Pair notify with Catalog.Invalidate
// to keep the served index current.
type Watcher struct {
	root   string
	exts   []string
	notify func()
}

// NewWatcher creates a watcher over root.
func NewWatcher(root string, notify func()) (*Watcher, error) {
	if root == "" {
		return nil, errors.New("missing vault root")
	}

	return &Watcher{
		root:   root,
		exts:   []string{".md", ".txt"},
		notify: notify,
	}, nil
}

// Start blocks, forwarding change notifications until the context is
// canceled.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()

	if err != nil {
		return err
	}

	defer watcher.Close()

	if err := w.watchTree(watcher); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			w.handle(watcher, event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			log.Errorf("vault watch: %v", err)
		}
	}
}

func (w *Watcher) watchTree(watcher *fsnotify.Watcher) error {
	return filepath.WalkDir(w.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !entry.IsDir() {
			return nil
		}

		if strings.HasPrefix(entry.Name(), ".") && path != w.root {
			return fs.SkipDir
		}

		return watcher.Add(path)
	})
}

func (w *Watcher) handle(watcher *fsnotify.Watcher, event fsnotify.Event) {
	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := watcher.Add(event.Name); err != nil {
				log.Warnf("vault watch %s: %v", event.Name, err)
			}

			w.notify()
			return
		}
	}

	if event.Op&fsnotify.Create != fsnotify.Create &&
		event.Op&fsnotify.Write != fsnotify.Write &&
		event.Op&fsnotify.Remove != fsnotify.Remove &&
		event.Op&fsnotify.Rename != fsnotify.Rename {
		return
	}

	if !slices.Contains(w.exts, strings.ToLower(filepath.Ext(event.Name))) {
		return
	}

	log.WithField("file", event.Name).Debug("vault change")

	w.notify()
}
