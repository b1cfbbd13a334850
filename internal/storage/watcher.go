package storage

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watcher nudges the conversion worker when a new .h264 lands in any
// camera's videos directory, cutting the latency of the poll loop. It is an
// optimization only: the poll loop alone is sufficient for correctness.
type Watcher struct {
	fs   *fsnotify.Watcher
	wake chan struct{}
	done chan struct{}
}

// NewWatcher watches {root}/{camera}/videos for every camera directory that
// exists at startup.
func NewWatcher(root Root) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(root.Path)
	if err != nil {
		fs.Close()
		return nil, err
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		videos := filepath.Join(root.Path, e.Name(), DirVideos)
		if _, err := os.Stat(videos); err == nil {
			if err := fs.Add(videos); err != nil {
				log.Printf("storage watcher: cannot watch %s: %v", videos, err)
			}
		}
	}

	w := &Watcher{
		fs:   fs,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Wake delivers at most one pending notification; receivers drain it before
// polling.
func (w *Watcher) Wake() <-chan struct{} {
	return w.wake
}

func (w *Watcher) Close() error {
	close(w.done)
	return w.fs.Close()
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if !strings.HasSuffix(ev.Name, ".h264") {
				continue
			}
			select {
			case w.wake <- struct{}{}:
			default:
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Printf("storage watcher error: %v", err)
		}
	}
}
