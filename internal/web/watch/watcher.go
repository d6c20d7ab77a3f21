package watch

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after which collected changes are reported.
const DefaultDebounce = time.Second

// Watcher watches a content tree recursively and reports batches of changed paths.
type Watcher struct {
	root     string
	debounce time.Duration
	onChange func(paths []string)
	watcher  *fsnotify.Watcher
	done     chan struct{}
}

// NewWatcher creates and starts a watcher on root and every directory below it.
// onChange runs on the watcher goroutine with the sorted set of paths touched
// since the previous call.
func NewWatcher(root string, debounce time.Duration, onChange func(paths []string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		root:     root,
		debounce: debounce,
		onChange: onChange,
		watcher:  fw,
		done:     make(chan struct{}),
	}

	if err := w.addTree(root); err != nil {
		_ = fw.Close()
		return nil, err
	}

	go w.loop()
	return w, nil
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped; the root itself must be watchable.
			if path == dir {
				return err
			}
			slog.Warn("skip unwatchable dir", "path", path, "err", err)
			return fs.SkipDir
		}
		if !d.IsDir() {
			return nil
		}
		return w.watcher.Add(path)
	})
}

func (w *Watcher) loop() {
	defer close(w.done)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	dirty := make(map[string]struct{})

	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addTree(ev.Name); err != nil {
						slog.Warn("watch new dir", "path", ev.Name, "err", err)
					}
				}
			}
			if len(dirty) == 0 {
				timer.Reset(w.debounce)
			}
			dirty[ev.Name] = struct{}{}
		case <-timer.C:
			paths := make([]string, 0, len(dirty))
			for p := range dirty {
				paths = append(paths, p)
			}
			slices.Sort(paths)
			clear(dirty)
			if w.onChange != nil {
				w.onChange(paths)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("fsnotify error", "err", err)
		}
	}
}
