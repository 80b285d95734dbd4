package source

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Change describes one filesystem notification.
type Change struct {
	Path string
	Op   string
	Time time.Time
}

// Watcher observes source paths and reports changes.
type Watcher interface {
	Watch(ctx context.Context, paths []string, onChange func(Change)) (*WatchHandle, error)
}

// WatchHandle controls a running watch.
type WatchHandle struct {
	cancel context.CancelFunc
	done   chan struct{}

	// delivering is non-zero while a change callback runs on the loop.
	delivering atomic.Int32

	mu  sync.Mutex
	err error
}

// NewWatchHandle returns a handle whose Stop calls cancel. Watcher
// implementations call finish when their loop exits.
func NewWatchHandle(cancel context.CancelFunc) (*WatchHandle, func(error)) {
	h := &WatchHandle{cancel: cancel, done: make(chan struct{})}
	var once sync.Once
	finish := func(err error) {
		once.Do(func() {
			h.mu.Lock()
			h.err = err
			h.mu.Unlock()
			close(h.done)
		})
	}
	return h, finish
}

// Stop ends the watch and waits for the loop to exit. Called from inside a
// change callback it only cancels; the loop exits once the callback returns.
func (h *WatchHandle) Stop() {
	if h == nil {
		return
	}
	h.cancel()
	if h.delivering.Load() > 0 {
		return
	}
	<-h.done
}

// Deliver runs onChange for c. Watcher implementations route every callback
// through it so Stop can be called from the callback.
func (h *WatchHandle) Deliver(onChange func(Change), c Change) {
	h.delivering.Add(1)
	defer h.delivering.Add(-1)
	onChange(c)
}

// Done is closed once the watch has stopped.
func (h *WatchHandle) Done() <-chan struct{} {
	return h.done
}

// Err returns the error that ended the watch, if any.
func (h *WatchHandle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// FSWatcher watches filesystem sources with fsnotify. Directories are watched
// recursively and new subdirectories are picked up as they appear. Every
// notification produces one callback.
type FSWatcher struct {
	IncludeHidden bool
}

var _ Watcher = (*FSWatcher)(nil)

// NewFSWatcher returns a watcher with default settings.
func NewFSWatcher() *FSWatcher {
	return &FSWatcher{}
}

// Watch starts watching paths. It stops when ctx ends or the handle is
// stopped.
func (w *FSWatcher) Watch(ctx context.Context, paths []string, onChange func(Change)) (*WatchHandle, error) {
	if onChange == nil {
		return nil, errors.New("source: watch callback is nil")
	}
	notifier, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, &IOError{Op: "watch", Path: strings.Join(paths, ","), Err: err}
	}

	scope := &watchScope{files: map[string]struct{}{}}
	for _, raw := range paths {
		if err := w.add(notifier, scope, raw); err != nil {
			notifier.Close()
			return nil, err
		}
	}

	watchCtx, cancel := context.WithCancel(ctx)
	handle, finish := NewWatchHandle(cancel)

	go func() {
		defer notifier.Close()
		for {
			select {
			case <-watchCtx.Done():
				finish(nil)
				return
			case evt, ok := <-notifier.Events:
				if !ok {
					finish(nil)
					return
				}
				if !scope.contains(evt.Name) || w.hidden(evt.Name) {
					continue
				}
				if evt.Has(fsnotify.Create) {
					if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
						_ = w.addTree(notifier, evt.Name)
					}
				}
				handle.Deliver(onChange, Change{Path: evt.Name, Op: evt.Op.String(), Time: time.Now().UTC()})
			case werr, ok := <-notifier.Errors:
				if !ok {
					finish(nil)
					return
				}
				finish(&IOError{Op: "watch", Path: "", Err: werr})
				cancel()
				return
			}
		}
	}()

	return handle, nil
}

func (w *FSWatcher) add(notifier *fsnotify.Watcher, scope *watchScope, raw string) error {
	loc, err := Parse(raw)
	if err != nil {
		return &IOError{Op: "watch", Path: raw, Err: err}
	}
	if loc.Kind != KindFile {
		return &IOError{Op: "watch", Path: raw, Err: errors.New("only filesystem sources can be watched")}
	}
	info, err := os.Stat(loc.Path)
	if err != nil {
		return &IOError{Op: "watch", Path: loc.Path, Err: err}
	}
	if !info.IsDir() {
		scope.files[loc.Path] = struct{}{}
		if err := notifier.Add(filepath.Dir(loc.Path)); err != nil {
			return &IOError{Op: "watch", Path: loc.Path, Err: err}
		}
		return nil
	}
	scope.dirs = append(scope.dirs, loc.Path)
	if err := w.addTree(notifier, loc.Path); err != nil {
		return &IOError{Op: "watch", Path: loc.Path, Err: err}
	}
	return nil
}

func (w *FSWatcher) addTree(notifier *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && !w.IncludeHidden && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		return notifier.Add(path)
	})
}

func (w *FSWatcher) hidden(path string) bool {
	return !w.IncludeHidden && isHidden(filepath.Base(path))
}

type watchScope struct {
	files map[string]struct{}
	dirs  []string
}

func (s *watchScope) contains(path string) bool {
	if _, ok := s.files[path]; ok {
		return true
	}
	for _, dir := range s.dirs {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
