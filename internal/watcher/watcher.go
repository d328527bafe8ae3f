// Package watcher streams stylesheet changes from the filesystem.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"

	taskerrors "github.com/conneroisu/lesstask/internal/errors"
	"github.com/conneroisu/lesstask/internal/logging"
)

// ChangeEvent represents a file change event
type ChangeEvent struct {
	Type EventType
	Path string
	Time time.Time
}

// EventType represents the type of file change
type EventType int

const (
	EventTypeCreated EventType = iota
	EventTypeModified
	EventTypeDeleted
	EventTypeRenamed
	EventTypeOther
)

// String returns the string representation of the EventType
func (e EventType) String() string {
	switch e {
	case EventTypeCreated:
		return "created"
	case EventTypeModified:
		return "modified"
	case EventTypeDeleted:
		return "deleted"
	case EventTypeRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// Triggers reports whether the event is an add or change.
func (e EventType) Triggers() bool {
	return e == EventTypeCreated || e == EventTypeModified
}

// Options configures a Watcher.
type Options struct {
	// Debounce collapses events arriving within the window into one.
	// Zero forwards every event.
	Debounce time.Duration
	Logger   logging.Logger
	Fs       afero.Fs
}

// Watcher watches a directory tree recursively and emits add and change
// events for paths matching a glob pattern.
type Watcher struct {
	watcher  *fsnotify.Watcher
	fs       afero.Fs
	logger   logging.Logger
	root     string
	pattern  string
	debounce time.Duration

	events    chan ChangeEvent
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
	wg        sync.WaitGroup
}

// Watch starts watching pattern, e.g. "src/**/less/**/*.less". The static
// base of the pattern is watched recursively; directories created later are
// added as they appear. The stream ends when ctx is done or Close is called.
func Watch(ctx context.Context, pattern string, opts Options) (*Watcher, error) {
	base, rest := doublestar.SplitPattern(filepath.ToSlash(pattern))
	if rest == "" || !doublestar.ValidatePattern(rest) {
		return nil, taskerrors.NewWatchError(taskerrors.CodeWatchStart,
			"invalid watch pattern "+pattern, doublestar.ErrBadPattern)
	}

	root, err := filepath.Abs(filepath.FromSlash(base))
	if err != nil {
		return nil, taskerrors.NewWatchError(taskerrors.CodeWatchStart, "resolving watch root", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, taskerrors.NewWatchError(taskerrors.CodeWatchStart, "creating watcher", err)
	}

	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}

	w := &Watcher{
		watcher:  fsw,
		fs:       opts.Fs,
		logger:   opts.Logger.WithComponent("watcher"),
		root:     root,
		pattern:  rest,
		debounce: opts.Debounce,
		events:   make(chan ChangeEvent, 16),
		done:     make(chan struct{}),
	}

	if err := w.AddRecursive(root); err != nil {
		_ = fsw.Close()
		return nil, taskerrors.NewWatchError(taskerrors.CodeWatchStart, "watching "+root, err)
	}

	w.wg.Add(1)
	go w.watchLoop(ctx)

	return w, nil
}

// Events returns the change stream. It is closed once the watcher stops.
func (w *Watcher) Events() <-chan ChangeEvent {
	return w.events
}

// AddRecursive adds a directory and all subdirectories to watch
func (w *Watcher) AddRecursive(root string) error {
	return afero.Walk(w.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		return w.watcher.Add(path)
	})
}

// Close stops the watcher and releases its resources. It is safe to call
// more than once.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		close(w.done)
		w.closeErr = w.watcher.Close()
		w.wg.Wait()
	})
	return w.closeErr
}

// Matches reports whether path falls under the watch pattern.
func (w *Watcher) Matches(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return false
	}
	ok, _ := doublestar.Match(w.pattern, filepath.ToSlash(rel))
	return ok
}

func (w *Watcher) watchLoop(ctx context.Context) {
	defer w.wg.Done()
	defer close(w.events)

	var (
		pending *ChangeEvent
		timer   *time.Timer
		timerC  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

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

			changes := w.handleFsnotifyEvent(ctx, event)
			if len(changes) == 0 {
				continue
			}

			if w.debounce <= 0 {
				for _, change := range changes {
					if !w.emit(ctx, change) {
						return
					}
				}
				continue
			}

			pending = &changes[len(changes)-1]
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			timerC = timer.C
		case <-timerC:
			timerC = nil
			if pending != nil {
				change := *pending
				pending = nil
				if !w.emit(ctx, change) {
					return
				}
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// keep watching
			w.logger.Warn(ctx, err, "File watcher error")
		}
	}
}

func (w *Watcher) emit(ctx context.Context, change ChangeEvent) bool {
	select {
	case w.events <- change:
		return true
	case <-w.done:
		return false
	case <-ctx.Done():
		return false
	}
}

func (w *Watcher) handleFsnotifyEvent(ctx context.Context, event fsnotify.Event) []ChangeEvent {
	eventType := classify(event.Op)

	if eventType == EventTypeCreated {
		if info, err := w.fs.Stat(event.Name); err == nil && info.IsDir() {
			return w.addDirectory(ctx, event.Name)
		}
	}

	if !eventType.Triggers() || !w.Matches(event.Name) {
		return nil
	}

	w.logger.Debug(ctx, "Stylesheet changed", "path", event.Name, "type", eventType.String())

	return []ChangeEvent{{
		Type: eventType,
		Path: event.Name,
		Time: time.Now(),
	}}
}

// addDirectory watches a directory that appeared under the root and reports
// every matching file already inside it as created. This covers trees moved
// in whole and files written before the directory was registered.
func (w *Watcher) addDirectory(ctx context.Context, dir string) []ChangeEvent {
	var changes []ChangeEvent
	err := afero.Walk(w.fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return w.watcher.Add(path)
		}
		if w.Matches(path) {
			changes = append(changes, ChangeEvent{
				Type: EventTypeCreated,
				Path: path,
				Time: time.Now(),
			})
		}
		return nil
	})
	if err != nil {
		w.logger.Warn(ctx, err, "Failed to watch new directory", "dir", dir)
	}

	if len(changes) > 0 {
		w.logger.Debug(ctx, "Stylesheets added with directory", "dir", dir, "count", len(changes))
	}

	return changes
}

func classify(op fsnotify.Op) EventType {
	switch {
	case op.Has(fsnotify.Create):
		return EventTypeCreated
	case op.Has(fsnotify.Write):
		return EventTypeModified
	case op.Has(fsnotify.Remove):
		return EventTypeDeleted
	case op.Has(fsnotify.Rename):
		return EventTypeRenamed
	default:
		return EventTypeOther
	}
}
