package fileio

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/penwyp/UsagePivot/logging"
)

// EventType represents the type of file system event
type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
	EventRename
)

// String returns a string representation of the event type
func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "CREATE"
	case EventModify:
		return "MODIFY"
	case EventDelete:
		return "DELETE"
	case EventRename:
		return "RENAME"
	default:
		return "UNKNOWN"
	}
}

// FileEvent is a debounced change to one of the watched inputs
type FileEvent struct {
	Path      string
	Type      EventType
	Timestamp time.Time
}

// WatcherConfig holds configuration for the input watcher
type WatcherConfig struct {
	DebounceTime time.Duration // quiet period before a change is reported
}

// DefaultWatcherConfig returns default configuration
var DefaultWatcherConfig = WatcherConfig{
	DebounceTime: 500 * time.Millisecond,
}

// Watcher reports changes to a fixed set of input files. It watches their
// parent directories so that editors which save by rename are seen.
type Watcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]bool
	debounce time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending FileEvent
}

// NewWatcher creates a watcher over files
func NewWatcher(files []string, config WatcherConfig) (*Watcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}
	if config.DebounceTime <= 0 {
		config.DebounceTime = DefaultWatcherConfig.DebounceTime
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fsWatcher,
		files:    make(map[string]bool, len(files)),
		debounce: config.DebounceTime,
	}

	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fsWatcher.Close()
			return nil, fmt.Errorf("failed to resolve %s: %w", f, err)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	for dir := range dirs {
		if err := fsWatcher.Add(dir); err != nil {
			fsWatcher.Close()
			return nil, fmt.Errorf("failed to watch path %s: %w", dir, err)
		}
	}
	return w, nil
}

// Files returns the watched files in sorted order
func (w *Watcher) Files() []string {
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Run delivers one debounced event per burst of changes to onChange until
// ctx is cancelled. onChange runs on the timer goroutine, one call at a time.
func (w *Watcher) Run(ctx context.Context, onChange func(FileEvent)) error {
	defer w.watcher.Close()
	defer w.stopTimer()

	var callMu sync.Mutex
	fire := func() {
		w.mu.Lock()
		ev := w.pending
		w.timer = nil
		w.mu.Unlock()

		callMu.Lock()
		defer callMu.Unlock()
		if ctx.Err() == nil {
			onChange(ev)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			fe, relevant := w.translate(event)
			if !relevant {
				continue
			}
			logging.LogDebugf("input %s: %s", fe.Type, fe.Path)

			w.mu.Lock()
			w.pending = fe
			if w.timer != nil {
				w.timer.Stop()
			}
			w.timer = time.AfterFunc(w.debounce, fire)
			w.mu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logging.LogWarnf("input watcher: %v", err)
		}
	}
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// translate filters an fsnotify event down to the watched files
func (w *Watcher) translate(event fsnotify.Event) (FileEvent, bool) {
	abs, err := filepath.Abs(event.Name)
	if err != nil || !w.files[abs] {
		return FileEvent{}, false
	}

	var t EventType
	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		t = EventCreate
	case event.Op&fsnotify.Write == fsnotify.Write:
		t = EventModify
	case event.Op&fsnotify.Remove == fsnotify.Remove:
		t = EventDelete
	case event.Op&fsnotify.Rename == fsnotify.Rename:
		t = EventRename
	default:
		return FileEvent{}, false
	}
	return FileEvent{Path: abs, Type: t, Timestamp: time.Now()}, true
}
