package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is the quiet period used when New is given a non-positive
// debounce.
const DefaultDebounce = 500 * time.Millisecond

// Watcher fires a callback after the watched database file settles.
type Watcher struct {
	path     string
	wal      string
	debounce time.Duration
	onChange func()
	log      logrus.FieldLogger

	fsw      *fsnotify.Watcher
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// New creates a Watcher for path. onChange runs on its own goroutine once
// per burst of changes.
func New(path string, debounce time.Duration, onChange func()) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("watch path cannot be empty")
	}
	if onChange == nil {
		return nil, fmt.Errorf("onChange callback cannot be nil")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	return &Watcher{
		path:     abs,
		wal:      abs + "-wal",
		debounce: debounce,
		onChange: onChange,
		log:      logrus.StandardLogger(),
		stopCh:   make(chan struct{}),
	}, nil
}

// SetLogger replaces the logger used for watch errors.
func (w *Watcher) SetLogger(l logrus.FieldLogger) {
	if l != nil {
		w.log = l
	}
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Start subscribes to the file's directory and begins dispatching events.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.fsw = fsw

	w.log.WithFields(logrus.Fields{
		"path":     w.path,
		"debounce": w.debounce,
	}).Debug("watching database")

	w.wg.Add(1)
	go w.loop()

	return nil
}

// loop forwards relevant fsnotify events to the debouncer until Stop.
func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if w.relevant(ev) {
				w.schedule()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("watcher: fsnotify error")
		case <-w.stopCh:
			return
		}
	}
}

// relevant reports whether ev touches the database or its WAL.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(ev.Name)
	return name == w.path || name == w.wal
}

// schedule arms or re-arms the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, w.fire)
		return
	}
	w.timer.Reset(w.debounce)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	stopped := w.stopped
	w.mu.Unlock()

	if stopped {
		return
	}
	w.onChange()
}

// Stop halts the watcher. Pending debounced callbacks are dropped.
// Calling Stop more than once is safe.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		w.mu.Lock()
		w.stopped = true
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()

		close(w.stopCh)

		if w.fsw != nil {
			err = w.fsw.Close()
		}
		w.wg.Wait()
	})
	return err
}
