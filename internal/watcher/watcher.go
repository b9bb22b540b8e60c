// Package watcher watches the data directory for scraper drops and triggers ingestion.
package watcher

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Watcher watches a single data directory and invokes onIngest for each data
// file once its writes have settled. Scrapers write files incrementally, so
// events are debounced per path.
type Watcher struct {
	dir      string
	onIngest func(path string)
	debounce time.Duration
	logger   *zap.Logger

	watcher     *fsnotify.Watcher
	mu          sync.Mutex
	debounceMap map[string]*time.Timer
	done        chan struct{}
	started     bool
	stopOnce    sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the settle delay before a changed file is ingested.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New creates a watcher over dir. onIngest is called with the path of each
// settled CSV or XLSX file.
func New(dir string, onIngest func(path string), logger *zap.Logger, opts ...Option) *Watcher {
	w := &Watcher{
		dir:         dir,
		onIngest:    onIngest,
		debounce:    defaultDebounce,
		logger:      logger,
		debounceMap: make(map[string]*time.Timer),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start starts watching. It runs until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	if err := watcher.Add(w.dir); err != nil {
		_ = watcher.Close()
		w.mu.Unlock()
		return err
	}
	w.watcher = watcher
	w.started = true
	w.mu.Unlock()

	w.logger.Info("watching data directory", zap.String("dir", w.dir))
	go w.run(ctx)
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Debug("watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if !dataFile(ev.Name) {
		return
	}
	switch {
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		w.logger.Debug("data file event", zap.String("op", ev.Op.String()), zap.String("path", ev.Name))
		w.debounceIngest(ev.Name)
	case ev.Op&fsnotify.Remove != 0:
		w.cancelDebounce(ev.Name)
	}
}

func dataFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
		return true
	default:
		return false
	}
}

func (w *Watcher) debounceIngest(path string) {
	clean := filepath.Clean(path)
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.debounceMap[clean]; ok {
		timer.Stop()
	}
	w.debounceMap[clean] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.debounceMap, clean)
		w.mu.Unlock()
		if w.onIngest != nil {
			w.onIngest(clean)
		}
	})
}

func (w *Watcher) cancelDebounce(path string) {
	clean := filepath.Clean(path)
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.debounceMap[clean]; ok {
		timer.Stop()
		delete(w.debounceMap, clean)
	}
}

// Stop stops the watcher and cancels pending ingestions.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		defer w.mu.Unlock()
		for path, timer := range w.debounceMap {
			timer.Stop()
			delete(w.debounceMap, path)
		}
		if w.watcher != nil {
			_ = w.watcher.Close()
		}
		w.started = false
	})
}
