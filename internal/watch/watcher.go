// Package watch re-runs an action whenever a set of input files changes.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"atsmatch/internal/errors"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

// Defaults applied by New when Options leaves a field zero.
const (
	DefaultDebounceDelay    = 250 * time.Millisecond
	DefaultMaxRunsPerSecond = 2.0
	DefaultBurst            = 1
)

// ChangeFunc receives the watched files whose content changed.
type ChangeFunc func(ctx context.Context, changed []string)

// Options tunes debounce and rate limiting.
type Options struct {
	DebounceDelay    time.Duration
	MaxRunsPerSecond float64
	Burst            int
	// OnThrottled is called when a debounced change is deferred by the limiter.
	OnThrottled func(ctx context.Context, file string)
}

// Watcher watches files for changes and calls a ChangeFunc once per burst of
// events.
type Watcher struct {
	mu sync.Mutex

	files []string
	last  map[string]fileState

	debounceDelay time.Duration
	debounceTimer *time.Timer
	trigger       chan struct{}
	limiter       *rate.Limiter

	onChange    ChangeFunc
	onThrottled func(ctx context.Context, file string)
	logger      *errors.Logger
}

// New creates a watcher for files. Paths are made absolute so events reported
// against the parent directory can be matched.
func New(files []string, opts Options, onChange ChangeFunc, logger *errors.Logger) (*Watcher, error) {
	if len(files) == 0 {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "no files to watch", nil)
	}
	if logger == nil {
		logger = errors.Discard()
	}

	abs := make([]string, 0, len(files))
	for _, f := range files {
		p, err := filepath.Abs(f)
		if err != nil {
			return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
				fmt.Sprintf("cannot resolve path %s", f), err)
		}
		if !slices.Contains(abs, p) {
			abs = append(abs, p)
		}
	}

	if opts.DebounceDelay <= 0 {
		opts.DebounceDelay = DefaultDebounceDelay
	}
	if opts.MaxRunsPerSecond <= 0 {
		opts.MaxRunsPerSecond = DefaultMaxRunsPerSecond
	}
	if opts.Burst <= 0 {
		opts.Burst = DefaultBurst
	}

	w := &Watcher{
		files:         abs,
		last:          make(map[string]fileState),
		debounceDelay: opts.DebounceDelay,
		trigger:       make(chan struct{}, 1),
		limiter:       rate.NewLimiter(rate.Limit(opts.MaxRunsPerSecond), opts.Burst),
		onChange:      onChange,
		onThrottled:   opts.OnThrottled,
		logger:        logger,
	}
	w.snapshot()
	return w, nil
}

// Files returns the absolute paths being watched.
func (w *Watcher) Files() []string {
	return slices.Clone(w.files)
}

// Run watches until ctx is done. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.NewIOError(errors.ErrCodeFileNotReadable, "failed to create file watcher", err)
	}
	defer func() {
		if closeErr := fsWatcher.Close(); closeErr != nil {
			w.logger.LogError(closeErr, "Failed to close file watcher")
		}
	}()

	for _, dir := range w.directories() {
		if err := fsWatcher.Add(dir); err != nil {
			return errors.NewIOError(errors.ErrCodeFileNotReadable,
				fmt.Sprintf("failed to watch directory %s", dir), err)
		}
	}

	w.logger.Info("File watcher started", "files", w.files, "debounce_delay", w.debounceDelay)
	defer w.stopTimer()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("File watcher stopped")
			return nil

		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			if w.shouldProcessEvent(event) {
				w.scheduleRun()
			}

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.LogError(err, "File watcher error")

		case <-w.trigger:
			w.fire(ctx)
		}
	}
}

// fire runs onChange for the files that changed since the last run.
func (w *Watcher) fire(ctx context.Context) {
	if !w.limiter.Allow() {
		w.logger.Debug("Change deferred by rate limiter")
		if w.onThrottled != nil {
			w.onThrottled(ctx, w.files[0])
		}
		w.scheduleRun()
		return
	}

	w.mu.Lock()
	changed := w.changedFiles()
	w.mu.Unlock()

	if len(changed) == 0 {
		return
	}
	w.logger.Info("Watched files changed", "files", changed)
	w.onChange(ctx, changed)
}

// directories lists the parent directories of the watched files. Watching
// directories catches editors that save by rename.
func (w *Watcher) directories() []string {
	var dirs []string
	for _, f := range w.files {
		dir := filepath.Dir(f)
		if !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	name, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	if !slices.Contains(w.files, name) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0
}

// fileState is what a watched file is compared on between runs. Filesystems
// with coarse timestamps can miss a rewrite that keeps both the size and the
// mod time tick.
type fileState struct {
	modTime time.Time
	size    int64
}

func stateOf(stat os.FileInfo) fileState {
	return fileState{modTime: stat.ModTime(), size: stat.Size()}
}

func (s fileState) equal(o fileState) bool {
	return s.size == o.size && s.modTime.Equal(o.modTime)
}

// snapshot records the current state of every watched file.
func (w *Watcher) snapshot() {
	for _, f := range w.files {
		if stat, err := os.Stat(f); err == nil {
			w.last[f] = stateOf(stat)
		}
	}
}

// changedFiles returns files whose mod time or size moved or that appeared
// or vanished. Caller holds mu.
func (w *Watcher) changedFiles() []string {
	var changed []string
	for _, f := range w.files {
		stat, err := os.Stat(f)
		last, known := w.last[f]
		switch {
		case err != nil:
			if known {
				delete(w.last, f)
				changed = append(changed, f)
			}
		case !known || !stateOf(stat).equal(last):
			w.last[f] = stateOf(stat)
			changed = append(changed, f)
		}
	}
	return changed
}

// scheduleRun resets the debounce timer.
func (w *Watcher) scheduleRun() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounceDelay, func() {
		select {
		case w.trigger <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
}
