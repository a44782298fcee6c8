package site

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ziadkadry99/sitekit/internal/logging"
)

// DefaultDebounce collapses the burst of events a single editor save emits.
const DefaultDebounce = 150 * time.Millisecond

// Watcher calls OnChange when any of the watched files is written, created
// or replaced. It watches parent directories because editors often save by
// renaming a temp file over the original.
type Watcher struct {
	Files    []string
	OnChange func()
	Debounce time.Duration
	Logger   *slog.Logger
}

// Run blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	logger := logging.OrDiscard(w.Logger)
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fw.Close()

	targets := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, f := range w.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", f, err)
		}
		targets[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("File watcher error", logging.Error(err))
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !relevant(ev, targets) {
				continue
			}
			logger.Debug("Content changed", logging.Path(ev.Name), logging.Op(ev.Op.String()))
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, w.OnChange)
			mu.Unlock()
		}
	}
}

func relevant(ev fsnotify.Event, targets map[string]bool) bool {
	if isTempFile(ev.Name) {
		return false
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	return targets[abs]
}

// isTempFile reports editor swap and backup files.
func isTempFile(name string) bool {
	base := filepath.Base(name)
	switch {
	case strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swx"),
		strings.HasSuffix(base, ".tmp"),
		strings.HasPrefix(base, ".#"),
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	}
	return false
}
