package content

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jonwraymond/sitesearch/index"
)

// DefaultDebounce is how long the watcher waits for a burst of file events
// to settle before reporting a change.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reports changes under a content root laid out for FSLoader.
type Watcher struct {
	root     string
	types    []index.Type
	debounce time.Duration
	logger   *slog.Logger
}

// NewWatcher returns a Watcher for root. A debounce <= 0 selects
// DefaultDebounce.
func NewWatcher(root string, debounce time.Duration, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Watcher{
		root:     root,
		types:    index.Types,
		debounce: debounce,
		logger:   logger.With(slog.String("component", "watcher")),
	}
}

// Run watches the content root and every type directory until ctx is done,
// calling onChange once per settled burst of changes. Type directories
// created after Run starts are picked up. Watch errors are logged and do not
// stop the loop.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("content: create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.root); err != nil {
		return fmt.Errorf("content: watch %s: %w", w.root, err)
	}
	for _, t := range w.types {
		w.addTypeDir(fw, filepath.Join(w.root, string(t)))
	}
	w.logger.Info("watching content", slog.String("root", w.root))

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) && w.isTypeDir(ev.Name) {
				w.addTypeDir(fw, ev.Name)
			}
			if !relevant(ev) {
				continue
			}
			w.logger.Debug("content event", slog.String("op", ev.Op.String()), slog.String("file", ev.Name))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("content watcher error", slog.String("error", err.Error()))

		case <-fire:
			fire = nil
			onChange(ctx)
		}
	}
}

func (w *Watcher) isTypeDir(name string) bool {
	if filepath.Dir(name) != filepath.Clean(w.root) {
		return false
	}
	return index.Type(filepath.Base(name)).Valid()
}

func (w *Watcher) addTypeDir(fw *fsnotify.Watcher, dir string) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return
	}
	if err := fw.Add(dir); err != nil {
		w.logger.Warn("cannot watch content directory",
			slog.String("dir", dir),
			slog.String("error", err.Error()),
		)
	}
}

// relevant filters out attribute changes and editor scratch files.
func relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	base := filepath.Base(ev.Name)
	return !strings.HasPrefix(base, ".") && !strings.HasSuffix(base, "~")
}
