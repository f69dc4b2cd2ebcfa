// Package watch re-runs a callback whenever the source tree changes.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Norgate-AV/fsstage/internal/stager"
)

// DefaultDebounce is the quiet period after the last event before the
// callback runs
const DefaultDebounce = 250 * time.Millisecond

// Watcher watches a source tree
type Watcher struct {
	Debounce time.Duration
	Logger   *slog.Logger
}

// Run watches opts.SourceRoot with the default debounce
func Run(ctx context.Context, opts stager.Options, fn func()) error {
	w := &Watcher{Debounce: DefaultDebounce, Logger: opts.Logger}
	return w.Run(ctx, opts, fn)
}

// Run watches every directory under opts.SourceRoot and calls fn once per
// burst of changes. fn runs on the calling goroutine; events arriving while
// it runs schedule the next call. The output root and excluded directories
// are not watched. Run returns nil when ctx is cancelled.
func (w *Watcher) Run(ctx context.Context, opts stager.Options, fn func()) error {
	log := w.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	opts.SourceRoot = filepath.Clean(opts.SourceRoot)
	opts.OutputRoot = filepath.Clean(opts.OutputRoot)

	info, err := os.Stat(opts.SourceRoot)
	if err != nil {
		return &stager.IOError{Op: "stat", Path: opts.SourceRoot, Err: err}
	}

	if !info.IsDir() {
		return &stager.IOError{Op: "stat", Path: opts.SourceRoot, Err: errors.New("not a directory")}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	t := &tree{opts: opts, watcher: watcher, log: log}
	if err := t.add(opts.SourceRoot); err != nil {
		return err
	}

	log.Info("watching for changes", "source", opts.SourceRoot)

	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !t.relevant(event) {
				continue
			}

			log.Debug("change detected", "path", event.Name, "op", event.Op.String())

			if event.Has(fsnotify.Create) {
				if info, err := os.Lstat(event.Name); err == nil && info.IsDir() {
					if err := t.add(event.Name); err != nil {
						log.Warn("failed to watch directory", "dir", event.Name, "error", err)
					}
				}
			}

			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			} else {
				timer.Reset(debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			log.Warn("fsnotify error", "error", err)

		case <-timerC:
			timer, timerC = nil, nil
			fn()
		}
	}
}

type tree struct {
	opts    stager.Options
	watcher *fsnotify.Watcher
	log     *slog.Logger
}

// add watches dir and every directory below it that is not skipped
func (t *tree) add(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}

			t.log.Warn("failed to read directory", "dir", path, "error", err)
			return nil
		}

		if !d.IsDir() {
			return nil
		}

		if t.skipDir(path) {
			return fs.SkipDir
		}

		if err := t.watcher.Add(path); err != nil {
			if path == t.opts.SourceRoot {
				return err
			}

			t.log.Warn("failed to watch directory", "dir", path, "error", err)
		}

		return nil
	})
}

// skipDir reports whether a directory under the source root is left
// unwatched
func (t *tree) skipDir(path string) bool {
	if path == t.opts.SourceRoot {
		return false
	}

	if path == t.opts.OutputRoot {
		return true
	}

	rel, err := filepath.Rel(t.opts.SourceRoot, path)
	if err != nil {
		return true
	}

	return t.opts.Excluded(filepath.ToSlash(rel))
}

// relevant filters out events the stager causes itself
func (t *tree) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}

	// Temp files from atomic writes
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") && strings.Contains(base, ".tmp-") {
		return false
	}

	// The source may itself sit inside the output root
	if isWithin(t.opts.OutputRoot, event.Name) && !isWithin(t.opts.SourceRoot, event.Name) {
		return false
	}

	// Output inside the source
	if t.opts.OutputRoot != t.opts.SourceRoot && isWithin(t.opts.OutputRoot, event.Name) && isWithin(t.opts.SourceRoot, t.opts.OutputRoot) {
		return false
	}

	rel, err := filepath.Rel(t.opts.SourceRoot, event.Name)
	if err != nil {
		return false
	}

	return !t.opts.Excluded(filepath.ToSlash(rel))
}

func isWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
