package cli

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/edaniels/golog"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"github.com/cloudseq/cloudseq/sequence"
)

// ScanDir lists the ply files in dir as frame files in name order.
func ScanDir(dir string) ([]sequence.FrameFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "error scanning %q", dir)
	}
	var files []sequence.FrameFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".ply") {
			continue
		}
		files = append(files, sequence.NewDiskFrame(filepath.Join(dir, entry.Name())))
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Name() < files[j].Name()
	})
	return files, nil
}

// Watcher observes a frame source directory and re-registers the frame set
// after a quiet period, so the sequence refreshes while the app runs.
type Watcher struct {
	logger   golog.Logger
	dir      string
	registry *sequence.Registry
	notify   *fsnotify.Watcher
	debounce func(func())

	activeBackgroundWorkers sync.WaitGroup
}

// NewWatcher returns a watcher over dir feeding the registry. quiet is the
// debounce window collapsing bursts of file events into one re-registration.
func NewWatcher(dir string, registry *sequence.Registry, quiet time.Duration, logger golog.Logger) (*Watcher, error) {
	notify, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := notify.Add(dir); err != nil {
		goutils.UncheckedError(notify.Close())
		return nil, errors.Wrapf(err, "error watching %q", dir)
	}
	return &Watcher{
		logger:   logger,
		dir:      dir,
		registry: registry,
		notify:   notify,
		debounce: debounce.New(quiet),
	}, nil
}

// Start begins processing file events until the context ends or the watcher
// is closed.
func (w *Watcher) Start(ctx context.Context) {
	w.activeBackgroundWorkers.Add(1)
	goutils.PanicCapturingGo(func() {
		defer w.activeBackgroundWorkers.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.notify.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
					w.debounce(w.rescan)
				}
			case err, ok := <-w.notify.Errors:
				if !ok {
					return
				}
				w.logger.Warnw("frame directory watch error", "error", err)
			}
		}
	})
}

func (w *Watcher) rescan() {
	files, err := ScanDir(w.dir)
	if err != nil {
		w.logger.Warnw("frame directory rescan failed", "error", err)
		return
	}
	w.registry.RegisterFrames(files)
}

// Close stops watching and waits for the event loop to exit.
func (w *Watcher) Close() error {
	err := w.notify.Close()
	w.activeBackgroundWorkers.Wait()
	return err
}
