package liveeval

import (
	"context"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatcherConfig configures a FileWatcher.
type WatcherConfig struct {
	// Path is the file to watch. Required.
	Path string

	// PollInterval is used as a fallback when fsnotify can't be set up
	// (e.g. the directory doesn't support inotify) and as a periodic
	// safety-net re-read even while fsnotify is active, to paper over
	// editors that replace the file via rename instead of an in-place
	// write. Defaults to 500ms.
	PollInterval time.Duration

	// Debounce coalesces a burst of filesystem events into a single
	// re-read, so a save that touches the file twice in quick succession
	// (common with some editors) produces one flush, not two. Defaults
	// to 50ms.
	Debounce time.Duration
}

// DefaultWatcherConfig returns sane defaults for everything but Path.
func DefaultWatcherConfig(path string) WatcherConfig {
	return WatcherConfig{
		Path:         path,
		PollInterval: 500 * time.Millisecond,
		Debounce:     50 * time.Millisecond,
	}
}

// fileStat is the dedup key used to decide whether a file actually
// changed: comparing mtime+size avoids re-reading (and re-parsing,
// re-evaluating) a file on events that don't change its content, such as
// an atime-only touch.
type fileStat struct {
	modTime time.Time
	size    int64
}

// FileWatcher is the entry point of the pipeline: it watches Path and
// publishes Overwrite[string] diffs of its contents to an IncServer. On an
// unreadable file it publishes the empty string rather than failing, per
// spec.md's file-read-failure handling.
type FileWatcher struct {
	cfg     WatcherConfig
	out     *IncServer[string, Overwrite[string]]
	lastOut fileStat
}

// NewFileWatcher constructs a watcher publishing to a freshly created
// IncServer seeded with the file's current contents (or "" if unreadable).
// It does not start watching; call Run.
func NewFileWatcher(cfg WatcherConfig,
	newIncServer func(initial string) *IncServer[string, Overwrite[string]],
) (*FileWatcher, error) {

	if cfg.Path == "" {
		return nil, ErrWatchPathRequired
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 50 * time.Millisecond
	}

	initial, stat := readFile(cfg.Path)

	return &FileWatcher{
		cfg:     cfg,
		out:     newIncServer(initial),
		lastOut: stat,
	}, nil
}

// Out returns the IncServer publishing this watcher's Overwrite[string]
// diffs.
func (w *FileWatcher) Out() *IncServer[string, Overwrite[string]] {
	return w.out
}

// readFile reads path, returning "" and a zero fileStat on any error
// (including the file not existing) rather than propagating it.
func readFile(path string) (string, fileStat) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fileStat{}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fileStat{}
	}

	return string(data), fileStat{modTime: info.ModTime(), size: info.Size()}
}

// Run watches the file until ctx is cancelled. It prefers fsnotify; if the
// watcher can't be created (e.g. unsupported filesystem), it falls back to
// pure polling at PollInterval. fsnotify events are debounced before
// triggering a re-read; poll ticks re-read at once. Either way, a re-read
// that doesn't actually change mtime+size is dropped without publishing a
// diff.
func (w *FileWatcher) Run(ctx context.Context) error {
	notifier, err := fsnotify.NewWatcher()
	if err != nil {
		log.WarnS(ctx, "fsnotify unavailable, falling back to polling", err)
		return w.runPollOnly(ctx)
	}
	defer notifier.Close()

	dir := dirOf(w.cfg.Path)
	if err := notifier.Add(dir); err != nil {
		log.WarnS(ctx, "fsnotify add failed, falling back to polling", err,
			"dir", dir)
		return w.runPollOnly(ctx)
	}

	var debounceTimer *time.Timer
	debounceC := make(chan struct{})

	poll := time.NewTicker(w.cfg.PollInterval)
	defer poll.Stop()

	scheduleCheck := func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		debounceTimer = time.AfterFunc(w.cfg.Debounce, func() {
			select {
			case debounceC <- struct{}{}:
			case <-ctx.Done():
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-notifier.Events:
			if !ok {
				return nil
			}
			if ev.Name == w.cfg.Path {
				scheduleCheck()
			}

		case err, ok := <-notifier.Errors:
			if !ok {
				return nil
			}
			log.WarnS(ctx, "fsnotify watch error", err)

		case <-debounceC:
			w.checkAndPublish(ctx)

		case <-poll.C:
			w.checkAndPublish(ctx)
		}
	}
}

// runPollOnly is the pure-polling fallback path.
func (w *FileWatcher) runPollOnly(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.checkAndPublish(ctx)
		}
	}
}

// checkAndPublish re-reads the file, and if its (mtime, size) changed since
// the last publish, pushes an Overwrite diff and flushes it.
func (w *FileWatcher) checkAndPublish(ctx context.Context) {
	contents, stat := readFile(w.cfg.Path)
	if stat == w.lastOut {
		return
	}

	w.lastOut = stat
	w.out.Update(ctx, OverwriteWith(contents))
	w.out.Flush(ctx)
}

// dirOf returns the parent directory of path, watching "." if path has no
// directory component.
func dirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}

	return "."
}
