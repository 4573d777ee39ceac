// Package watcher reports changes to the open data file and its sidecar so
// the application can offer a reload. Bursts of events are debounced into a
// single notification.
package watcher

import (
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/tabula/internal/log"
)

// Watcher monitors a set of files for changes made by other programs.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	files     []string
	debounce  time.Duration
	onChange  chan Change
	done      chan struct{}
	stopOnce  sync.Once

	mu         sync.Mutex
	quietUntil time.Time
	now        func() time.Time
}

// Change names the file whose modification triggered a notification. When
// several watched files change inside one debounce window the last one wins.
type Change struct {
	Path string
}

// Config holds watcher configuration options.
type Config struct {
	Files       []string
	DebounceDur time.Duration
}

// DefaultConfig returns sensible defaults for the watcher.
func DefaultConfig(files ...string) Config {
	return Config{
		Files:       files,
		DebounceDur: 500 * time.Millisecond,
	}
}

// New creates a watcher for cfg.Files.
func New(cfg Config) (*Watcher, error) {
	if len(cfg.Files) == 0 {
		return nil, fmt.Errorf("watcher: no files")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	files := make([]string, len(cfg.Files))
	for i, f := range cfg.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("resolving %s: %w", f, err)
		}
		files[i] = abs
	}
	return &Watcher{
		fsWatcher: fsw,
		files:     files,
		debounce:  cfg.DebounceDur,
		onChange:  make(chan Change, 1),
		done:      make(chan struct{}),
		now:       time.Now,
	}, nil
}

// Start begins watching the directories containing the files. Watching the
// directory rather than the file survives editors that save by rename.
func (w *Watcher) Start() (<-chan Change, error) {
	var dirs []string
	for _, f := range w.files {
		if dir := filepath.Dir(f); !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	for _, dir := range dirs {
		if err := w.fsWatcher.Add(dir); err != nil {
			return nil, fmt.Errorf("watching directory %s: %w", dir, err)
		}
	}
	log.Debug(log.CatWatcher, "watching", "files", len(w.files), "dirs", len(dirs))

	go w.loop()

	return w.onChange, nil
}

// Stop terminates the watcher and releases resources. It is safe to call
// more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()
	})
	return err
}

// Suppress ignores events for d. The application calls it right before
// writing the files itself.
func (w *Watcher) Suppress(d time.Duration) {
	w.mu.Lock()
	w.quietUntil = w.now().Add(d)
	w.mu.Unlock()
}

func (w *Watcher) suppressed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.now().Before(w.quietUntil)
}

// loop processes file system events with debouncing.
func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		pending string
	)
	timerC := func() <-chan time.Time {
		if timer != nil {
			return timer.C
		}
		return nil
	}

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			path, ok := w.relevant(event)
			if !ok || w.suppressed() {
				continue
			}
			pending = path
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)

		case <-timerC():
			if pending == "" {
				continue
			}
			log.Debug(log.CatWatcher, "file changed", "path", pending)
			// Non-blocking: an undelivered change already covers this one.
			select {
			case w.onChange <- Change{Path: pending}:
			default:
			}
			pending = ""

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatWatcher, "watch error", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// relevant reports whether event touches one of the watched files.
func (w *Watcher) relevant(event fsnotify.Event) (string, bool) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return "", false
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		return "", false
	}
	if slices.Contains(w.files, name) {
		return name, true
	}
	return "", false
}

// ChangedMsg is delivered to the Bubble Tea program when a watched file
// changes.
type ChangedMsg struct {
	Change
}

// WaitCmd blocks until the next change and returns it as a ChangedMsg. The
// program re-issues it after handling each message.
func WaitCmd(ch <-chan Change) tea.Cmd {
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return nil
		}
		return ChangedMsg{Change: c}
	}
}
