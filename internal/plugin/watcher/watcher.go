// Package watcher triggers plugin reloads when files under the plugin
// root change.
package watcher

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce batches bursts of filesystem events (editors write
// several times per save) into one reload.
const DefaultDebounce = 500 * time.Millisecond

// Watcher observes a plugin directory and invokes a reload callback after
// changes settle.
type Watcher struct {
	fsw      *fsnotify.Watcher
	root     string
	debounce time.Duration
	reload   func()
	logger   *zap.Logger

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the settle period before reload fires.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithLogger sets the watcher's logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		w.logger = l
	}
}

// New creates a watcher over root that calls reload after changes.
func New(root string, reload func(), opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		root:     root,
		debounce: DefaultDebounce,
		reload:   reload,
		logger:   zap.NewNop(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching. The reload callback runs on the watcher's own
// goroutine; callers that need the script goroutine must hop themselves
// (Manager.ReloadAll already does).
func (w *Watcher) Start() error {
	if err := w.fsw.Add(w.root); err != nil {
		return err
	}

	w.wg.Add(1)
	go w.loop()
	return nil
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("plugin file changed",
				zap.String("path", event.Name),
				zap.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))

		case <-fire:
			timer = nil
			fire = nil
			w.logger.Info("plugin change detected, reloading")
			w.reload()
		}
	}
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.wg.Wait()
	})
	return err
}
