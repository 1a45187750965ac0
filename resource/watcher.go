package resource

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Debouncer runs fn once after delay; scheduling under the same name again
// replaces the pending call.
type Debouncer interface {
	AddDelay(name string, delay time.Duration, fn func())
}

// ReloadFn receives a freshly loaded and validated definition set.
type ReloadFn func(defs *Definitions)

// Watcher reloads definitions when YAML files change. Invalid edits are
// logged and the previous definitions stay in effect.
type Watcher struct {
	loader   *Loader
	watcher  *fsnotify.Watcher
	debounce Debouncer
	delay    time.Duration
	onReload ReloadFn
	logger   *zap.Logger
	closeCh  chan struct{}
	done     chan struct{}
	once     sync.Once
}

// reloadTask is the debounce key.
const reloadTask = "resource.reload"

// NewWatcher watches every definitions sub-directory that exists.
func NewWatcher(loader *Loader, debounce Debouncer, delay time.Duration, onReload ReloadFn, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	watched := 0
	for _, sub := range []string{DirClips, DirWeapons, DirArchetypes, DirLevels} {
		if err := fw.Add(loader.path(sub)); err != nil {
			logger.Debug("resource: not watching", zap.String("dir", sub), zap.Error(err))
			continue
		}
		watched++
	}
	if watched == 0 {
		if err := fw.Add(loader.Dir); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}
	if delay <= 0 {
		delay = 200 * time.Millisecond
	}
	w := &Watcher{
		loader:   loader,
		watcher:  fw,
		debounce: debounce,
		delay:    delay,
		onReload: onReload,
		logger:   logger,
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !isDefinitionFile(event.Name) {
				continue
			}
			w.logger.Debug("definition changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			w.debounce.AddDelay(reloadTask, w.delay, w.reload)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("definition watcher error", zap.Error(err))
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) reload() {
	defs, err := w.loader.Load()
	if err != nil {
		w.logger.Error("definition reload rejected", zap.Error(err))
		return
	}
	w.logger.Info("definitions reloaded",
		zap.Int("archetypes", len(defs.Archetypes)),
		zap.Int("clips", len(defs.Clips)),
		zap.Int("levels", len(defs.Levels)))
	w.onReload(defs)
}

func isDefinitionFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
