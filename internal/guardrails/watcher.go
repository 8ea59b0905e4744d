package guardrails

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads an Engine's rule set when the rules file changes on
// disk. Invalid or unreadable files are logged and skipped, so the last
// good rule set stays active.
type Watcher struct {
	engine   *Engine
	path     string
	logger   *zap.Logger
	notifier *fsnotify.Watcher
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewWatcher creates a new Watcher instance for the given rules file.
// The parent directory is watched so editors that replace the file on
// save are still observed.
func NewWatcher(engine *Engine, path string, logger *zap.Logger) (*Watcher, error) {
	notifier, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := notifier.Add(filepath.Dir(path)); err != nil {
		notifier.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	return &Watcher{
		engine:   engine,
		path:     path,
		logger:   logger,
		notifier: notifier,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}, nil
}

// Start begins watching for rule file changes.
func (w *Watcher) Start() {
	go w.run()
}

// Stop stops the watcher and releases the underlying notifier.
func (w *Watcher) Stop() error {
	close(w.stopChan)
	err := w.notifier.Close()
	<-w.doneChan
	return err
}

func (w *Watcher) run() {
	defer close(w.doneChan)

	for {
		select {
		case <-w.stopChan:
			return
		case event, ok := <-w.notifier.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			w.reload()
		case err, ok := <-w.notifier.Errors:
			if !ok {
				return
			}
			w.logger.Warn("guardrail rules watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	rules, err := LoadFile(w.path)
	if err != nil {
		w.logger.Warn("keeping previous guardrail rules",
			zap.String("path", w.path),
			zap.Error(err))
		return
	}

	if err := w.engine.Replace(rules); err != nil {
		w.logger.Warn("keeping previous guardrail rules",
			zap.String("path", w.path),
			zap.Error(err))
		return
	}

	w.logger.Info("guardrail rules reloaded",
		zap.String("path", w.path),
		zap.Int("input_rules", len(rules.Input)),
		zap.Int("output_rules", len(rules.Output)))
}
