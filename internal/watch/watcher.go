// Package watch regenerates the mapping whenever layout documents change.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// RunFunc performs one full scan.
type RunFunc func(ctx context.Context) error

// Config describes what to watch.
type Config struct {
	Root     string
	Pattern  string
	Ignore   []string // paths whose changes never trigger a run
	Debounce time.Duration
}

// Watcher serializes scan runs triggered by file system events.
type Watcher struct {
	config Config
	run    RunFunc
	fs     afero.Fs
}

// New creates a Watcher. The root is read through the OS file system
// because fsnotify only observes real directories.
func New(config Config, run RunFunc) *Watcher {
	if config.Debounce <= 0 {
		config.Debounce = 300 * time.Millisecond
	}
	return &Watcher{config: config, run: run, fs: afero.NewOsFs()}
}

// Relevant reports whether event should schedule a new run.
func (w *Watcher) Relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	name := filepath.Clean(event.Name)
	for _, ignored := range w.config.Ignore {
		if name == filepath.Clean(ignored) {
			return false
		}
	}
	// Editor swap files and our own temp files.
	if strings.HasPrefix(filepath.Base(name), ".") {
		return false
	}

	rel, err := filepath.Rel(w.config.Root, name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	ok, _ := doublestar.Match(w.config.Pattern, filepath.ToSlash(rel))
	return ok
}

func (w *Watcher) addTree(fsw *fsnotify.Watcher, root string) error {
	return afero.Walk(w.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) runOnce(ctx context.Context) {
	if err := w.run(ctx); err != nil {
		log.Error().Err(err).Msg("Scan failed")
	}
}

// Run performs an initial scan and then one scan per debounced burst of
// relevant changes, until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := w.addTree(fsw, w.config.Root); err != nil {
		return err
	}

	w.runOnce(ctx)
	log.Info().Str("root", w.config.Root).Dur("debounce", w.config.Debounce).Msg("Watching for layout changes")

	timer := time.NewTimer(w.config.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := w.fs.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(fsw, event.Name); err != nil {
						log.Warn().Err(err).Msg("Failed to watch new directory")
					}
				}
			}
			if !w.Relevant(event) {
				continue
			}
			log.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("Layout changed")
			timer.Reset(w.config.Debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("Watcher error")

		case <-timer.C:
			w.runOnce(ctx)
		}
	}
}
