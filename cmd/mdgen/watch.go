package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"mdgen/internal/logging"
)

const watchDebounce = 300 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run generate whenever the config file changes",
	Long: `watch wraps generate in an fsnotify watcher over the config file,
debounced, so edits to storage flavor, derive list or per-object overrides
are picked up without a manual re-run. Grounded on
original_source/src/codegen/generator.rs's "invoked repeatedly by a build
script on every save" comment: this is that build-script loop, expressed
as a first-class subcommand instead of an external shell wrapper.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch(cmd)
	},
}

func runWatch(cmd *cobra.Command) error {
	log := logging.Get(logging.CategoryWatch)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: init watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(configPath)
	if dir == "" {
		dir = "."
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch: watch %s: %w", dir, err)
	}

	log.Infow("watching", "config", configPath, "dir", dir)
	if err := runGenerate(cmd); err != nil {
		log.Warnw("initial generate failed", "error", err)
	}

	var debounce *time.Timer
	trigger := make(chan struct{}, 1)
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(configPath) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warnw("watcher error", "error", err)

		case <-trigger:
			f, err := loadConfig()
			if err != nil {
				log.Warnw("reload config failed", "error", err)
				continue
			}
			resolvedConfig = f
			if err := runGenerate(cmd); err != nil {
				log.Warnw("generate failed", "error", err)
			} else {
				log.Infow("regenerated", "config", configPath)
			}
		}
	}
}
