// Package logging provides categorized structured logging for mdgen.
// Grounded on codenerd/internal/logging/logger.go's Category enum and
// config-gated-category pattern, swapped from codenerd's hand-rolled
// file writer to go.uber.org/zap — already a teacher dependency the
// original logger.go never actually used.
package logging

import (
	"sync"

	"go.uber.org/zap"
)

// Category tags which subsystem emitted a log line, mirroring codenerd's
// Category enum but trimmed to mdgen's own subsystems.
type Category string

const (
	CategoryDriver  Category = "driver"    // C9 target drivers
	CategoryBuilder Category = "builder"   // C8 generator builder
	CategoryDiff    Category = "diffmerge" // C3 diff engine
	CategoryShape   Category = "shape"     // C6 code-shape selector
	CategoryStore   Category = "storegen"  // C7 store emitter
	CategoryConfig  Category = "config"    // C10 configuration resolver
	CategoryWatch   Category = "watch"     // cmd/mdgen watch mode
)

var (
	mu      sync.RWMutex
	base    *zap.Logger
	loggers = make(map[Category]*zap.SugaredLogger)
)

// Init installs the base zap logger every Category's logger derives from.
// Calling Init again replaces the base logger and clears cached
// per-category loggers, so tests can call it repeatedly with
// zaptest/observer loggers.
func Init(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	base = l
	loggers = make(map[Category]*zap.SugaredLogger)
}

// Get returns the *zap.SugaredLogger for category, tagged with a
// "category" field, creating and caching it on first use. If Init was
// never called, Get falls back to zap.NewNop() so calling code never
// needs a nil check.
func Get(category Category) *zap.SugaredLogger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}
	root := base
	if root == nil {
		root = zap.NewNop()
	}
	l := root.With(zap.String("category", string(category))).Sugar()
	loggers[category] = l
	return l
}

// Sync flushes every cached logger plus the base logger. Callers should
// defer this in main() the same way codenerd's cmd/nerd defers
// logger.Sync() in its PersistentPostRun.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	for _, l := range loggers {
		_ = l.Sync()
	}
	if base != nil {
		_ = base.Sync()
	}
}
