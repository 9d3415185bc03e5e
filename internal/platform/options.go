package platform

import (
	"log/slog"

	"github.com/aretw0/larder/pkg/core"
	"github.com/aretw0/larder/pkg/settings"
)

// options holds the internal configuration for Larder.
type options struct {
	repository core.Repository
	logger     *slog.Logger
	store      *settings.Store
	config     map[string]interface{}
	// overrides are applied on top of the settings file.
	overrides []func(*settings.Settings)
}

// Option defines a functional option for configuring Larder.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		config: make(map[string]interface{}),
	}
}

func parseOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRepository injects a custom storage adapter (e.g. a mock).
// If provided, the filesystem adapter is skipped and no settings file is read.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithSettings shares a settings store with the host, bypassing the settings file.
func WithSettings(store *settings.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithTag overrides the entry tag (default "food").
func WithTag(tag string) Option {
	return func(o *options) {
		o.overrides = append(o.overrides, func(s *settings.Settings) { s.Tag = tag })
	}
}

// WithNutrientPattern overrides the doublestar pattern selecting nutrient notes.
func WithNutrientPattern(pattern string) Option {
	return func(o *options) {
		o.overrides = append(o.overrides, func(s *settings.Settings) { s.Nutrients = pattern })
	}
}

// WithGoals overrides the configured goals, keyed by field name.
func WithGoals(goals map[string]float64) Option {
	return func(o *options) {
		o.overrides = append(o.overrides, func(s *settings.Settings) { s.Goals = goals })
	}
}

// WithMustExist ensures the vault directory must already exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.config["must_exist"] = must
	}
}

// WithReadOnly opens the vault read-only: Save and Delete return ErrReadOnly
// and the directory is never created.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.config["read_only"] = enabled
	}
}

// WithSystemDir sets the hidden directory name. Defaults to ".larder".
func WithSystemDir(name string) Option {
	return func(o *options) {
		o.config["system_dir"] = name
	}
}

// WithEventBuffer sets the capacity of the watch channel. Zero means default (100).
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.config["event_buffer"] = size
	}
}

// WithWatcherErrorHandler registers a callback for runtime watcher failures,
// which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.config["watcher_error_handler"] = fn
	}
}

// WithLookupCache enables the SQLite cache for food lookups.
// An empty path means <vault>/<system dir>/lookup.db.
func WithLookupCache(path string) Option {
	return func(o *options) {
		o.config["lookup_cache"] = true
		o.config["lookup_cache_path"] = path
	}
}

// WithLookupURL points the food lookup client at another Open Food Facts instance.
func WithLookupURL(url string) Option {
	return func(o *options) {
		o.config["lookup_url"] = url
	}
}

// WithOnApply registers a callback run by the tracker after each vault change.
func WithOnApply(fn func(core.Event)) Option {
	return func(o *options) {
		o.config["on_apply"] = fn
	}
}
