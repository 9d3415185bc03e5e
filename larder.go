package larder

import (
	"log/slog"

	"github.com/aretw0/larder/internal/platform"
	"github.com/aretw0/larder/pkg/core"
	"github.com/aretw0/larder/pkg/lookup"
	"github.com/aretw0/larder/pkg/settings"
	"github.com/aretw0/larder/pkg/tracker"
)

// Version exposes the version of the library.
var Version = "0.1.0"

// --- Types ---

// Service is a public alias for the tracker service.
type Service = tracker.Service

// Report is a public alias for a computed note report.
type Report = tracker.Report

// Settings is a public alias for the vault settings.
type Settings = settings.Settings

// --- Configuration ---

// Option defines a functional option for configuring Larder.
type Option = platform.Option

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRepository allows injecting a custom storage adapter.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithSettings shares a settings store with the host.
func WithSettings(store *settings.Store) Option {
	return platform.WithSettings(store)
}

// WithTag overrides the entry tag.
func WithTag(tag string) Option {
	return platform.WithTag(tag)
}

// WithNutrientPattern overrides the pattern selecting nutrient notes.
func WithNutrientPattern(pattern string) Option {
	return platform.WithNutrientPattern(pattern)
}

// WithGoals overrides the configured goals.
func WithGoals(goals map[string]float64) Option {
	return platform.WithGoals(goals)
}

// WithMustExist ensures the vault directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithReadOnly opens the vault without write access.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithSystemDir allows specifying the hidden directory name (e.g. ".larder").
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithEventBuffer allows specifying the size of the watch channel.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithWatcherErrorHandler registers a callback for runtime watcher failures.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// WithLookupCache enables the SQLite cache for food lookups.
func WithLookupCache(path string) Option {
	return platform.WithLookupCache(path)
}

// WithLookupURL points food lookups at another Open Food Facts instance.
func WithLookupURL(url string) Option {
	return platform.WithLookupURL(url)
}

// WithOnApply registers a callback run after each applied vault change.
func WithOnApply(fn func(core.Event)) Option {
	return platform.WithOnApply(fn)
}

// --- Factory ---

// New creates a tracker service for the vault at path.
func New(path string, opts ...Option) (*Service, error) {
	return platform.New(path, opts...)
}

// Init initializes a repository explicitly.
func Init(path string, opts ...Option) (core.Repository, error) {
	return platform.Init(path, opts...)
}

// LoadSettings returns the effective settings for the vault at path.
func LoadSettings(path string, opts ...Option) (Settings, error) {
	return platform.LoadSettings(path, opts...)
}

// OpenLookup returns a food searcher and a function releasing its cache.
func OpenLookup(path string, opts ...Option) (lookup.Searcher, func() error, error) {
	return platform.OpenLookup(path, opts...)
}

// --- Utils ---

// FindVaultRoot recursively looks upwards for a vault root indicator.
func FindVaultRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
