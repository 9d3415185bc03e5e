package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/larder/pkg/adapters/sqlite"
	"github.com/aretw0/larder/pkg/core"
	"github.com/aretw0/larder/pkg/lookup"
	"github.com/aretw0/larder/pkg/settings"
	"github.com/aretw0/larder/pkg/tracker"
)

// New opens the vault at path, loads its settings and returns a tracker with
// a freshly built nutrient index.
//
//	svc, err := larder.New("./vault", larder.WithTag("meal"))
func New(path string, opts ...Option) (*tracker.Service, error) {
	o := parseOptions(opts)

	repo, err := initRepository(path, o)
	if err != nil {
		return nil, err
	}

	store, err := loadSettings(path, o)
	if err != nil {
		return nil, err
	}

	onApply, _ := o.config["on_apply"].(func(core.Event))
	svc, err := tracker.New(tracker.Config{
		Repository: repo,
		Settings:   store,
		Logger:     o.log(),
		OnApply:    onApply,
	})
	if err != nil {
		return nil, err
	}
	if err := svc.Refresh(context.Background()); err != nil {
		svc.Close()
		return nil, err
	}
	return svc, nil
}

// LoadSettings returns the effective settings for the vault at path.
func LoadSettings(path string, opts ...Option) (settings.Settings, error) {
	store, err := loadSettings(path, parseOptions(opts))
	if err != nil {
		return settings.Settings{}, err
	}
	return store.Get(), nil
}

func loadSettings(path string, o *options) (*settings.Store, error) {
	if o.store != nil {
		return o.store, nil
	}

	s := settings.Default()
	if o.repository == nil {
		loaded, err := settings.LoadDir(path)
		if err != nil {
			return nil, err
		}
		s = loaded
	}
	for _, override := range o.overrides {
		override(&s)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return settings.NewStore(s), nil
}

// OpenLookup builds the food lookup client for the vault at path, wrapped in
// the SQLite cache when WithLookupCache is set. The returned close function
// releases the cache.
func OpenLookup(path string, opts ...Option) (lookup.Searcher, func() error, error) {
	o := parseOptions(opts)
	baseURL, _ := o.config["lookup_url"].(string)
	client := &lookup.Client{BaseURL: baseURL}

	enabled, _ := o.config["lookup_cache"].(bool)
	if !enabled {
		return client, func() error { return nil }, nil
	}

	dbPath, _ := o.config["lookup_cache_path"].(string)
	if dbPath == "" {
		systemDir, _ := o.config["system_dir"].(string)
		if systemDir == "" {
			systemDir = ".larder"
		}
		dir := filepath.Join(path, systemDir)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create system directory: %w", err)
		}
		dbPath = filepath.Join(dir, "lookup.db")
	}

	cache, err := sqlite.Open(dbPath, sqlite.WithLogger(o.log()))
	if err != nil {
		return nil, nil, err
	}
	return &lookup.Cached{Source: client, Cache: cache, Logger: o.log()}, cache.Close, nil
}
