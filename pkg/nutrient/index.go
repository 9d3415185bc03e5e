package nutrient

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/introspection"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/larder/pkg/core"
)

// Source is the external item set the index is built from.
type Source interface {
	Keys(ctx context.Context) ([]string, error)
	Get(ctx context.Context, id string) (core.Document, error)
}

// Index holds the nutrient records of the vault, keyed by display name.
// byName and keyByName always share the same key set; nameByKey is the
// reverse mapping used to drop stale names when a note is renamed.
type Index struct {
	logger *slog.Logger

	mu          sync.RWMutex
	byName      map[string]Record
	keyByName   map[string]string
	nameByKey   map[string]string
	refreshes   int
	lastRefresh time.Time
}

// NewIndex creates an empty index.
func NewIndex(logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Index{
		logger:    logger,
		byName:    make(map[string]Record),
		keyByName: make(map[string]string),
		nameByKey: make(map[string]string),
	}
}

// RefreshConcurrency bounds the number of items read in parallel by Refresh.
const RefreshConcurrency = 8

// Refresh clears the index and rebuilds it from every item of src.
// An item that fails to read is logged and skipped; only a failure to list
// the items aborts, leaving the index empty. When two items share a display
// name, the one listed last wins.
func (ix *Index) Refresh(ctx context.Context, src Source) error {
	byName := make(map[string]Record)
	keyByName := make(map[string]string)
	nameByKey := make(map[string]string)

	keys, err := src.Keys(ctx)
	if err != nil {
		ix.swap(byName, keyByName, nameByKey)
		ix.logger.Error("nutrient index refresh failed", "error", err)
		return fmt.Errorf("list nutrient sources: %w", err)
	}

	docs := make([]*core.Document, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(RefreshConcurrency)
	for i, key := range keys {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			doc, err := src.Get(gctx, key)
			if err != nil {
				ix.logger.Warn("failed to read nutrient source", "id", key, "error", err)
				return nil
			}
			docs[i] = &doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("read nutrient sources: %w", err)
	}

	for _, doc := range docs {
		if doc == nil {
			continue
		}
		rec := FromDocument(*doc)
		if owner, ok := keyByName[rec.Name]; ok {
			delete(nameByKey, owner)
		}
		byName[rec.Name] = rec
		keyByName[rec.Name] = rec.StorageKey
		nameByKey[rec.StorageKey] = rec.Name
	}

	ix.swap(byName, keyByName, nameByKey)
	ix.logger.Debug("nutrient index refreshed", "records", len(byName))
	return nil
}

func (ix *Index) swap(byName map[string]Record, keyByName, nameByKey map[string]string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.byName = byName
	ix.keyByName = keyByName
	ix.nameByKey = nameByKey
	ix.refreshes++
	ix.lastRefresh = time.Now()
}

// Upsert indexes the record read from doc. If the note was previously indexed
// under another display name, that name is removed first.
func (ix *Index) Upsert(doc core.Document) Record {
	rec := FromDocument(doc)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if prev, ok := ix.nameByKey[rec.StorageKey]; ok && prev != rec.Name {
		ix.dropName(prev, rec.StorageKey)
	}
	if owner, ok := ix.keyByName[rec.Name]; ok && owner != rec.StorageKey {
		// Another note claimed this name earlier; the latest write wins.
		delete(ix.nameByKey, owner)
	}
	ix.byName[rec.Name] = rec
	ix.keyByName[rec.Name] = rec.StorageKey
	ix.nameByKey[rec.StorageKey] = rec.Name
	return rec
}

// UpsertFrom re-reads one item from src and indexes it. A missing item is removed.
func (ix *Index) UpsertFrom(ctx context.Context, src Source, key string) error {
	doc, err := src.Get(ctx, key)
	if err != nil {
		ix.logger.Warn("failed to read nutrient source", "id", key, "error", err)
		if isNotFound(err) {
			ix.Remove(key)
		}
		return err
	}
	ix.Upsert(doc)
	return nil
}

// Remove deletes every index entry of a retired item.
func (ix *Index) Remove(key string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	name, ok := ix.nameByKey[key]
	if !ok {
		return
	}
	delete(ix.nameByKey, key)
	ix.dropName(name, key)
}

// dropName removes name if it still belongs to key. Callers hold mu.
func (ix *Index) dropName(name, key string) {
	if ix.keyByName[name] != key {
		return
	}
	delete(ix.byName, name)
	delete(ix.keyByName, name)
}

// LookupByName returns the record with exactly this display name.
func (ix *Index) LookupByName(name string) (Record, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	rec, ok := ix.byName[name]
	return rec, ok
}

// StorageKeyForName returns the note ID behind a display name.
func (ix *Index) StorageKeyForName(name string) (string, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	key, ok := ix.keyByName[name]
	return key, ok
}

// NamesSorted returns every display name in lexicographic order.
func (ix *Index) NamesSorted() []string {
	ix.mu.RLock()
	names := make([]string, 0, len(ix.byName))
	for name := range ix.byName {
		names = append(names, name)
	}
	ix.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Len returns the number of indexed records.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.byName)
}

// LookupByKey returns the record read from the note with this ID. A bare
// basename matches a note in any folder; the first ID in sorted order wins.
func (ix *Index) LookupByKey(key string) (Record, bool) {
	key = strings.TrimSuffix(key, ".md")

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if rec, ok := ix.recordForKey(key); ok {
		return rec, true
	}
	keys := make([]string, 0, len(ix.nameByKey))
	for k := range ix.nameByKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if path.Base(k) == key {
			return ix.recordForKey(k)
		}
	}
	return Record{}, false
}

// recordForKey follows nameByKey into byName. Callers hold mu.
func (ix *Index) recordForKey(key string) (Record, bool) {
	name, ok := ix.nameByKey[key]
	if !ok || ix.keyByName[name] != key {
		return Record{}, false
	}
	rec, ok := ix.byName[name]
	return rec, ok
}

// Resolve finds the record a link reference points to. The exact display name
// wins; then the note ID; then a case-insensitive name match.
// Misses return an error wrapping core.ErrNotFound.
func (ix *Index) Resolve(ctx context.Context, ref string) (Record, error) {
	ref = strings.TrimSpace(ref)
	if rec, ok := ix.LookupByName(ref); ok {
		return rec, nil
	}
	if rec, ok := ix.LookupByKey(ref); ok {
		return rec, nil
	}
	for _, name := range ix.NamesSorted() {
		if strings.EqualFold(name, ref) {
			if rec, ok := ix.LookupByName(name); ok {
				return rec, nil
			}
		}
	}
	return Record{}, fmt.Errorf("nutrient %q: %w", ref, core.ErrNotFound)
}

// IndexState exposes internal state for observability.
type IndexState struct {
	Records     int       `json:"records"`
	Refreshes   int       `json:"refreshes"`
	LastRefresh time.Time `json:"last_refresh"`
}

// State implements introspection.Introspectable.
func (ix *Index) State() any {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return IndexState{
		Records:     len(ix.byName),
		Refreshes:   ix.refreshes,
		LastRefresh: ix.lastRefresh,
	}
}

// ComponentType implements introspection.Component.
func (ix *Index) ComponentType() string {
	return "nutrient-index"
}

var _ introspection.Introspectable = (*Index)(nil)
var _ introspection.Component = (*Index)(nil)
