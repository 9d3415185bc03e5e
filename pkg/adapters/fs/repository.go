package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/larder/pkg/core"
)

// Repository implements core.Repository over a directory of notes.
type Repository struct {
	Path        string
	config      Config
	serializers map[string]Serializer

	mu            sync.RWMutex
	watcherActive bool
	lastEvent     *time.Time
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path      string
	MustExist bool
	ReadOnly  bool
	Logger    *slog.Logger
	SystemDir string // e.g. ".larder"
	// EventBuffer is the capacity of the channel returned by Watch. Zero means 100.
	EventBuffer int
	// ErrorHandler receives runtime watcher failures in addition to the log.
	ErrorHandler func(error)
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	if config.SystemDir == "" {
		config.SystemDir = ".larder"
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	if config.EventBuffer <= 0 {
		config.EventBuffer = 100
	}
	return &Repository{
		Path:        config.Path,
		config:      config,
		serializers: DefaultSerializers(),
	}
}

// Initialize checks (or creates) the vault directory.
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.MustExist || r.config.ReadOnly {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("vault path does not exist: %s", r.Path)
		}
		if err != nil {
			return fmt.Errorf("failed to stat vault: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("vault path is not a directory: %s", r.Path)
		}
		return nil
	}

	if err := os.MkdirAll(r.Path, 0755); err != nil {
		return fmt.Errorf("failed to create vault directory: %w", err)
	}
	return nil
}

// Get retrieves a document from the filesystem.
// IDs without an extension refer to markdown notes.
func (r *Repository) Get(ctx context.Context, id string) (core.Document, error) {
	if id == "" {
		return core.Document{}, errors.New("document ID cannot be empty")
	}
	filename, ext := r.filename(id)

	s, ok := r.serializers[ext]
	if !ok {
		return core.Document{}, fmt.Errorf("unsupported document type %q", ext)
	}

	f, err := os.Open(filepath.Join(r.Path, filepath.FromSlash(filename)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return core.Document{}, fmt.Errorf("%s: %w", id, core.ErrNotFound)
		}
		return core.Document{}, err
	}
	defer f.Close()

	doc, err := s.Parse(f)
	if err != nil {
		return core.Document{}, fmt.Errorf("failed to parse document %s: %w", id, err)
	}
	doc.ID = id
	return *doc, nil
}

// Keys walks the vault and returns the IDs of every supported document.
func (r *Repository) Keys(ctx context.Context) ([]string, error) {
	var keys []string

	err := filepath.WalkDir(r.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if path != r.Path && r.skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(r.Path, path)
		if err != nil {
			return err
		}
		id, ok := r.idFor(filepath.ToSlash(rel))
		if !ok {
			return nil
		}
		keys = append(keys, id)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(keys)
	return keys, nil
}

// List returns every document. Unparseable documents are skipped and logged.
func (r *Repository) List(ctx context.Context) ([]core.Document, error) {
	keys, err := r.Keys(ctx)
	if err != nil {
		return nil, err
	}

	docs := make([]core.Document, 0, len(keys))
	for _, id := range keys {
		doc, err := r.Get(ctx, id)
		if err != nil {
			r.config.Logger.Warn("skipping unreadable document", "id", id, "error", err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Save serializes a document according to its extension and writes it atomically.
func (r *Repository) Save(ctx context.Context, doc core.Document) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	if doc.ID == "" {
		return errors.New("document has no ID")
	}

	filename, ext := r.filename(doc.ID)
	s, ok := r.serializers[ext]
	if !ok {
		return fmt.Errorf("unsupported document type %q", ext)
	}

	fullPath := filepath.Join(r.Path, filepath.FromSlash(filename))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	data, err := s.Serialize(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}

	if err := writeFileAtomic(fullPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	r.config.Logger.Debug("document saved", "id", doc.ID, "path", fullPath)
	return nil
}

// Delete removes a document.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	filename, _ := r.filename(id)
	err := os.Remove(filepath.Join(r.Path, filepath.FromSlash(filename)))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

// filename maps an ID to its relative file path and extension.
func (r *Repository) filename(id string) (string, string) {
	ext := filepath.Ext(id)
	if _, ok := r.serializers[ext]; ok {
		return id, ext
	}
	return id + ".md", ".md"
}

// idFor maps a relative slash path to a document ID, reporting whether the
// file is a supported document.
func (r *Repository) idFor(rel string) (string, bool) {
	base := filepath.Base(rel)
	if strings.HasPrefix(base, TempFilePrefix) || strings.HasPrefix(base, ".") {
		return "", false
	}
	ext := filepath.Ext(rel)
	if _, ok := r.serializers[ext]; !ok {
		return "", false
	}
	for _, part := range strings.Split(rel, "/") {
		if part == r.config.SystemDir || part == ".git" {
			return "", false
		}
	}
	if ext == ".md" {
		return strings.TrimSuffix(rel, ext), true
	}
	return rel, true
}

func (r *Repository) skipDir(name string) bool {
	return name == ".git" || name == r.config.SystemDir || strings.HasPrefix(name, ".")
}
