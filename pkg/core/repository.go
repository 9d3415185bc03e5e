package core

import "context"

// Repository defines the contract for reading and writing vault documents.
// Adhering to this interface keeps the nutrition engine independent of the
// underlying storage mechanism.
type Repository interface {
	// Get retrieves a document by its ID. Missing documents return an error wrapping ErrNotFound.
	Get(ctx context.Context, id string) (Document, error)

	// Keys returns the IDs of every document selected by the repository, sorted.
	Keys(ctx context.Context) ([]string, error)

	// List returns all selected documents. Documents that fail to parse are skipped.
	List(ctx context.Context) ([]Document, error)

	// Save persists a document. It creates if not exists, or updates if it does.
	Save(ctx context.Context, doc Document) error

	// Delete removes a document by its ID.
	Delete(ctx context.Context, id string) error

	// Initialize ensures the underlying storage is ready.
	Initialize(ctx context.Context) error
}

// Watchable is implemented by repositories that can report changes.
type Watchable interface {
	// Watch emits events for documents matching pattern until ctx is cancelled.
	// The channel is closed when watching stops.
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}
