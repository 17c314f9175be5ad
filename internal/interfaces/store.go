package interfaces

import (
	"context"
	"encoding/json"
)

// DocStore is a document store keyed by (collection, key). Query supports
// equality filters only; there are no cross-document transactions.
type DocStore interface {
	// Get reads the document at key into out. Returns docstore.ErrNotFound
	// if the document does not exist.
	Get(ctx context.Context, collection, key string, out any) error

	// Query returns the raw documents in a collection matching every
	// equality filter. An empty filter map returns the whole collection.
	Query(ctx context.Context, collection string, filters map[string]any) ([]json.RawMessage, error)

	// Upsert writes doc at key, replacing any existing document.
	Upsert(ctx context.Context, collection, key string, doc any) error

	// Delete removes the document at key. Deleting a missing key is a no-op.
	Delete(ctx context.Context, collection, key string) error

	// Close releases the underlying connection, if any.
	Close() error
}
