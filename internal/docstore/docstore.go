// Package docstore abstracts the remote document database.
//
// The core only needs create/read/update/delete of a document by id and an
// owner-filtered live view of a collection; everything else about the remote
// store (wire format, auth, retries) stays behind this interface.
package docstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a document id does not exist in a collection.
var ErrNotFound = errors.New("document not found")

// Snapshot is one document in a collection snapshot.
type Snapshot struct {
	ID     string
	decode func(v interface{}) error
}

// NewSnapshot builds a snapshot around a decode function supplied by the
// backing implementation.
func NewSnapshot(id string, decode func(v interface{}) error) Snapshot {
	return Snapshot{ID: id, decode: decode}
}

// DataTo unmarshals the document payload into v.
func (s Snapshot) DataTo(v interface{}) error {
	if s.decode == nil {
		return errors.New("snapshot has no payload")
	}
	return s.decode(v)
}

// CancelFunc stops a subscription.
type CancelFunc func()

// Store is the document-store contract the orchestration layer depends on.
//
// Subscribe delivers the full owner-filtered collection on every change until
// cancelled; deliveries may lag writes issued by the same client, so readers
// must tolerate a brief window where their own write is not yet visible.
type Store interface {
	// Create adds a document and returns its store-assigned id.
	Create(ctx context.Context, collection string, doc interface{}) (string, error)

	// Get unmarshals the document with the given id into out.
	// Returns ErrNotFound if the id is absent.
	Get(ctx context.Context, collection, id string, out interface{}) error

	// Update applies a partial top-level field update to an existing document.
	// Returns ErrNotFound if the id is absent.
	Update(ctx context.Context, collection, id string, fields map[string]interface{}) error

	// Delete removes the document with the given id.
	Delete(ctx context.Context, collection, id string) error

	// List reads the current owner-filtered contents of a collection once.
	List(ctx context.Context, collection, ownerID string) ([]Snapshot, error)

	// Subscribe invokes fn with the current snapshot of every document in the
	// collection owned by ownerID, once immediately and again on every change.
	Subscribe(ctx context.Context, collection, ownerID string, fn func([]Snapshot)) (CancelFunc, error)
}
