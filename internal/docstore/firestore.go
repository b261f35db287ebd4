package docstore

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ownerField is the document field every owned collection carries.
const ownerField = "userId"

// FirestoreStore implements Store on top of Cloud Firestore.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestore wraps an initialized Firestore client.
func NewFirestore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

// Create adds a document and returns the Firestore-assigned id.
func (s *FirestoreStore) Create(ctx context.Context, collection string, doc interface{}) (string, error) {
	ref, _, err := s.client.Collection(collection).Add(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to create document in %s: %w", collection, err)
	}
	return ref.ID, nil
}

// Get unmarshals the document into out, or returns ErrNotFound.
func (s *FirestoreStore) Get(ctx context.Context, collection, id string, out interface{}) error {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	if err := snap.DataTo(out); err != nil {
		return fmt.Errorf("failed to decode %s/%s: %w", collection, id, err)
	}
	return nil
}

// Update applies a partial top-level field update to an existing document.
func (s *FirestoreStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	updates := make([]firestore.Update, 0, len(fields))
	for path, value := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}

	_, err := s.client.Collection(collection).Doc(id).Update(ctx, updates)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	return nil
}

// Delete removes the document. Firestore treats deleting a missing document
// as success, matching the contract.
func (s *FirestoreStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// List reads the owner's documents in a collection once.
func (s *FirestoreStore) List(ctx context.Context, collection, ownerID string) ([]Snapshot, error) {
	docs := s.client.Collection(collection).Where(ownerField, "==", ownerID).Documents(ctx)
	defer docs.Stop()

	var snaps []Snapshot
	for {
		doc, err := docs.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", collection, err)
		}
		snaps = append(snaps, NewSnapshot(doc.Ref.ID, doc.DataTo))
	}
	return snaps, nil
}

// Subscribe streams owner-filtered collection snapshots to fn until cancelled.
func (s *FirestoreStore) Subscribe(ctx context.Context, collection, ownerID string, fn func([]Snapshot)) (CancelFunc, error) {
	subCtx, cancel := context.WithCancel(ctx)
	iter := s.client.Collection(collection).Where(ownerField, "==", ownerID).Snapshots(subCtx)

	go func() {
		defer iter.Stop()
		for {
			qs, err := iter.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					slog.Error("collection listener stopped", "collection", collection, "error", err)
				}
				return
			}

			var snaps []Snapshot
			docs := qs.Documents
			for {
				doc, err := docs.Next()
				if err == iterator.Done {
					break
				}
				if err != nil {
					slog.Error("failed to read collection snapshot", "collection", collection, "error", err)
					break
				}
				snaps = append(snaps, NewSnapshot(doc.Ref.ID, doc.DataTo))
			}
			fn(snaps)
		}
	}()

	return CancelFunc(cancel), nil
}
