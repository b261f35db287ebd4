package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used by tests and local development.
// Documents are held as JSON so reads never alias writer memory, and
// subscribers are notified synchronously on every mutation.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]map[string]json.RawMessage
	subscribers []*memorySubscriber
	nextSub     int
}

type memorySubscriber struct {
	id         int
	collection string
	ownerID    string
	fn         func([]Snapshot)
	cancelled  bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]json.RawMessage)}
}

func (s *MemoryStore) Create(ctx context.Context, collection string, doc interface{}) (string, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}

	id := uuid.NewString()
	s.mu.Lock()
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]json.RawMessage)
	}
	s.collections[collection][id] = raw
	s.mu.Unlock()

	s.notify(collection)
	return id, nil
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string, out interface{}) error {
	s.mu.Lock()
	raw, ok := s.collections[collection][id]
	s.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(raw, out)
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	s.mu.Lock()
	raw, ok := s.collections[collection][id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to decode stored document: %w", err)
	}
	for k, v := range fields {
		// Round-trip through JSON so stored values never alias caller memory.
		encoded, err := json.Marshal(v)
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("failed to encode field %s: %w", k, err)
		}
		var plain interface{}
		if err := json.Unmarshal(encoded, &plain); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("failed to decode field %s: %w", k, err)
		}
		doc[k] = plain
	}

	merged, err := json.Marshal(doc)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to encode document: %w", err)
	}
	s.collections[collection][id] = merged
	s.mu.Unlock()

	s.notify(collection)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	delete(s.collections[collection], id)
	s.mu.Unlock()

	s.notify(collection)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, collection, ownerID string) ([]Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(collection, ownerID), nil
}

func (s *MemoryStore) Subscribe(ctx context.Context, collection, ownerID string, fn func([]Snapshot)) (CancelFunc, error) {
	s.mu.Lock()
	s.nextSub++
	sub := &memorySubscriber{
		id:         s.nextSub,
		collection: collection,
		ownerID:    ownerID,
		fn:         fn,
	}
	s.subscribers = append(s.subscribers, sub)
	snaps := s.snapshotLocked(collection, ownerID)
	s.mu.Unlock()

	// Initial delivery, mirroring the remote store's listener behavior.
	fn(snaps)

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		sub.cancelled = true
	}
	return cancel, nil
}

// notify delivers fresh snapshots to every live subscriber of a collection.
// Called without the lock held so callbacks may reenter the store.
func (s *MemoryStore) notify(collection string) {
	s.mu.Lock()
	type delivery struct {
		fn    func([]Snapshot)
		snaps []Snapshot
	}
	var deliveries []delivery
	for _, sub := range s.subscribers {
		if sub.cancelled || sub.collection != collection {
			continue
		}
		deliveries = append(deliveries, delivery{sub.fn, s.snapshotLocked(collection, sub.ownerID)})
	}
	s.mu.Unlock()

	for _, d := range deliveries {
		d.fn(d.snaps)
	}
}

func (s *MemoryStore) snapshotLocked(collection, ownerID string) []Snapshot {
	var snaps []Snapshot
	for id, raw := range s.collections[collection] {
		var owned struct {
			UserID string `json:"userId"`
		}
		if err := json.Unmarshal(raw, &owned); err != nil || owned.UserID != ownerID {
			continue
		}
		data := raw
		snaps = append(snaps, NewSnapshot(id, func(v interface{}) error {
			return json.Unmarshal(data, v)
		}))
	}
	return snaps
}
