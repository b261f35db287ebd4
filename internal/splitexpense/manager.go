package splitexpense

import (
	"context"
	"sync"

	"github.com/expensyapp/expensy/internal/docstore"
	"github.com/expensyapp/expensy/internal/identity"
	"github.com/expensyapp/expensy/internal/ledger"
	"github.com/expensyapp/expensy/internal/mailer"
)

// Manager hands out one Store per authenticated user, creating it lazily on
// first use so subscriptions only run for users who are actually active.
type Manager struct {
	docs  docstore.Store
	books ledger.Ledger
	mail  mailer.Mailer
	opts  Options

	mu     sync.Mutex
	stores map[string]*Store
}

// NewManager creates a manager over shared backends.
func NewManager(docs docstore.Store, books ledger.Ledger, mail mailer.Mailer, opts Options) *Manager {
	return &Manager{
		docs:   docs,
		books:  books,
		mail:   mail,
		opts:   opts,
		stores: make(map[string]*Store),
	}
}

// For returns the user's store, starting one if none exists yet. The store's
// subscriptions outlive the request context.
func (m *Manager) For(user identity.User) (*Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stores[user.ID]; ok {
		return s, nil
	}

	s, err := NewStore(context.Background(), user, m.docs, m.books, m.mail, m.opts)
	if err != nil {
		return nil, err
	}
	m.stores[user.ID] = s
	return s, nil
}

// Close shuts down every active store.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, s := range m.stores {
		s.Close()
		delete(m.stores, id)
	}
}
