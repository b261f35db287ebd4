package ledger

import (
	"context"
	"time"
)

// Entry represents a single expense entry in the owner's ledger.
// A split expense is materialized as one entry owned by the creator, with
// the split bookkeeping fields populated so budget tracking can attribute
// only the creator's personal share.
type Entry struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	Amount           float64   `json:"amount"`
	Category         string    `json:"category"`
	Description      string    `json:"description"`
	Date             string    `json:"date"`
	Notes            string    `json:"notes,omitempty"`
	ReceiptImageURL  *string   `json:"receipt_image_url,omitempty"`
	IsSplit          bool      `json:"is_split"`
	UserShare        float64   `json:"user_share"`
	ParticipantCount int       `json:"participant_count"`
	CreatedAt        time.Time `json:"created_at"`
}

// Ledger is the expense-ledger contract consumed by the split-expense store.
type Ledger interface {
	// CreateEntry persists a new entry and returns its assigned id.
	CreateEntry(ctx context.Context, entry *Entry) (string, error)

	// GetEntryByID retrieves an entry, returning nil (no error) when absent.
	GetEntryByID(ctx context.Context, id string) (*Entry, error)
}
