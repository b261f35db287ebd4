package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Repository handles ledger entry persistence in Postgres
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new ledger repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateEntry inserts a new expense entry into the ledger
func (r *Repository) CreateEntry(ctx context.Context, entry *Entry) (string, error) {
	query := `
		INSERT INTO expense_entries
			(id, user_id, amount, category, description, date, notes, receipt_image_url,
			 is_split, user_share, participant_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`

	id := uuid.NewString()
	err := r.db.QueryRowContext(ctx, query,
		id,
		entry.UserID,
		entry.Amount,
		entry.Category,
		entry.Description,
		entry.Date,
		entry.Notes,
		entry.ReceiptImageURL,
		entry.IsSplit,
		entry.UserShare,
		entry.ParticipantCount,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("failed to create ledger entry: %w", err)
	}

	entry.ID = id
	return id, nil
}

// GetEntryByID retrieves a ledger entry by its ID
func (r *Repository) GetEntryByID(ctx context.Context, id string) (*Entry, error) {
	query := `
		SELECT id, user_id, amount, category, description, date, notes, receipt_image_url,
		       is_split, user_share, participant_count, created_at
		FROM expense_entries
		WHERE id = $1
	`

	entry := &Entry{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Amount,
		&entry.Category,
		&entry.Description,
		&entry.Date,
		&entry.Notes,
		&entry.ReceiptImageURL,
		&entry.IsSplit,
		&entry.UserShare,
		&entry.ParticipantCount,
		&entry.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}

	return entry, nil
}
