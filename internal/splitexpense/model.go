package splitexpense

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/expensyapp/expensy/internal/ledger"
)

// ParticipantStatus represents one participant's payment state
type ParticipantStatus string

const (
	ParticipantUnpaid   ParticipantStatus = "unpaid"
	ParticipantPaid     ParticipantStatus = "paid"
	ParticipantDeclined ParticipantStatus = "declined"
)

// SplitStatus is the aggregate settlement state of a split expense.
// It is always derived from the participants, never stored independently.
type SplitStatus string

const (
	SplitPending SplitStatus = "pending"
	SplitPartial SplitStatus = "partial"
	SplitSettled SplitStatus = "settled"
)

// Participant is one person assigned a share of a split expense
type Participant struct {
	ID              string            `json:"id" firestore:"id"`
	Name            string            `json:"name" firestore:"name"`
	Email           string            `json:"email,omitempty" firestore:"email"`
	SharePercentage *float64          `json:"sharePercentage" firestore:"sharePercentage"`
	ShareAmount     *float64          `json:"shareAmount" firestore:"shareAmount"`
	Status          ParticipantStatus `json:"status" firestore:"status"`
	PaymentMethod   string            `json:"paymentMethod,omitempty" firestore:"paymentMethod"`
	PaidDate        *time.Time        `json:"paidDate,omitempty" firestore:"paidDate"`
}

// NewParticipant creates a participant with a fresh stable id and the
// initial unpaid status. Shares may be supplied up front or left nil for
// allocation to fill in.
func NewParticipant(name, email string, sharePercentage, shareAmount *float64) Participant {
	return Participant{
		ID:              fmt.Sprintf("p_%s", uuid.NewString()),
		Name:            name,
		Email:           email,
		SharePercentage: sharePercentage,
		ShareAmount:     shareAmount,
		Status:          ParticipantUnpaid,
	}
}

// SplitExpense is a shared expense divided among participants, tracked
// separately from the underlying ledger entry it references
type SplitExpense struct {
	ID              string        `json:"id" firestore:"-"`
	ExpenseID       string        `json:"expenseId" firestore:"expenseId"`
	TotalAmount     float64       `json:"totalAmount" firestore:"totalAmount"`
	Category        string        `json:"category" firestore:"category"`
	Description     string        `json:"description" firestore:"description"`
	Date            string        `json:"date" firestore:"date"`
	Notes           string        `json:"notes,omitempty" firestore:"notes"`
	ReceiptImageURL string        `json:"receiptImageUrl,omitempty" firestore:"receiptImageUrl"`
	Participants    []Participant `json:"participants" firestore:"participants"`
	Status          SplitStatus   `json:"status" firestore:"status"`
	UserID          string        `json:"userId" firestore:"userId"`
	CreatedAt       time.Time     `json:"createdAt" firestore:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt" firestore:"updatedAt"`
}

// Contact is a remembered participant identity reusable across future splits
type Contact struct {
	ID        string    `json:"id" firestore:"-"`
	Name      string    `json:"name" firestore:"name"`
	Email     string    `json:"email,omitempty" firestore:"email"`
	UserID    string    `json:"userId" firestore:"userId"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}

// NewSplitExpense constructs a split expense from its base ledger entry and
// participant list. Participants missing a share percentage get an equal
// share; participants missing only the amount get it derived from their
// percentage. Values already present are never overwritten, so pre-allocated
// input (from the share package) passes through untouched.
func NewSplitExpense(base *ledger.Entry, participants []Participant) *SplitExpense {
	calculated := make([]Participant, len(participants))
	for i, p := range participants {
		if p.SharePercentage == nil {
			equal := 100 / float64(len(participants))
			amount := base.Amount * equal / 100
			p.SharePercentage = &equal
			p.ShareAmount = &amount
		} else if p.ShareAmount == nil {
			amount := base.Amount * *p.SharePercentage / 100
			p.ShareAmount = &amount
		}
		calculated[i] = p
	}

	return &SplitExpense{
		ID:              uuid.NewString(),
		ExpenseID:       base.ID,
		TotalAmount:     base.Amount,
		Category:        base.Category,
		Description:     base.Description,
		Date:            base.Date,
		Notes:           base.Notes,
		ReceiptImageURL: stringOrEmpty(base.ReceiptImageURL),
		Participants:    calculated,
		Status:          SplitPending,
		UserID:          base.UserID,
		CreatedAt:       time.Now().UTC(),
	}
}

// Summary describes the settlement progress of a split expense
type Summary struct {
	TotalAmount      float64     `json:"totalAmount"`
	PaidAmount       float64     `json:"paidAmount"`
	PendingAmount    float64     `json:"pendingAmount"`
	ParticipantCount int         `json:"participantCount"`
	PaidCount        int         `json:"paidCount"`
	Status           SplitStatus `json:"status"`
}

// SplitSummary summarizes a split expense. It degrades gracefully: a nil
// split or missing participant list yields a zeroed pending summary instead
// of an error, because view code renders summaries for transiently
// inconsistent data during live updates.
func SplitSummary(se *SplitExpense) Summary {
	if se == nil || len(se.Participants) == 0 {
		return Summary{Status: SplitPending}
	}

	summary := Summary{
		TotalAmount:      se.TotalAmount,
		ParticipantCount: len(se.Participants),
		Status:           CalculateStatus(se),
	}
	for _, p := range se.Participants {
		amount := 0.0
		if p.ShareAmount != nil {
			amount = *p.ShareAmount
		}
		if p.Status == ParticipantPaid {
			summary.PaidAmount += amount
			summary.PaidCount++
		} else {
			summary.PendingAmount += amount
		}
	}

	return summary
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
