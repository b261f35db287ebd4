package splitexpense

import (
	"fmt"
	"strings"

	"github.com/expensyapp/expensy/internal/splitexpense/share"
)

// ParticipantRequest is one participant in a split creation request
type ParticipantRequest struct {
	Name            string   `json:"name" validate:"required,min=1,max=100"`
	Email           string   `json:"email,omitempty" validate:"omitempty,email"`
	SharePercentage *float64 `json:"sharePercentage,omitempty"`
	ShareAmount     *float64 `json:"shareAmount,omitempty"`
}

// CreateSplitRequest represents the request to create a split expense
type CreateSplitRequest struct {
	Amount          float64              `json:"amount" validate:"required,gt=0"`
	Category        string               `json:"category,omitempty"`
	Description     string               `json:"description,omitempty" validate:"omitempty,max=255"`
	Date            string               `json:"date,omitempty"`
	Notes           string               `json:"notes,omitempty" validate:"omitempty,max=500"`
	ReceiptImageURL string               `json:"receiptImageUrl,omitempty"`
	SplitMethod     string               `json:"splitMethod" validate:"required,oneof=equal percentage amount"`
	Participants    []ParticipantRequest `json:"participants" validate:"required,min=1"`
}

// UpdatePaymentStatusRequest represents a participant payment transition
type UpdatePaymentStatusRequest struct {
	Status        string `json:"status" validate:"required,oneof=unpaid paid declined"`
	PaymentMethod string `json:"paymentMethod,omitempty" validate:"omitempty,max=50"`
}

// AddContactRequest represents the request to add a contact
type AddContactRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

// ToExpenseData extracts the base expense fields from the request
func (r *CreateSplitRequest) ToExpenseData() ExpenseData {
	return ExpenseData{
		Amount:          r.Amount,
		Category:        r.Category,
		Description:     r.Description,
		Date:            r.Date,
		Notes:           r.Notes,
		ReceiptImageURL: r.ReceiptImageURL,
	}
}

// ToParticipants allocates shares per the requested split method and builds
// the participant list. Allocation validation errors come back verbatim so
// handlers can surface them to the client.
func (r *CreateSplitRequest) ToParticipants(factory *share.Factory) ([]Participant, error) {
	strategy, err := factory.CreateFromString(r.SplitMethod)
	if err != nil {
		return nil, err
	}

	inputs := make([]share.Input, len(r.Participants))
	for i, p := range r.Participants {
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("participant %d: name is required", i+1)
		}
		inputs[i] = share.Input{
			Percentage: p.SharePercentage,
			Amount:     p.ShareAmount,
		}
	}

	outputs, err := strategy.Calculate(r.Amount, inputs)
	if err != nil {
		return nil, err
	}

	participants := make([]Participant, len(r.Participants))
	for i, p := range r.Participants {
		pct := outputs[i].Percentage
		amount := outputs[i].Amount
		participants[i] = NewParticipant(strings.TrimSpace(p.Name), strings.TrimSpace(p.Email), &pct, &amount)
	}
	return participants, nil
}
