// Package mailer defines the notification-dispatch contract.
//
// The core never composes wire-level email itself; it asks the dispatcher to
// deliver a templated message and records the outcome. Delivery failures are
// reported through Result, never through panics or propagated errors, so
// callers can treat a failed send as a recordable non-fatal event.
package mailer

import "context"

// Kind selects the message template.
type Kind string

const (
	// KindSplitInvite tells a participant a new split expense includes them.
	KindSplitInvite Kind = "split_invite"
	// KindPaymentReminder nudges a participant about an outstanding share.
	KindPaymentReminder Kind = "payment_reminder"
)

// Params carries the template values for one message.
type Params struct {
	ToName          string
	CreatorName     string
	CreatorEmail    string
	Description     string
	Category        string
	Date            string
	TotalAmount     float64
	ShareAmount     float64
	ReminderMessage string
}

// Result reports the outcome of a dispatch attempt.
type Result struct {
	Success bool
	Message string
}

// Mailer dispatches notification messages to participants.
type Mailer interface {
	Send(ctx context.Context, recipient string, kind Kind, p Params) Result
}
