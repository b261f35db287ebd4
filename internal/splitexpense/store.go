package splitexpense

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/expensyapp/expensy/internal/docstore"
	"github.com/expensyapp/expensy/internal/identity"
	"github.com/expensyapp/expensy/internal/ledger"
	"github.com/expensyapp/expensy/internal/mailer"
)

const (
	collectionSplits       = "splitExpenses"
	collectionContacts     = "contacts"
	collectionReminderLogs = "reminderLogs"
)

// DispatchState tracks one participant's notification through the send queue
type DispatchState string

const (
	DispatchSending DispatchState = "sending"
	DispatchSent    DispatchState = "sent"
	DispatchError   DispatchState = "error"
)

// DispatchStatus is the observable outcome of a notification dispatch,
// keyed by participant id. Entries auto-expire after a fixed window; an
// expired entry says nothing about delivery.
type DispatchStatus struct {
	State DispatchState `json:"state"`
	Error string        `json:"error,omitempty"`
}

// Options tunes the notification queue and status-map retention
type Options struct {
	// SendDelay is the pause between sequential notification sends,
	// respecting the dispatcher's rate limits.
	SendDelay time.Duration
	// StatusTTL is how long dispatch statuses stay observable after the
	// queue settles.
	StatusTTL time.Duration
}

func (o Options) withDefaults() Options {
	if o.SendDelay <= 0 {
		o.SendDelay = time.Second
	}
	if o.StatusTTL <= 0 {
		o.StatusTTL = 10 * time.Second
	}
	return o
}

// ExpenseData describes the expense being split, as entered by the creator
type ExpenseData struct {
	Amount          float64
	Category        string
	Description     string
	Date            string
	Notes           string
	ReceiptImageURL string
}

// Store orchestrates split-expense workflows for one authenticated user.
// It is the only component that talks to the document store, the expense
// ledger, and the notification dispatcher; the in-memory split and contact
// views are fed by live collection subscriptions, so a just-issued write may
// take a moment to appear.
//
// Every mutating operation converts persistence failures into a false/nil
// return after logging; callers never see transport errors.
type Store struct {
	user  identity.User
	docs  docstore.Store
	books ledger.Ledger
	mail  mailer.Mailer
	opts  Options

	mu       sync.RWMutex
	splits   []SplitExpense
	contacts []Contact
	dispatch map[string]DispatchStatus
	timers   map[string]*time.Timer

	cancels []docstore.CancelFunc
}

// NewStore creates a store for the given user and starts its live
// subscriptions. Close must be called to release them.
func NewStore(ctx context.Context, user identity.User, docs docstore.Store, books ledger.Ledger, mail mailer.Mailer, opts Options) (*Store, error) {
	if !user.Valid() {
		return nil, errors.New("authenticated user required")
	}

	s := &Store{
		user:     user,
		docs:     docs,
		books:    books,
		mail:     mail,
		opts:     opts.withDefaults(),
		dispatch: make(map[string]DispatchStatus),
		timers:   make(map[string]*time.Timer),
	}

	cancelSplits, err := docs.Subscribe(ctx, collectionSplits, user.ID, s.onSplits)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to split expenses: %w", err)
	}
	s.cancels = append(s.cancels, cancelSplits)

	cancelContacts, err := docs.Subscribe(ctx, collectionContacts, user.ID, s.onContacts)
	if err != nil {
		cancelSplits()
		return nil, fmt.Errorf("failed to subscribe to contacts: %w", err)
	}
	s.cancels = append(s.cancels, cancelContacts)

	return s, nil
}

// Close stops the live subscriptions and any pending status-clear timers.
func (s *Store) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, timer := range s.timers {
		timer.Stop()
		delete(s.timers, key)
	}
}

func (s *Store) onSplits(snaps []docstore.Snapshot) {
	splits := make([]SplitExpense, 0, len(snaps))
	for _, snap := range snaps {
		var se SplitExpense
		if err := snap.DataTo(&se); err != nil {
			slog.Error("failed to decode split expense", "id", snap.ID, "error", err)
			continue
		}
		se.ID = snap.ID
		splits = append(splits, se)
	}
	sort.Slice(splits, func(i, j int) bool {
		return splits[i].CreatedAt.After(splits[j].CreatedAt)
	})

	s.mu.Lock()
	s.splits = splits
	s.mu.Unlock()
}

func (s *Store) onContacts(snaps []docstore.Snapshot) {
	contacts := make([]Contact, 0, len(snaps))
	for _, snap := range snaps {
		var c Contact
		if err := snap.DataTo(&c); err != nil {
			slog.Error("failed to decode contact", "id", snap.ID, "error", err)
			continue
		}
		c.ID = snap.ID
		contacts = append(contacts, c)
	}
	sort.Slice(contacts, func(i, j int) bool {
		return strings.ToLower(contacts[i].Name) < strings.ToLower(contacts[j].Name)
	})

	s.mu.Lock()
	s.contacts = contacts
	s.mu.Unlock()
}

// CreateNewSplitExpense runs the full creation workflow: the base ledger
// entry and the split record are created sequentially (each depends on the
// previous step's id), then contacts and notifications follow best-effort.
// A nil return means nothing was persisted; once the split record is
// durable, contact or notification failures no longer unwind it.
func (s *Store) CreateNewSplitExpense(ctx context.Context, data ExpenseData, participants []Participant) *SplitExpense {
	if data.Amount <= 0 {
		slog.Error("cannot create split expense: non-positive amount", "amount", data.Amount)
		return nil
	}
	if len(participants) == 0 {
		slog.Error("cannot create split expense: no participants")
		return nil
	}

	validated := make([]Participant, len(participants))
	for i, p := range participants {
		if strings.TrimSpace(p.Name) == "" {
			slog.Error("cannot create split expense: participant name required", "index", i)
			return nil
		}
		if (p.ShareAmount != nil && *p.ShareAmount < 0) || (p.SharePercentage != nil && *p.SharePercentage < 0) {
			slog.Error("cannot create split expense: negative share", "participant", p.Name)
			return nil
		}
		if strings.TrimSpace(p.ID) == "" {
			p.ID = fmt.Sprintf("p_%s", uuid.NewString())
		}
		p.ID = strings.TrimSpace(p.ID)
		if p.Status == "" {
			p.Status = ParticipantUnpaid
		}
		validated[i] = p
	}

	// The creator's own share is attributed to their ledger entry so budget
	// tracking only counts their personal cost.
	creator := validated[s.creatorIndex(validated)]
	userShare := data.Amount / float64(len(validated))
	if creator.ShareAmount != nil {
		userShare = *creator.ShareAmount
	}

	notes := data.Notes
	if notes == "" {
		notes = fmt.Sprintf("Split with %d people", len(validated))
	}
	entry := &ledger.Entry{
		UserID:           s.user.ID,
		Amount:           data.Amount,
		Category:         data.Category,
		Description:      data.Description,
		Date:             data.Date,
		Notes:            notes,
		IsSplit:          true,
		UserShare:        userShare,
		ParticipantCount: len(validated),
	}
	if data.ReceiptImageURL != "" {
		url := data.ReceiptImageURL
		entry.ReceiptImageURL = &url
	}

	if _, err := s.books.CreateEntry(ctx, entry); err != nil {
		slog.Error("failed to create base expense for split", "error", err)
		return nil
	}

	record := NewSplitExpense(entry, validated)

	docID, err := s.docs.Create(ctx, collectionSplits, record)
	if err != nil {
		slog.Error("failed to persist split expense", "expense_id", entry.ID, "error", err)
		return nil
	}
	record.ID = docID

	slog.Info("split expense created",
		"split_id", record.ID,
		"expense_id", record.ExpenseID,
		"participants", len(record.Participants),
	)

	// Best-effort from here on: the split and its base expense are durable.
	s.addMissingContacts(ctx, validated)

	recipients := s.notifiableParticipants(validated)
	if len(recipients) > 0 {
		go s.dispatchInvites(context.WithoutCancel(ctx), record, recipients)
	}

	return record
}

// creatorIndex finds the participant representing the authenticated user,
// by email match first, then exact name, falling back to the first entry.
func (s *Store) creatorIndex(participants []Participant) int {
	for i, p := range participants {
		if s.user.EmailMatches(p.Email) {
			return i
		}
	}
	for i, p := range participants {
		if s.user.Name != "" && p.Name == s.user.Name {
			return i
		}
	}
	return 0
}

// notifiableParticipants returns everyone except the creator who can
// actually receive a notification.
func (s *Store) notifiableParticipants(participants []Participant) []Participant {
	var out []Participant
	for _, p := range participants {
		if p.Email == "" || s.user.EmailMatches(p.Email) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// addMissingContacts records any participant email not yet in the contact
// directory. Failures are logged and skipped; split creation already
// succeeded.
func (s *Store) addMissingContacts(ctx context.Context, participants []Participant) {
	known := make(map[string]bool)
	s.mu.RLock()
	for _, c := range s.contacts {
		if c.Email != "" {
			known[normalizeEmail(c.Email)] = true
		}
	}
	s.mu.RUnlock()

	for _, p := range participants {
		if p.Email == "" {
			continue
		}
		key := normalizeEmail(p.Email)
		if known[key] {
			continue
		}

		contact := Contact{
			Name:      p.Name,
			Email:     strings.TrimSpace(p.Email),
			UserID:    s.user.ID,
			CreatedAt: time.Now().UTC(),
		}
		if _, err := s.docs.Create(ctx, collectionContacts, contact); err != nil {
			slog.Warn("failed to add contact", "name", p.Name, "error", err)
			continue
		}
		known[key] = true
	}
}

// dispatchInvites sends split notifications sequentially with a pause
// between sends, recording per-participant dispatch status as it goes.
func (s *Store) dispatchInvites(ctx context.Context, record *SplitExpense, recipients []Participant) {
	for i, p := range recipients {
		s.setDispatch(p.ID, DispatchStatus{State: DispatchSending})

		result := s.mail.Send(ctx, p.Email, mailer.KindSplitInvite, s.mailParams(record, p, ""))
		if result.Success {
			s.setDispatch(p.ID, DispatchStatus{State: DispatchSent})
		} else {
			slog.Warn("failed to send split notification", "participant", p.Name, "reason", result.Message)
			s.setDispatch(p.ID, DispatchStatus{State: DispatchError, Error: result.Message})
		}

		if i < len(recipients)-1 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.opts.SendDelay):
			}
		}
	}

	s.scheduleClearAll()
}

func (s *Store) mailParams(record *SplitExpense, p Participant, reminderMessage string) mailer.Params {
	share := 0.0
	if p.ShareAmount != nil {
		share = *p.ShareAmount
	}
	return mailer.Params{
		ToName:          p.Name,
		CreatorName:     s.user.Name,
		CreatorEmail:    s.user.Email,
		Description:     record.Description,
		Category:        record.Category,
		Date:            record.Date,
		TotalAmount:     record.TotalAmount,
		ShareAmount:     share,
		ReminderMessage: reminderMessage,
	}
}

// GetSplitExpense looks up a split by id in the subscription-fed view.
// Returns nil when absent; never an error.
func (s *Store) GetSplitExpense(id string) *SplitExpense {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.splits {
		if s.splits[i].ID == id {
			return copySplit(&s.splits[i])
		}
	}
	return nil
}

// AllSplitExpenses returns the current view of the user's splits.
func (s *Store) AllSplitExpenses() []SplitExpense {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]SplitExpense, len(s.splits))
	for i := range s.splits {
		out[i] = *copySplit(&s.splits[i])
	}
	return out
}

// UpdatePaymentStatus applies one participant's payment transition and
// persists the updated participant list together with the recomputed
// aggregate status as a single write. Returns false on any miss or
// persistence failure, never an error.
func (s *Store) UpdatePaymentStatus(ctx context.Context, splitID, participantID string, status ParticipantStatus, paymentMethod string) bool {
	splitID = strings.TrimSpace(splitID)
	participantID = strings.TrimSpace(participantID)
	if splitID == "" || participantID == "" {
		return false
	}
	if status != ParticipantUnpaid && status != ParticipantPaid && status != ParticipantDeclined {
		slog.Error("invalid payment status", "status", status)
		return false
	}

	se := s.GetSplitExpense(splitID)
	if se == nil {
		slog.Error("split expense not found", "split_id", splitID)
		return false
	}

	idx := findParticipant(se.Participants, participantID)
	if idx < 0 {
		slog.Error("participant not found in split", "split_id", splitID, "participant_id", participantID)
		return false
	}

	// Work on a copy so the cached record is never mutated in place.
	updated := make([]Participant, len(se.Participants))
	copy(updated, se.Participants)
	updated[idx] = ApplyStatus(updated[idx], status, paymentMethod)

	newStatus := CalculateStatus(&SplitExpense{Participants: updated})

	// The record may have been deleted out from under the cache.
	var current SplitExpense
	if err := s.docs.Get(ctx, collectionSplits, splitID, &current); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			slog.Error("split expense no longer exists", "split_id", splitID)
		} else {
			slog.Error("failed to verify split expense", "split_id", splitID, "error", err)
		}
		return false
	}

	err := s.docs.Update(ctx, collectionSplits, splitID, map[string]interface{}{
		"participants": updated,
		"status":       newStatus,
		"updatedAt":    time.Now().UTC(),
	})
	if err != nil {
		slog.Error("failed to update payment status", "split_id", splitID, "error", err)
		return false
	}

	slog.Info("payment status updated",
		"split_id", splitID,
		"participant_id", participantID,
		"participant_status", status,
		"split_status", newStatus,
	)
	return true
}

// SendPaymentReminder dispatches a reminder to one unpaid participant and
// records the outcome in the dispatch-status map. The returned bool reflects
// dispatch only, not whether the participant ever pays.
func (s *Store) SendPaymentReminder(ctx context.Context, splitID, participantID string) bool {
	splitID = strings.TrimSpace(splitID)
	participantID = strings.TrimSpace(participantID)
	if splitID == "" || participantID == "" {
		return false
	}

	se := s.GetSplitExpense(splitID)
	if se == nil {
		slog.Error("split expense not found", "split_id", splitID)
		return false
	}

	idx := findParticipant(se.Participants, participantID)
	if idx < 0 {
		slog.Error("participant not found in split", "split_id", splitID, "participant_id", participantID)
		return false
	}

	p := se.Participants[idx]
	if p.Email == "" {
		slog.Error("participant has no email address", "participant_id", participantID)
		return false
	}

	share := 0.0
	if p.ShareAmount != nil {
		share = *p.ShareAmount
	}
	message := fmt.Sprintf("This is a friendly reminder that your payment of $%.2f for %q is still pending.", share, se.Description)

	s.setDispatch(p.ID, DispatchStatus{State: DispatchSending})
	result := s.mail.Send(ctx, p.Email, mailer.KindPaymentReminder, s.mailParams(se, p, message))

	if result.Success {
		s.setDispatch(p.ID, DispatchStatus{State: DispatchSent})
		s.logReminder(ctx, splitID, participantID)
	} else {
		slog.Warn("failed to send payment reminder", "participant", p.Name, "reason", result.Message)
		s.setDispatch(p.ID, DispatchStatus{State: DispatchError, Error: result.Message})
	}

	s.scheduleClear(p.ID)
	return result.Success
}

type reminderLog struct {
	SplitExpenseID string    `json:"splitExpenseId" firestore:"splitExpenseId"`
	ParticipantID  string    `json:"participantId" firestore:"participantId"`
	Timestamp      time.Time `json:"timestamp" firestore:"timestamp"`
	UserID         string    `json:"userId" firestore:"userId"`
	Success        bool      `json:"success" firestore:"success"`
}

// logReminder records the reminder event for auditing; failures only log.
func (s *Store) logReminder(ctx context.Context, splitID, participantID string) {
	log := reminderLog{
		SplitExpenseID: splitID,
		ParticipantID:  participantID,
		Timestamp:      time.Now().UTC(),
		UserID:         s.user.ID,
		Success:        true,
	}
	if _, err := s.docs.Create(ctx, collectionReminderLogs, log); err != nil {
		slog.Warn("failed to log reminder", "split_id", splitID, "error", err)
	}
}

// DeleteSplitExpense removes the split record. The linked ledger entry and
// contacts are left alone.
func (s *Store) DeleteSplitExpense(ctx context.Context, id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}

	if err := s.docs.Delete(ctx, collectionSplits, id); err != nil {
		slog.Error("failed to delete split expense", "split_id", id, "error", err)
		return false
	}
	return true
}

// AddContact adds a contact, enforcing at most one contact per normalized
// email address. The check runs against the live cache first and then the
// remote store, covering the window where a concurrent add is not yet
// reflected locally.
func (s *Store) AddContact(ctx context.Context, name, email string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		slog.Error("cannot add contact: name required")
		return false
	}

	email = strings.TrimSpace(email)
	if email != "" {
		key := normalizeEmail(email)

		s.mu.RLock()
		for _, c := range s.contacts {
			if c.Email != "" && normalizeEmail(c.Email) == key {
				s.mu.RUnlock()
				slog.Info("contact already exists", "email", email)
				return false
			}
		}
		s.mu.RUnlock()

		snaps, err := s.docs.List(ctx, collectionContacts, s.user.ID)
		if err != nil {
			slog.Error("failed to check existing contacts", "error", err)
			return false
		}
		for _, snap := range snaps {
			var c Contact
			if err := snap.DataTo(&c); err != nil {
				continue
			}
			if c.Email != "" && normalizeEmail(c.Email) == key {
				slog.Info("contact already exists remotely", "email", email)
				return false
			}
		}
	}

	contact := Contact{
		Name:      name,
		Email:     email,
		UserID:    s.user.ID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.docs.Create(ctx, collectionContacts, contact); err != nil {
		slog.Error("failed to add contact", "name", name, "error", err)
		return false
	}
	return true
}

// DeleteContact removes a contact by id.
func (s *Store) DeleteContact(ctx context.Context, id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}

	if err := s.docs.Delete(ctx, collectionContacts, id); err != nil {
		slog.Error("failed to delete contact", "contact_id", id, "error", err)
		return false
	}
	return true
}

// AllContacts returns the current view of the user's contact directory.
func (s *Store) AllContacts() []Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Contact, len(s.contacts))
	copy(out, s.contacts)
	return out
}

// DispatchStatuses returns a copy of the notification status map.
func (s *Store) DispatchStatuses() map[string]DispatchStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]DispatchStatus, len(s.dispatch))
	for k, v := range s.dispatch {
		out[k] = v
	}
	return out
}

func (s *Store) setDispatch(participantID string, status DispatchStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatch[participantID] = status
}

// scheduleClear expires one participant's dispatch status after the TTL.
func (s *Store) scheduleClear(participantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[participantID]; ok {
		timer.Stop()
	}
	s.timers[participantID] = time.AfterFunc(s.opts.StatusTTL, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.dispatch, participantID)
		delete(s.timers, participantID)
	})
}

// scheduleClearAll expires the whole dispatch map once the queue drains.
func (s *Store) scheduleClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	const key = "__all__"
	if timer, ok := s.timers[key]; ok {
		timer.Stop()
	}
	s.timers[key] = time.AfterFunc(s.opts.StatusTTL, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.dispatch = make(map[string]DispatchStatus)
		delete(s.timers, key)
	})
}

func findParticipant(participants []Participant, id string) int {
	for i, p := range participants {
		if strings.TrimSpace(p.ID) == id {
			return i
		}
	}
	return -1
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func copySplit(se *SplitExpense) *SplitExpense {
	out := *se
	out.Participants = make([]Participant, len(se.Participants))
	copy(out.Participants, se.Participants)
	return &out
}
