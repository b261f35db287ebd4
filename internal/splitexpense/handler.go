package splitexpense

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/expensyapp/expensy/internal/splitexpense/share"
	"github.com/expensyapp/expensy/pkg/middleware"
	"github.com/expensyapp/expensy/pkg/response"
)

// Handler handles HTTP requests for split expense and contact operations
type Handler struct {
	manager *Manager
	factory *share.Factory
}

// NewHandler creates a new split expense handler
func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager, factory: share.NewFactory()}
}

// Routes returns the router for split expense endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/dispatch-status", h.DispatchStatus)
	r.Get("/{id}", h.GetByID)
	r.Get("/{id}/summary", h.GetSummary)
	r.Delete("/{id}", h.Delete)

	// Participant payment operations
	r.Put("/{id}/participants/{participantId}/status", h.UpdatePaymentStatus)
	r.Post("/{id}/participants/{participantId}/remind", h.SendReminder)

	return r
}

// ContactRoutes returns the router for contact directory endpoints
func (h *Handler) ContactRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListContacts)
	r.Post("/", h.AddContact)
	r.Delete("/{id}", h.DeleteContact)

	return r
}

func (h *Handler) store(w http.ResponseWriter, r *http.Request) *Store {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return nil
	}

	s, err := h.manager.For(user)
	if err != nil {
		response.InternalError(w, "Failed to open user session")
		return nil
	}
	return s
}

// Create handles POST /splits
// @Summary      Create a split expense
// @Description  Create a base expense and split it using the equal, percentage, or amount method
// @Tags         splits
// @Accept       json
// @Produce      json
// @Param        request body CreateSplitRequest true "Split creation request"
// @Success      201 {object} response.APIResponse{data=SplitExpense}
// @Failure      400 {object} response.APIResponse
// @Router       /splits [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	s := h.store(w, r)
	if s == nil {
		return
	}

	var req CreateSplitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if req.Amount <= 0 {
		response.BadRequest(w, "Amount must be positive")
		return
	}
	if len(req.Participants) == 0 {
		response.BadRequest(w, "At least one participant is required")
		return
	}

	participants, err := req.ToParticipants(h.factory)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	created := s.CreateNewSplitExpense(r.Context(), req.ToExpenseData(), participants)
	if created == nil {
		response.InternalError(w, "Failed to create split expense")
		return
	}

	response.JSON(w, http.StatusCreated, created)
}

// List handles GET /splits
// @Summary      List split expenses
// @Description  Get all of the authenticated user's split expenses, newest first
// @Tags         splits
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]SplitExpense}
// @Router       /splits [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	s := h.store(w, r)
	if s == nil {
		return
	}

	response.JSON(w, http.StatusOK, s.AllSplitExpenses())
}

// GetByID handles GET /splits/{id}
// @Summary      Get split expense by ID
// @Tags         splits
// @Produce      json
// @Param        id path string true "Split expense ID"
// @Success      200 {object} response.APIResponse{data=SplitExpense}
// @Failure      404 {object} response.APIResponse
// @Router       /splits/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	s := h.store(w, r)
	if s == nil {
		return
	}

	se := s.GetSplitExpense(chi.URLParam(r, "id"))
	if se == nil {
		response.NotFound(w, "Split expense not found")
		return
	}

	response.JSON(w, http.StatusOK, se)
}

// GetSummary handles GET /splits/{id}/summary
// @Summary      Get settlement summary
// @Description  Get paid and pending totals and the derived settlement status
// @Tags         splits
// @Produce      json
// @Param        id path string true "Split expense ID"
// @Success      200 {object} response.APIResponse{data=Summary}
// @Failure      404 {object} response.APIResponse
// @Router       /splits/{id}/summary [get]
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	s := h.store(w, r)
	if s == nil {
		return
	}

	se := s.GetSplitExpense(chi.URLParam(r, "id"))
	if se == nil {
		response.NotFound(w, "Split expense not found")
		return
	}

	response.JSON(w, http.StatusOK, SplitSummary(se))
}

// Delete handles DELETE /splits/{id}
// @Summary      Delete a split expense
// @Description  Delete the split record; the base expense and contacts are untouched
// @Tags         splits
// @Produce      json
// @Param        id path string true "Split expense ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /splits/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	s := h.store(w, r)
	if s == nil {
		return
	}

	id := chi.URLParam(r, "id")
	if s.GetSplitExpense(id) == nil {
		response.NotFound(w, "Split expense not found")
		return
	}

	if !s.DeleteSplitExpense(r.Context(), id) {
		response.InternalError(w, "Failed to delete split expense")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Split expense deleted successfully"})
}

// UpdatePaymentStatus handles PUT /splits/{id}/participants/{participantId}/status
// @Summary      Update participant payment status
// @Description  Mark a participant as unpaid, paid, or declined; the split's settlement status is recomputed
// @Tags         splits
// @Accept       json
// @Produce      json
// @Param        id path string true "Split expense ID"
// @Param        participantId path string true "Participant ID"
// @Param        request body UpdatePaymentStatusRequest true "Payment status update"
// @Success      200 {object} response.APIResponse{data=SplitExpense}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /splits/{id}/participants/{participantId}/status [put]
func (h *Handler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	s := h.store(w, r)
	if s == nil {
		return
	}

	var req UpdatePaymentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	status := ParticipantStatus(req.Status)
	if status != ParticipantUnpaid && status != ParticipantPaid && status != ParticipantDeclined {
		response.BadRequest(w, "Status must be unpaid, paid, or declined")
		return
	}

	id := chi.URLParam(r, "id")
	participantID := chi.URLParam(r, "participantId")
	if s.GetSplitExpense(id) == nil {
		response.NotFound(w, "Split expense not found")
		return
	}

	if !s.UpdatePaymentStatus(r.Context(), id, participantID, status, req.PaymentMethod) {
		response.NotFound(w, "Participant not found in split expense")
		return
	}

	// Return the pre-update view with the change applied locally; the
	// subscription view may not have caught up yet.
	se := s.GetSplitExpense(id)
	if se != nil {
		for i := range se.Participants {
			if se.Participants[i].ID == participantID {
				se.Participants[i] = ApplyStatus(se.Participants[i], status, req.PaymentMethod)
			}
		}
		se.Status = CalculateStatus(se)
	}
	response.JSON(w, http.StatusOK, se)
}

// SendReminder handles POST /splits/{id}/participants/{participantId}/remind
// @Summary      Send a payment reminder
// @Description  Email a payment reminder to one participant
// @Tags         splits
// @Produce      json
// @Param        id path string true "Split expense ID"
// @Param        participantId path string true "Participant ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /splits/{id}/participants/{participantId}/remind [post]
func (h *Handler) SendReminder(w http.ResponseWriter, r *http.Request) {
	s := h.store(w, r)
	if s == nil {
		return
	}

	id := chi.URLParam(r, "id")
	if s.GetSplitExpense(id) == nil {
		response.NotFound(w, "Split expense not found")
		return
	}

	if !s.SendPaymentReminder(r.Context(), id, chi.URLParam(r, "participantId")) {
		response.Conflict(w, "Failed to send payment reminder")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Reminder sent successfully"})
}

// DispatchStatus handles GET /splits/dispatch-status
// @Summary      Get notification dispatch statuses
// @Description  Get the transient per-participant notification statuses; entries expire shortly after the queue settles
// @Tags         splits
// @Produce      json
// @Success      200 {object} response.APIResponse{data=map[string]DispatchStatus}
// @Router       /splits/dispatch-status [get]
func (h *Handler) DispatchStatus(w http.ResponseWriter, r *http.Request) {
	s := h.store(w, r)
	if s == nil {
		return
	}

	response.JSON(w, http.StatusOK, s.DispatchStatuses())
}

// ListContacts handles GET /contacts
// @Summary      List contacts
// @Tags         contacts
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]Contact}
// @Router       /contacts [get]
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	s := h.store(w, r)
	if s == nil {
		return
	}

	response.JSON(w, http.StatusOK, s.AllContacts())
}

// AddContact handles POST /contacts
// @Summary      Add a contact
// @Description  Add a contact; at most one contact may exist per email address
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Param        request body AddContactRequest true "Contact to add"
// @Success      201 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /contacts [post]
func (h *Handler) AddContact(w http.ResponseWriter, r *http.Request) {
	s := h.store(w, r)
	if s == nil {
		return
	}

	var req AddContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.Name == "" {
		response.BadRequest(w, "Contact name is required")
		return
	}

	if !s.AddContact(r.Context(), req.Name, req.Email) {
		response.Conflict(w, "Contact could not be added")
		return
	}

	response.JSON(w, http.StatusCreated, map[string]string{"message": "Contact added successfully"})
}

// DeleteContact handles DELETE /contacts/{id}
// @Summary      Delete a contact
// @Description  Remove a contact from the directory; existing split expenses keep their participant data
// @Tags         contacts
// @Produce      json
// @Param        id path string true "Contact ID"
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Router       /contacts/{id} [delete]
func (h *Handler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	s := h.store(w, r)
	if s == nil {
		return
	}

	if !s.DeleteContact(r.Context(), chi.URLParam(r, "id")) {
		response.BadRequest(w, "Contact could not be deleted")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Contact deleted successfully"})
}
