package ticket_api

import (
	"fmt"
	"net/http"

	"ms-servicing/internal/apperr"
	"ms-servicing/internal/models"
	tickets "ms-servicing/internal/tickets/service"
	"ms-servicing/internal/utils"
)

// ListTickets supports start, end (YYYY-MM-DD), status (comma separated or
// All) and plate query parameters.
func (h *Handler) ListTickets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f, err := tickets.ParseFilter(q.Get("start"), q.Get("end"), q.Get("status"), q.Get("plate"))
	if err != nil {
		utils.WriteError(w, "Invalid filter", err)
		return
	}
	rows, err := h.Dashboard.AdminTickets(r.Context(), f)
	if err != nil {
		utils.WriteError(w, "Failed to fetch tickets", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse(fmt.Sprintf("%d tickets", len(rows)), rows))
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Dashboard.AdminSummary(r.Context())
	if err != nil {
		utils.WriteError(w, "Failed to build summary", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Summary retrieved", summary))
}

func (h *Handler) ListMechanics(w http.ResponseWriter, r *http.Request) {
	list, err := h.Mechanics.List(r.Context())
	if err != nil {
		utils.WriteError(w, "Failed to fetch mechanics", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Mechanics retrieved", list))
}

func (h *Handler) ViewTicket(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathID(r, "ticketID")
	if err != nil {
		utils.WriteError(w, "Invalid ticket id", err)
		return
	}
	ticket, err := h.TicketService.Get(r.Context(), id)
	if err != nil {
		utils.WriteError(w, "Ticket not found", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Ticket retrieved", view(ticket)))
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	id, ok := h.adminRequest(w, r, &req)
	if !ok {
		return
	}
	status, err := models.ParseTicketStatus(req.Status)
	if err != nil {
		utils.WriteError(w, "Invalid status", fmt.Errorf("%v: %w", err, apperr.ErrInvalidStatus))
		return
	}
	h.respond(w, "Status updated", "Failed to update status")(h.TicketService.UpdateStatus(r.Context(), id, status))
}

// AssignMechanic takes {"mechanic_id": n}; null unassigns.
func (h *Handler) AssignMechanic(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MechanicID *int64 `json:"mechanic_id"`
	}
	id, ok := h.adminRequest(w, r, &req)
	if !ok {
		return
	}
	h.respond(w, "Mechanic assigned", "Failed to assign mechanic")(h.TicketService.AssignMechanic(r.Context(), id, req.MechanicID))
}

func (h *Handler) SetExtraCharges(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount      int64  `json:"amount"`
		Description string `json:"description"`
	}
	id, ok := h.adminRequest(w, r, &req)
	if !ok {
		return
	}
	h.respond(w, "Extra charges updated", "Failed to update extra charges")(h.TicketService.AddExtraCharge(r.Context(), id, req.Amount, req.Description))
}

func (h *Handler) RecordWorkDone(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WorkDone string `json:"work_done"`
	}
	id, ok := h.adminRequest(w, r, &req)
	if !ok {
		return
	}
	h.respond(w, "Work recorded", "Failed to record work")(h.TicketService.RecordWorkDone(r.Context(), id, req.WorkDone))
}

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount int64 `json:"amount"`
	}
	id, ok := h.adminRequest(w, r, &req)
	if !ok {
		return
	}
	h.respond(w, "Payment recorded", "Failed to record payment")(h.TicketService.RecordPayment(r.Context(), id, req.Amount))
}

func (h *Handler) DeleteTicket(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathID(r, "ticketID")
	if err != nil {
		utils.WriteError(w, "Invalid ticket id", err)
		return
	}
	if err := h.TicketService.Delete(r.Context(), id); err != nil {
		utils.WriteError(w, "Failed to delete ticket", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) adminRequest(w http.ResponseWriter, r *http.Request, body interface{}) (int64, bool) {
	id, err := utils.PathID(r, "ticketID")
	if err != nil {
		utils.WriteError(w, "Invalid ticket id", err)
		return 0, false
	}
	if err := utils.DecodeJSON(r, body); err != nil {
		utils.WriteError(w, "Invalid request body", err)
		return 0, false
	}
	return id, true
}

func (h *Handler) respond(w http.ResponseWriter, success, failure string) func(*models.Ticket, error) {
	return func(ticket *models.Ticket, err error) {
		if err != nil {
			utils.WriteError(w, failure, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse(success, view(ticket)))
	}
}
