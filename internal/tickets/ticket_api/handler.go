package ticket_api

import (
	"fmt"
	"net/http"
	"time"

	"ms-servicing/internal/apperr"
	"ms-servicing/internal/auth"
	"ms-servicing/internal/billing"
	"ms-servicing/internal/dashboard"
	"ms-servicing/internal/logger"
	"ms-servicing/internal/mechanics"
	"ms-servicing/internal/models"
	"ms-servicing/internal/sse"
	"ms-servicing/internal/tickets/receipt"
	tickets "ms-servicing/internal/tickets/service"
	"ms-servicing/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	TicketService *tickets.TicketService
	Dashboard     *dashboard.Service
	Mechanics     *mechanics.Service
	Receipts      *receipt.Generator
	Events        *sse.TicketEventBroker
	KeepAlive     time.Duration
	Logger        *logger.Logger
}

func NewHandler(ticketService *tickets.TicketService, dash *dashboard.Service, mech *mechanics.Service, receipts *receipt.Generator, events *sse.TicketEventBroker, log *logger.Logger) *Handler {
	return &Handler{
		TicketService: ticketService,
		Dashboard:     dash,
		Mechanics:     mech,
		Receipts:      receipts,
		Events:        events,
		KeepAlive:     30 * time.Second,
		Logger:        log,
	}
}

// TicketView is a ticket together with its derived money figures.
type TicketView struct {
	models.Ticket
	Billing billing.Summary `json:"billing"`
}

func view(t *models.Ticket) TicketView {
	return TicketView{Ticket: *t, Billing: billing.Summarize(t)}
}

// RegisterCustomerRoutes mounts the routes a signed-in customer uses.
func (h *Handler) RegisterCustomerRoutes(r chi.Router) {
	r.Route("/tickets", func(r chi.Router) {
		r.Post("/", h.CreateTicket)
		r.Get("/", h.ListMyTickets)
		r.Get("/events", h.StreamMyEvents)
		r.Get("/{ticketID}", h.ViewMyTicket)
		r.Post("/{ticketID}/pay", h.PayMyBalance)
		r.Get("/{ticketID}/receipt.png", h.Receipt)
	})
}

// RegisterAdminRoutes mounts the admin ticket routes. The caller applies
// the role check.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/summary", h.Summary)
	r.Get("/mechanics", h.ListMechanics)
	r.Route("/tickets", func(r chi.Router) {
		r.Get("/", h.ListTickets)
		r.Get("/events", h.StreamAllEvents)
		r.Get("/{ticketID}", h.ViewTicket)
		r.Put("/{ticketID}/status", h.UpdateStatus)
		r.Put("/{ticketID}/mechanic", h.AssignMechanic)
		r.Put("/{ticketID}/charges", h.SetExtraCharges)
		r.Put("/{ticketID}/work", h.RecordWorkDone)
		r.Put("/{ticketID}/payment", h.RecordPayment)
		r.Delete("/{ticketID}", h.DeleteTicket)
	})
}

func (h *Handler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTicketRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, "Invalid ticket request", err)
		return
	}
	ticket, err := h.TicketService.Create(r.Context(), auth.CustomerID(r.Context()), req)
	if err != nil {
		utils.WriteError(w, "Failed to create ticket", err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Ticket created", view(ticket)))
}

// ListMyTickets accepts optional status and payment_status query filters.
func (h *Handler) ListMyTickets(w http.ResponseWriter, r *http.Request) {
	var f dashboard.HistoryFilter
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := models.ParseTicketStatus(raw)
		if err != nil {
			utils.WriteError(w, "Invalid status filter", fmt.Errorf("%v: %w", err, apperr.ErrInvalidStatus))
			return
		}
		f.Status = status
	}
	if raw := r.URL.Query().Get("payment_status"); raw != "" {
		ps, err := models.ParsePaymentStatus(raw)
		if err != nil {
			utils.WriteError(w, "Invalid payment status filter", fmt.Errorf("%v: %w", err, apperr.ErrInvalidStatus))
			return
		}
		f.PaymentStatus = ps
	}

	rows, err := h.Dashboard.CustomerHistory(r.Context(), auth.CustomerID(r.Context()), f)
	if err != nil {
		utils.WriteError(w, "Failed to fetch tickets", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Tickets retrieved", rows))
}

func (h *Handler) ViewMyTicket(w http.ResponseWriter, r *http.Request) {
	ticket, ok := h.ownedTicket(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Ticket retrieved", view(ticket)))
}

// PayMyBalance is the only customer payment action: it settles the current
// total. Arbitrary amounts are recorded by admins.
func (h *Handler) PayMyBalance(w http.ResponseWriter, r *http.Request) {
	ticket, ok := h.ownedTicket(w, r)
	if !ok {
		return
	}
	updated, err := h.TicketService.PayBalance(r.Context(), ticket.ID)
	if err != nil {
		utils.WriteError(w, "Failed to pay balance", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Balance paid", view(updated)))
}

func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request) {
	ticket, ok := h.ownedTicket(w, r)
	if !ok {
		return
	}
	png, err := h.Receipts.PNG(ticket, time.Now())
	if err != nil {
		h.Logger.Error("RECEIPT", fmt.Sprintf("Failed to render receipt for ticket %d: %v", ticket.ID, err))
		utils.WriteError(w, "Failed to render receipt", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (h *Handler) ownedTicket(w http.ResponseWriter, r *http.Request) (*models.Ticket, bool) {
	id, err := utils.PathID(r, "ticketID")
	if err != nil {
		utils.WriteError(w, "Invalid ticket id", err)
		return nil, false
	}
	ticket, err := h.TicketService.GetForCustomer(r.Context(), auth.CustomerID(r.Context()), id)
	if err != nil {
		utils.WriteError(w, "Ticket not found", err)
		return nil, false
	}
	return ticket, true
}
