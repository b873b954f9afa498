package models

import "time"

type TicketEventType string

const (
	EventTicketCreated  TicketEventType = "ticket.created"
	EventTicketStatus   TicketEventType = "ticket.status_changed"
	EventTicketMechanic TicketEventType = "ticket.mechanic_assigned"
	EventTicketWork     TicketEventType = "ticket.work_recorded"
	EventTicketCharges  TicketEventType = "ticket.charges_changed"
	EventTicketPayment  TicketEventType = "ticket.payment_recorded"
	EventTicketDeleted  TicketEventType = "ticket.deleted"
)

// TicketEvent is published after every successful ticket mutation.
type TicketEvent struct {
	EventID    string          `json:"event_id"`
	Type       TicketEventType `json:"type"`
	TicketID   int64           `json:"ticket_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Ticket     *Ticket         `json:"ticket,omitempty"`
}
