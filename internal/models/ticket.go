package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Ticket is one service request. Vehicle attributes are a snapshot taken at
// creation; VehicleID stays the source of truth.
type Ticket struct {
	bun.BaseModel `bun:"table:tickets"`

	ID                int64         `bun:"id,pk,autoincrement" json:"id"`
	CustomerID        int64         `bun:"customer_id,notnull" json:"customer_id"`
	VehicleID         int64         `bun:"vehicle_id,notnull" json:"vehicle_id"`
	VehicleType       VehicleType   `bun:"vehicle_type,notnull" json:"vehicle_type"`
	Brand             string        `bun:"brand" json:"brand"`
	Model             string        `bun:"model" json:"model"`
	Plate             string        `bun:"plate" json:"plate"`
	ServiceTypes      []string      `bun:"service_types" json:"service_types"`
	Description       string        `bun:"description" json:"description"`
	PickupRequired    bool          `bun:"pickup_required" json:"pickup_required"`
	PickupAddress     string        `bun:"pickup_address" json:"pickup_address,omitempty"`
	ServiceDate       time.Time     `bun:"service_date" json:"service_date"`
	RequestedAt       time.Time     `bun:"requested_at" json:"requested_at"`
	Status            TicketStatus  `bun:"status,notnull" json:"status"`
	MechanicID        *int64        `bun:"mechanic_id,nullzero" json:"mechanic_id"`
	WorkDone          string        `bun:"work_done" json:"work_done"`
	BaseCost          int64         `bun:"base_cost,notnull" json:"base_cost"`
	ExtraCharges      int64         `bun:"extra_charges,notnull" json:"extra_charges"`
	ChargeDescription string        `bun:"charge_description" json:"charge_description"`
	PaidAmount        int64         `bun:"paid_amount,notnull" json:"paid_amount"`
	PaymentStatus     PaymentStatus `bun:"payment_status,notnull" json:"payment_status"`
	UpdatedAt         time.Time     `bun:"updated_at" json:"updated_at"`

	Lines []TicketLine `bun:"rel:has-many,join:id=ticket_id" json:"lines,omitempty"`
}

// TicketLine freezes the catalog price of one selected service.
type TicketLine struct {
	bun.BaseModel `bun:"table:ticket_lines"`

	ID          int64  `bun:"id,pk,autoincrement" json:"id"`
	TicketID    int64  `bun:"ticket_id,notnull" json:"ticket_id"`
	ServiceName string `bun:"service_name,notnull" json:"service_name"`
	Price       int64  `bun:"price,notnull" json:"price"`
}

type CreateTicketRequest struct {
	VehicleID      int64    `json:"vehicle_id"`
	ServiceTypes   []string `json:"service_types"`
	Description    string   `json:"description"`
	PickupRequired bool     `json:"pickup_required"`
	PickupAddress  string   `json:"pickup_address"`
	ServiceDate    string   `json:"service_date"`
}
