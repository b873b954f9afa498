package models

import (
	"fmt"
	"strings"
)

type TicketStatus string

const (
	StatusPending    TicketStatus = "Pending"
	StatusInProgress TicketStatus = "In Progress"
	StatusCompleted  TicketStatus = "Completed"
	StatusCancelled  TicketStatus = "Cancelled"

	// StatusAll is a filter sentinel, never a stored status.
	StatusAll TicketStatus = "All"
)

var TicketStatuses = []TicketStatus{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled}

func (s TicketStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s TicketStatus) Valid() bool {
	for _, known := range TicketStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseTicketStatus accepts the display names plus compact forms such as
// "InProgress" or "in_progress", case-insensitively.
func ParseTicketStatus(value string) (TicketStatus, error) {
	key := strings.ToLower(strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.TrimSpace(value)))
	switch key {
	case "pending":
		return StatusPending, nil
	case "inprogress":
		return StatusInProgress, nil
	case "completed":
		return StatusCompleted, nil
	case "cancelled", "canceled":
		return StatusCancelled, nil
	case "all":
		return StatusAll, nil
	}
	return "", fmt.Errorf("unknown ticket status %q", value)
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentDone    PaymentStatus = "Done"
)

func ParsePaymentStatus(value string) (PaymentStatus, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "pending":
		return PaymentPending, nil
	case "done", "paid":
		return PaymentDone, nil
	}
	return "", fmt.Errorf("unknown payment status %q", value)
}

type Role string

const (
	RoleCustomer Role = "Customer"
	RoleAdmin    Role = "Admin"
)

type VehicleType string

const (
	VehicleCar  VehicleType = "Car"
	VehicleBike VehicleType = "Bike"
)
