// Package billing owns total cost and payment status. Every ticket mutation
// that touches money builds its update here so the derived payment status is
// written in the same statement as the amount that drives it.
package billing

import (
	"fmt"

	"ms-servicing/internal/apperr"
	"ms-servicing/internal/models"
)

func TotalCost(t *models.Ticket) int64 {
	return t.BaseCost + t.ExtraCharges
}

// RemainingBalance is never negative. Zero means no payment action is offered.
func RemainingBalance(t *models.Ticket) int64 {
	if rest := TotalCost(t) - t.PaidAmount; rest > 0 {
		return rest
	}
	return 0
}

func PaymentDue(t *models.Ticket) bool {
	return RemainingBalance(t) > 0
}

func StatusFor(paid, total int64) models.PaymentStatus {
	if paid >= total {
		return models.PaymentDone
	}
	return models.PaymentPending
}

// RecordPayment sets the paid amount to amount (absolute, not additive) and
// derives the payment status against the current total.
func RecordPayment(t *models.Ticket, amount int64) (models.TicketUpdate, error) {
	if amount < 0 {
		return models.TicketUpdate{}, fmt.Errorf("payment %d: %w", amount, apperr.ErrNegativeAmount)
	}
	status := StatusFor(amount, TotalCost(t))
	extra := t.ExtraCharges
	return models.TicketUpdate{
		PaidAmount:         &amount,
		PaymentStatus:      &status,
		ExpectExtraCharges: &extra,
	}, nil
}

// PayBalance settles the ticket in full.
func PayBalance(t *models.Ticket) (models.TicketUpdate, error) {
	if RemainingBalance(t) == 0 {
		return models.TicketUpdate{}, fmt.Errorf("ticket %d: %w", t.ID, apperr.ErrNothingToPay)
	}
	return RecordPayment(t, TotalCost(t))
}

// SetExtraCharges replaces the extra charge and applies the demotion rule:
// a Done ticket whose new total exceeds what was paid goes back to Pending.
func SetExtraCharges(t *models.Ticket, amount int64, description string) (models.TicketUpdate, error) {
	if amount < 0 {
		return models.TicketUpdate{}, fmt.Errorf("extra charge %d: %w", amount, apperr.ErrNegativeAmount)
	}
	paid := t.PaidAmount
	update := models.TicketUpdate{
		ExtraCharges:      &amount,
		ChargeDescription: &description,
		ExpectPaidAmount:  &paid,
	}

	next := *t
	next.ExtraCharges = amount
	if status := OnExtraChargeChanged(&next); status != t.PaymentStatus {
		update.PaymentStatus = &status
	}
	return update, nil
}

// OnExtraChargeChanged returns the payment status t should carry once its
// extra charges have changed.
func OnExtraChargeChanged(t *models.Ticket) models.PaymentStatus {
	if t.PaymentStatus == models.PaymentDone && TotalCost(t) > t.PaidAmount {
		return models.PaymentPending
	}
	return t.PaymentStatus
}

// Check verifies the cost invariants on a stored ticket.
func Check(t *models.Ticket) error {
	if t.BaseCost < 0 || t.ExtraCharges < 0 || t.PaidAmount < 0 {
		return fmt.Errorf("ticket %d: base %d extra %d paid %d: %w",
			t.ID, t.BaseCost, t.ExtraCharges, t.PaidAmount, apperr.ErrNegativeAmount)
	}
	return nil
}

// Summary is the money view of one ticket returned to clients.
type Summary struct {
	BaseCost      int64                `json:"base_cost"`
	ExtraCharges  int64                `json:"extra_charges"`
	TotalCost     int64                `json:"total_cost"`
	PaidAmount    int64                `json:"paid_amount"`
	Remaining     int64                `json:"remaining"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
	PaymentDue    bool                 `json:"payment_due"`
}

func Summarize(t *models.Ticket) Summary {
	return Summary{
		BaseCost:      t.BaseCost,
		ExtraCharges:  t.ExtraCharges,
		TotalCost:     TotalCost(t),
		PaidAmount:    t.PaidAmount,
		Remaining:     RemainingBalance(t),
		PaymentStatus: t.PaymentStatus,
		PaymentDue:    PaymentDue(t),
	}
}
