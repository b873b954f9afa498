package models

import "time"

// TicketUpdate names the columns a mutation writes. Nil fields are left
// untouched by the store. The Expect fields are compared against the stored
// row; a mismatch means another writer got there first and nothing is written.
type TicketUpdate struct {
	Status            *TicketStatus
	AssignMechanic    bool
	MechanicID        *int64
	WorkDone          *string
	ExtraCharges      *int64
	ChargeDescription *string
	PaidAmount        *int64
	PaymentStatus     *PaymentStatus

	ExpectStatus       *TicketStatus
	ExpectExtraCharges *int64
	ExpectPaidAmount   *int64
}

// Columns lists the columns touched, in a stable order.
func (u TicketUpdate) Columns() []string {
	var cols []string
	if u.Status != nil {
		cols = append(cols, "status")
	}
	if u.AssignMechanic {
		cols = append(cols, "mechanic_id")
	}
	if u.WorkDone != nil {
		cols = append(cols, "work_done")
	}
	if u.ExtraCharges != nil {
		cols = append(cols, "extra_charges")
	}
	if u.ChargeDescription != nil {
		cols = append(cols, "charge_description")
	}
	if u.PaidAmount != nil {
		cols = append(cols, "paid_amount")
	}
	if u.PaymentStatus != nil {
		cols = append(cols, "payment_status")
	}
	return cols
}

func (u TicketUpdate) Empty() bool {
	return len(u.Columns()) == 0
}

// Matches reports whether t satisfies the Expect guards.
func (u TicketUpdate) Matches(t *Ticket) bool {
	if u.ExpectStatus != nil && t.Status != *u.ExpectStatus {
		return false
	}
	if u.ExpectExtraCharges != nil && t.ExtraCharges != *u.ExpectExtraCharges {
		return false
	}
	if u.ExpectPaidAmount != nil && t.PaidAmount != *u.ExpectPaidAmount {
		return false
	}
	return true
}

// Apply copies the set fields onto t and stamps UpdatedAt.
func (u TicketUpdate) Apply(t *Ticket, now time.Time) {
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.AssignMechanic {
		if u.MechanicID == nil {
			t.MechanicID = nil
		} else {
			id := *u.MechanicID
			t.MechanicID = &id
		}
	}
	if u.WorkDone != nil {
		t.WorkDone = *u.WorkDone
	}
	if u.ExtraCharges != nil {
		t.ExtraCharges = *u.ExtraCharges
	}
	if u.ChargeDescription != nil {
		t.ChargeDescription = *u.ChargeDescription
	}
	if u.PaidAmount != nil {
		t.PaidAmount = *u.PaidAmount
	}
	if u.PaymentStatus != nil {
		t.PaymentStatus = *u.PaymentStatus
	}
	t.UpdatedAt = now
}
