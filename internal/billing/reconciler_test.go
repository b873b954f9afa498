package billing

import (
	"testing"
	"time"

	"ms-servicing/internal/apperr"
	"ms-servicing/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paidTicket(base, extra, paid int64, status models.PaymentStatus) *models.Ticket {
	return &models.Ticket{ID: 1, BaseCost: base, ExtraCharges: extra, PaidAmount: paid, PaymentStatus: status}
}

func TestTotalAndRemaining(t *testing.T) {
	tk := paidTicket(1000, 250, 300, models.PaymentPending)

	assert.Equal(t, int64(1250), TotalCost(tk))
	assert.Equal(t, int64(950), RemainingBalance(tk))
	assert.True(t, PaymentDue(tk))

	overpaid := paidTicket(1000, 0, 1200, models.PaymentDone)
	assert.Equal(t, int64(0), RemainingBalance(overpaid))
	assert.False(t, PaymentDue(overpaid))
}

func TestRecordPayment(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
		want   models.PaymentStatus
	}{
		{"full", 1500, models.PaymentDone},
		{"over", 2000, models.PaymentDone},
		{"partial", 1499, models.PaymentPending},
		{"zero", 0, models.PaymentPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := paidTicket(1000, 500, 0, models.PaymentPending)
			update, err := RecordPayment(tk, tt.amount)
			require.NoError(t, err)

			update.Apply(tk, time.Now())
			assert.Equal(t, tt.amount, tk.PaidAmount)
			assert.Equal(t, tt.want, tk.PaymentStatus)
			assert.Equal(t, int64(500), *update.ExpectExtraCharges)
		})
	}
}

func TestRecordPayment_LowerAmountReopens(t *testing.T) {
	tk := paidTicket(1000, 0, 1000, models.PaymentDone)

	update, err := RecordPayment(tk, 400)
	require.NoError(t, err)
	update.Apply(tk, time.Now())

	assert.Equal(t, int64(400), tk.PaidAmount)
	assert.Equal(t, models.PaymentPending, tk.PaymentStatus)
}

func TestRecordPayment_Negative(t *testing.T) {
	_, err := RecordPayment(paidTicket(1000, 0, 0, models.PaymentPending), -1)
	assert.ErrorIs(t, err, apperr.ErrNegativeAmount)
}

func TestSetExtraCharges_DemotesPaidTicket(t *testing.T) {
	tk := paidTicket(1000, 0, 1000, models.PaymentDone)

	update, err := SetExtraCharges(tk, 500, "parts")
	require.NoError(t, err)
	update.Apply(tk, time.Now())

	assert.Equal(t, int64(1500), TotalCost(tk))
	assert.Equal(t, models.PaymentPending, tk.PaymentStatus)
	assert.Equal(t, "parts", tk.ChargeDescription)
	assert.Equal(t, int64(1000), *update.ExpectPaidAmount)
}

func TestSetExtraCharges_Overwrites(t *testing.T) {
	tk := paidTicket(1000, 0, 0, models.PaymentPending)

	for _, amount := range []int64{300, 200} {
		update, err := SetExtraCharges(tk, amount, "labour")
		require.NoError(t, err)
		update.Apply(tk, time.Now())
	}

	assert.Equal(t, int64(200), tk.ExtraCharges)
	assert.Equal(t, int64(1200), TotalCost(tk))
}

func TestSetExtraCharges_CoveredByPaymentStaysDone(t *testing.T) {
	tk := paidTicket(1000, 0, 1500, models.PaymentDone)

	update, err := SetExtraCharges(tk, 500, "parts")
	require.NoError(t, err)

	assert.Nil(t, update.PaymentStatus)
	update.Apply(tk, time.Now())
	assert.Equal(t, models.PaymentDone, tk.PaymentStatus)
}

func TestSetExtraCharges_Negative(t *testing.T) {
	tk := paidTicket(1000, 100, 0, models.PaymentPending)
	_, err := SetExtraCharges(tk, -5, "refund")
	assert.ErrorIs(t, err, apperr.ErrNegativeAmount)
	assert.Equal(t, int64(100), tk.ExtraCharges)
}

func TestPayBalance(t *testing.T) {
	tk := paidTicket(1000, 500, 200, models.PaymentPending)

	update, err := PayBalance(tk)
	require.NoError(t, err)
	update.Apply(tk, time.Now())
	assert.Equal(t, int64(1500), tk.PaidAmount)
	assert.Equal(t, models.PaymentDone, tk.PaymentStatus)

	_, err = PayBalance(tk)
	assert.ErrorIs(t, err, apperr.ErrNothingToPay)
}

func TestCostInvariantHoldsAcrossMutations(t *testing.T) {
	tk := paidTicket(2000, 0, 0, models.PaymentPending)
	steps := []func() (models.TicketUpdate, error){
		func() (models.TicketUpdate, error) { return RecordPayment(tk, 2000) },
		func() (models.TicketUpdate, error) { return SetExtraCharges(tk, 700, "tyres") },
		func() (models.TicketUpdate, error) { return PayBalance(tk) },
		func() (models.TicketUpdate, error) { return SetExtraCharges(tk, 100, "discounted tyres") },
	}
	for _, step := range steps {
		update, err := step()
		require.NoError(t, err)
		update.Apply(tk, time.Now())

		require.NoError(t, Check(tk))
		assert.Equal(t, tk.BaseCost+tk.ExtraCharges, TotalCost(tk))
		if tk.PaymentStatus == models.PaymentDone {
			assert.GreaterOrEqual(t, tk.PaidAmount, TotalCost(tk))
		}
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(paidTicket(1000, 200, 500, models.PaymentPending))
	assert.Equal(t, int64(1200), s.TotalCost)
	assert.Equal(t, int64(700), s.Remaining)
	assert.True(t, s.PaymentDue)
}
