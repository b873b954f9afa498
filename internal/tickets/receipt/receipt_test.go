package receipt

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"ms-servicing/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTicket() *models.Ticket {
	return &models.Ticket{
		ID:            12,
		CustomerID:    3,
		Plate:         "MH12AB1234",
		ServiceTypes:  []string{"Oil Change", "Brake Check"},
		ServiceDate:   time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Status:        models.StatusInProgress,
		BaseCost:      700,
		ExtraCharges:  300,
		PaidAmount:    400,
		PaymentStatus: models.PaymentPending,
	}
}

func TestSealOpen_RoundTrip(t *testing.T) {
	g := NewGenerator("secret")
	now := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)

	token, err := g.Seal(NewSlip(sampleTicket(), now))
	require.NoError(t, err)

	slip, err := g.Open(token)
	require.NoError(t, err)
	assert.Equal(t, int64(12), slip.TicketID)
	assert.Equal(t, "2025-02-01", slip.ServiceDate)
	assert.Equal(t, int64(1000), slip.Billing.TotalCost)
	assert.Equal(t, int64(600), slip.Billing.Remaining)
	assert.True(t, slip.Billing.PaymentDue)
	assert.Equal(t, now, slip.IssuedAt)
}

func TestOpen_RejectsForeignOrTamperedTokens(t *testing.T) {
	token, err := NewGenerator("secret").Seal(NewSlip(sampleTicket(), time.Now()))
	require.NoError(t, err)

	_, err = NewGenerator("other").Open(token)
	assert.Error(t, err)

	tampered := []byte(token)
	tampered[len(tampered)/2] ^= 'A' ^ 'B'
	_, err = NewGenerator("secret").Open(string(tampered))
	assert.Error(t, err)

	_, err = NewGenerator("secret").Open("c2hvcnQ=")
	assert.Error(t, err)
}

func TestPNG(t *testing.T) {
	data, err := NewGenerator("secret").PNG(sampleTicket(), time.Now())
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
}
