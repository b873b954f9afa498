package jsonstore

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"ms-servicing/internal/apperr"
	"ms-servicing/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTicket(customerID int64, services ...string) *models.Ticket {
	lines := make([]models.TicketLine, 0, len(services))
	for _, s := range services {
		lines = append(lines, models.TicketLine{ServiceName: s, Price: 500})
	}
	return &models.Ticket{
		CustomerID:    customerID,
		VehicleID:     3,
		VehicleType:   models.VehicleBike,
		Plate:         "KA01XY9999",
		ServiceTypes:  services,
		RequestedAt:   time.Date(2025, 2, 10, 8, 0, 0, 0, time.UTC),
		Status:        models.StatusPending,
		BaseCost:      int64(500 * len(services)),
		PaymentStatus: models.PaymentPending,
		Lines:         lines,
	}
}

func openTemp(t *testing.T) (*Store, string) {
	path := filepath.Join(t.TempDir(), "data", "tickets.json")
	s, err := Open(path)
	require.NoError(t, err)
	return s, path
}

func TestInsertGet_PersistsAcrossReopen(t *testing.T) {
	s, path := openTemp(t)
	ctx := context.Background()

	services := []string{"Chain Adjustment", "Brake Check", "Oil Change"}
	id, err := s.Insert(ctx, newTicket(1, services...))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	reopened, err := Open(path)
	require.NoError(t, err)

	got, err := reopened.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, services, got.ServiceTypes)
	require.Len(t, got.Lines, 3)
	assert.Equal(t, id, got.Lines[0].TicketID)

	next, err := reopened.Insert(ctx, newTicket(1, "Oil Change"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), next)
}

func TestGet_ReturnsCopy(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	id, err := s.Insert(ctx, newTicket(1, "Oil Change"))
	require.NoError(t, err)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	got.ServiceTypes[0] = "tampered"
	got.Status = models.StatusCancelled

	again, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Oil Change", again.ServiceTypes[0])
	assert.Equal(t, models.StatusPending, again.Status)
}

func TestUpdateFields(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	id, err := s.Insert(ctx, newTicket(1, "Oil Change"))
	require.NoError(t, err)

	work := "replaced filter"
	ok, err := s.UpdateFields(ctx, id, models.TicketUpdate{WorkDone: &work})
	require.NoError(t, err)
	assert.True(t, ok)

	inProgress := models.StatusInProgress
	done := models.StatusCompleted
	ok, err = s.UpdateFields(ctx, id, models.TicketUpdate{Status: &done, ExpectStatus: &inProgress})
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "replaced filter", got.WorkDone)
	assert.Equal(t, models.StatusPending, got.Status)

	ok, err = s.UpdateFields(ctx, 99, models.TicketUpdate{WorkDone: &work})
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.UpdateFields(ctx, id, models.TicketUpdate{})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestListByCustomerAndDelete(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	for _, c := range []int64{1, 2, 1} {
		_, err := s.Insert(ctx, newTicket(c, "Oil Change"))
		require.NoError(t, err)
	}

	mine, err := s.ListByCustomer(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	ok, err := s.Delete(ctx, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.Delete(ctx, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestConcurrentUpdates_DoNotLoseFields(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	id, err := s.Insert(ctx, newTicket(1, "Oil Change"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		mechanic := int64(4)
		_, err := s.UpdateFields(ctx, id, models.TicketUpdate{AssignMechanic: true, MechanicID: &mechanic})
		assert.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		extra, desc := int64(300), "labour"
		_, err := s.UpdateFields(ctx, id, models.TicketUpdate{ExtraCharges: &extra, ChargeDescription: &desc})
		assert.NoError(t, err)
	}()
	wg.Wait()

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.MechanicID)
	assert.Equal(t, int64(4), *got.MechanicID)
	assert.Equal(t, int64(300), got.ExtraCharges)
}

func TestOpen_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickets.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := Open(path)
	assert.Error(t, err)
}
