package sse

import (
	"context"
	"testing"
	"time"

	"ms-servicing/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(ticketID, customerID int64) models.TicketEvent {
	return models.TicketEvent{
		Type:     models.EventTicketStatus,
		TicketID: ticketID,
		Ticket:   &models.Ticket{ID: ticketID, CustomerID: customerID},
	}
}

func receive(t *testing.T, ch <-chan models.TicketEvent) models.TicketEvent {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
	return models.TicketEvent{}
}

func TestBroker_RoutesByCustomer(t *testing.T) {
	b := NewTicketEventBroker()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	alice := b.SubscribeCustomer(ctx, 1)
	bob := b.SubscribeCustomer(ctx, 2)
	admin := b.SubscribeAdmin(ctx)

	require.NoError(t, b.PublishTicketEvent(ctx, event(10, 1)))

	assert.Equal(t, int64(10), receive(t, alice).TicketID)
	assert.Equal(t, int64(10), receive(t, admin).TicketID)
	assert.Len(t, bob, 0)
}

func TestBroker_EventWithoutTicketOnlyReachesAdmins(t *testing.T) {
	b := NewTicketEventBroker()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	customer := b.SubscribeCustomer(ctx, 1)
	admin := b.SubscribeAdmin(ctx)

	require.NoError(t, b.PublishTicketEvent(ctx, models.TicketEvent{TicketID: 3}))
	assert.Equal(t, int64(3), receive(t, admin).TicketID)
	assert.Len(t, customer, 0)
}

func TestBroker_SlowClientDoesNotBlock(t *testing.T) {
	b := NewTicketEventBroker()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := b.SubscribeCustomer(ctx, 1)
	for i := 0; i < clientBuffer+5; i++ {
		require.NoError(t, b.PublishTicketEvent(ctx, event(int64(i), 1)))
	}
	assert.Len(t, ch, clientBuffer)
}

func TestBroker_UnsubscribeOnCancel(t *testing.T) {
	b := NewTicketEventBroker()
	ctx, cancel := context.WithCancel(context.Background())

	ch := b.SubscribeCustomer(ctx, 7)
	admin := b.SubscribeAdmin(ctx)
	assert.Equal(t, 1, b.CustomerClientCount(7))
	assert.Equal(t, 1, b.AdminClientCount())

	cancel()
	assert.Eventually(t, func() bool {
		return b.CustomerClientCount(7) == 0 && b.AdminClientCount() == 0
	}, time.Second, 10*time.Millisecond)

	_, ok := <-ch
	assert.False(t, ok)
	_, ok = <-admin
	assert.False(t, ok)
}
