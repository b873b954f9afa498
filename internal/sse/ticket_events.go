package sse

import (
	"context"
	"sync"

	"ms-servicing/internal/models"
)

const clientBuffer = 10

// TicketEventBroker fans ticket events out to connected SSE clients. A
// customer only receives events for their own tickets; admin subscribers
// receive everything.
type TicketEventBroker struct {
	customerClients map[int64][]chan models.TicketEvent
	adminClients    []chan models.TicketEvent
	mu              sync.RWMutex
}

func NewTicketEventBroker() *TicketEventBroker {
	return &TicketEventBroker{
		customerClients: make(map[int64][]chan models.TicketEvent),
	}
}

// SubscribeCustomer registers a client for one customer's ticket events.
// The channel is closed once ctx is done.
func (b *TicketEventBroker) SubscribeCustomer(ctx context.Context, customerID int64) <-chan models.TicketEvent {
	ch := make(chan models.TicketEvent, clientBuffer)

	b.mu.Lock()
	b.customerClients[customerID] = append(b.customerClients[customerID], ch)
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.removeCustomerClient(customerID, ch)
	}()
	return ch
}

// SubscribeAdmin registers a client for every ticket event.
func (b *TicketEventBroker) SubscribeAdmin(ctx context.Context) <-chan models.TicketEvent {
	ch := make(chan models.TicketEvent, clientBuffer)

	b.mu.Lock()
	b.adminClients = append(b.adminClients, ch)
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.removeAdminClient(ch)
	}()
	return ch
}

// PublishTicketEvent broadcasts without blocking. Clients whose buffer is
// full miss the event.
func (b *TicketEventBroker) PublishTicketEvent(_ context.Context, event models.TicketEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if event.Ticket != nil {
		for _, ch := range b.customerClients[event.Ticket.CustomerID] {
			select {
			case ch <- event:
			default:
			}
		}
	}
	for _, ch := range b.adminClients {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (b *TicketEventBroker) removeCustomerClient(customerID int64, ch chan models.TicketEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	clients := b.customerClients[customerID]
	for i, c := range clients {
		if c == ch {
			b.customerClients[customerID] = append(clients[:i], clients[i+1:]...)
			close(ch)
			break
		}
	}
	if len(b.customerClients[customerID]) == 0 {
		delete(b.customerClients, customerID)
	}
}

func (b *TicketEventBroker) removeAdminClient(ch chan models.TicketEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, c := range b.adminClients {
		if c == ch {
			b.adminClients = append(b.adminClients[:i], b.adminClients[i+1:]...)
			close(ch)
			break
		}
	}
}

func (b *TicketEventBroker) CustomerClientCount(customerID int64) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.customerClients[customerID])
}

func (b *TicketEventBroker) AdminClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.adminClients)
}
