package tickets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ms-servicing/internal/apperr"
	"ms-servicing/internal/billing"
	"ms-servicing/internal/catalog"
	"ms-servicing/internal/logger"
	"ms-servicing/internal/models"
	"ms-servicing/internal/utils"

	"github.com/google/uuid"
)

// TicketStore is implemented by the SQL store and the JSON file store.
type TicketStore interface {
	Insert(ctx context.Context, t *models.Ticket) (int64, error)
	Get(ctx context.Context, id int64) (*models.Ticket, error)
	List(ctx context.Context) ([]models.Ticket, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]models.Ticket, error)
	UpdateFields(ctx context.Context, id int64, update models.TicketUpdate) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type VehicleLookup interface {
	GetOwned(ctx context.Context, customerID, vehicleID int64) (*models.Vehicle, error)
}

type MechanicLookup interface {
	Get(ctx context.Context, id int64) (*models.Mechanic, error)
}

type EventPublisher interface {
	PublishTicketEvent(ctx context.Context, event models.TicketEvent) error
}

// Publishers delivers an event to every publisher and returns the first
// failure after all of them were tried.
type Publishers []EventPublisher

func (p Publishers) PublishTicketEvent(ctx context.Context, event models.TicketEvent) error {
	var first error
	for _, pub := range p {
		if err := pub.PublishTicketEvent(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type TicketService struct {
	Store     TicketStore
	Vehicles  VehicleLookup
	Mechanics MechanicLookup
	Catalog   *catalog.Catalog
	Events    EventPublisher
	Logger    *logger.Logger
	Now       func() time.Time
}

func NewTicketService(store TicketStore, vehicles VehicleLookup, mechanics MechanicLookup, cat *catalog.Catalog, events EventPublisher, log *logger.Logger) *TicketService {
	return &TicketService{
		Store:     store,
		Vehicles:  vehicles,
		Mechanics: mechanics,
		Catalog:   cat,
		Events:    events,
		Logger:    log,
		Now:       time.Now,
	}
}

var transitions = map[models.TicketStatus][]models.TicketStatus{
	models.StatusPending:    {models.StatusInProgress, models.StatusCompleted, models.StatusCancelled},
	models.StatusInProgress: {models.StatusCompleted, models.StatusCancelled},
}

// CanTransition reports whether from -> to is an edge of the lifecycle.
// Completed and Cancelled have no outgoing edges.
func CanTransition(from, to models.TicketStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Create validates the request, snapshots the vehicle and freezes the base
// cost from current catalog prices.
func (s *TicketService) Create(ctx context.Context, customerID int64, req models.CreateTicketRequest) (*models.Ticket, error) {
	if req.PickupRequired && strings.TrimSpace(req.PickupAddress) == "" {
		return nil, apperr.ErrMissingPickupAddress
	}
	if len(req.ServiceTypes) == 0 {
		return nil, apperr.ErrEmptyServiceTypes
	}

	now := s.Now().UTC()
	serviceDate, err := utils.ParseDate(req.ServiceDate)
	if err != nil {
		return nil, fmt.Errorf("service date %q: %w", req.ServiceDate, apperr.ErrInvalidInput)
	}
	if serviceDate.IsZero() {
		serviceDate = utils.DateOnly(now)
	}

	vehicle, err := s.Vehicles.GetOwned(ctx, customerID, req.VehicleID)
	if err != nil {
		return nil, err
	}

	lines, baseCost, err := s.Catalog.Quote(vehicle.Type, req.ServiceTypes)
	if err != nil {
		return nil, err
	}

	address := ""
	if req.PickupRequired {
		address = strings.TrimSpace(req.PickupAddress)
	}

	ticket := &models.Ticket{
		CustomerID:     customerID,
		VehicleID:      vehicle.ID,
		VehicleType:    vehicle.Type,
		Brand:          vehicle.Brand,
		Model:          vehicle.Model,
		Plate:          vehicle.Plate,
		ServiceTypes:   append([]string(nil), req.ServiceTypes...),
		Description:    strings.TrimSpace(req.Description),
		PickupRequired: req.PickupRequired,
		PickupAddress:  address,
		ServiceDate:    serviceDate,
		RequestedAt:    now,
		Status:         models.StatusPending,
		BaseCost:       baseCost,
		PaymentStatus:  models.PaymentPending,
		UpdatedAt:      now,
		Lines:          lines,
	}

	id, err := s.Store.Insert(ctx, ticket)
	if err != nil {
		s.Logger.Error("TICKET", fmt.Sprintf("Failed to create ticket for customer %d: %v", customerID, err))
		return nil, err
	}
	ticket.ID = id

	s.Logger.LogTicket("CREATE", id, fmt.Sprintf("customer %d, %s, base cost %d", customerID, vehicle.Plate, baseCost))
	s.publish(ctx, models.EventTicketCreated, ticket)
	return ticket, nil
}

func (s *TicketService) Get(ctx context.Context, id int64) (*models.Ticket, error) {
	ticket, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, fmt.Errorf("ticket %d: %w", id, apperr.ErrTicketNotFound)
	}
	return ticket, nil
}

// GetForCustomer hides other customers' tickets behind TicketNotFound.
func (s *TicketService) GetForCustomer(ctx context.Context, customerID, id int64) (*models.Ticket, error) {
	ticket, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.CustomerID != customerID {
		return nil, fmt.Errorf("ticket %d: %w", id, apperr.ErrTicketNotFound)
	}
	return ticket, nil
}

func (s *TicketService) List(ctx context.Context) ([]models.Ticket, error) {
	return s.Store.List(ctx)
}

func (s *TicketService) ListForCustomer(ctx context.Context, customerID int64) ([]models.Ticket, error) {
	return s.Store.ListByCustomer(ctx, customerID)
}

// ListFiltered loads every ticket and applies f.
func (s *TicketService) ListFiltered(ctx context.Context, f Filter) ([]models.Ticket, error) {
	all, err := s.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	return FilterTickets(all, f), nil
}

// UpdateStatus moves the ticket along one lifecycle edge. Re-setting the
// current status is not an edge and fails like any other illegal move.
func (s *TicketService) UpdateStatus(ctx context.Context, id int64, status models.TicketStatus) (*models.Ticket, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("status %q: %w", status, apperr.ErrInvalidStatus)
	}
	return s.mutate(ctx, id, "STATUS", models.EventTicketStatus, func(t *models.Ticket) (models.TicketUpdate, error) {
		if !CanTransition(t.Status, status) {
			return models.TicketUpdate{}, fmt.Errorf("ticket %d %s -> %s: %w", t.ID, t.Status, status, apperr.ErrIllegalTransition)
		}
		current := t.Status
		return models.TicketUpdate{Status: &status, ExpectStatus: &current}, nil
	})
}

// AssignMechanic sets or clears (nil) the assigned mechanic in any status.
func (s *TicketService) AssignMechanic(ctx context.Context, id int64, mechanicID *int64) (*models.Ticket, error) {
	if mechanicID != nil {
		if _, err := s.Mechanics.Get(ctx, *mechanicID); err != nil {
			return nil, err
		}
	}
	return s.mutate(ctx, id, "ASSIGN", models.EventTicketMechanic, func(*models.Ticket) (models.TicketUpdate, error) {
		return models.TicketUpdate{AssignMechanic: true, MechanicID: mechanicID}, nil
	})
}

// AddExtraCharge replaces the extra charge; it never accumulates.
func (s *TicketService) AddExtraCharge(ctx context.Context, id int64, amount int64, description string) (*models.Ticket, error) {
	if amount < 0 {
		return nil, fmt.Errorf("extra charge %d: %w", amount, apperr.ErrNegativeAmount)
	}
	return s.mutate(ctx, id, "CHARGE", models.EventTicketCharges, func(t *models.Ticket) (models.TicketUpdate, error) {
		return billing.SetExtraCharges(t, amount, strings.TrimSpace(description))
	})
}

func (s *TicketService) RecordWorkDone(ctx context.Context, id int64, text string) (*models.Ticket, error) {
	return s.mutate(ctx, id, "WORK", models.EventTicketWork, func(*models.Ticket) (models.TicketUpdate, error) {
		return models.TicketUpdate{WorkDone: &text}, nil
	})
}

// RecordPayment sets the paid amount (absolute) and derives payment status.
func (s *TicketService) RecordPayment(ctx context.Context, id int64, amount int64) (*models.Ticket, error) {
	if amount < 0 {
		return nil, fmt.Errorf("payment %d: %w", amount, apperr.ErrNegativeAmount)
	}
	return s.mutate(ctx, id, "PAYMENT", models.EventTicketPayment, func(t *models.Ticket) (models.TicketUpdate, error) {
		return billing.RecordPayment(t, amount)
	})
}

// PayBalance settles the whole current total.
func (s *TicketService) PayBalance(ctx context.Context, id int64) (*models.Ticket, error) {
	return s.mutate(ctx, id, "PAYMENT", models.EventTicketPayment, billing.PayBalance)
}

// Delete is the administrative escape hatch; it removes the line items too.
func (s *TicketService) Delete(ctx context.Context, id int64) error {
	ticket, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	deleted, err := s.Store.Delete(ctx, id)
	if err != nil {
		s.Logger.Error("TICKET", fmt.Sprintf("Failed to delete ticket %d: %v", id, err))
		return err
	}
	if !deleted {
		return fmt.Errorf("ticket %d: %w", id, apperr.ErrTicketNotFound)
	}
	s.Logger.LogTicket("DELETE", id, "removed by admin")
	s.publish(ctx, models.EventTicketDeleted, ticket)
	return nil
}

// mutate loads the ticket, lets build derive a field-scoped update from it
// and writes only those fields. A guard mismatch means a concurrent writer
// changed a field the update was derived from.
func (s *TicketService) mutate(ctx context.Context, id int64, action string, eventType models.TicketEventType, build func(*models.Ticket) (models.TicketUpdate, error)) (*models.Ticket, error) {
	ticket, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	update, err := build(ticket)
	if err != nil {
		return nil, err
	}
	if update.Empty() {
		return ticket, nil
	}

	ok, err := s.Store.UpdateFields(ctx, id, update)
	if err != nil {
		s.Logger.Error("TICKET", fmt.Sprintf("%s on ticket %d failed: %v", action, id, err))
		return nil, err
	}
	if !ok {
		current, err := s.Store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, fmt.Errorf("ticket %d: %w", id, apperr.ErrTicketNotFound)
		}
		s.Logger.Warn("TICKET", fmt.Sprintf("%s on ticket %d lost a race with another writer", action, id))
		return nil, fmt.Errorf("ticket %d: %w", id, apperr.ErrStaleTicket)
	}

	update.Apply(ticket, s.Now().UTC())
	if err := billing.Check(ticket); err != nil {
		s.Logger.LogIntegrity("ticket", id, err.Error())
	}
	s.Logger.LogTicket(action, id, fmt.Sprintf("status %s, total %d, paid %d, payment %s",
		ticket.Status, billing.TotalCost(ticket), ticket.PaidAmount, ticket.PaymentStatus))
	s.publish(ctx, eventType, ticket)
	return ticket, nil
}

func (s *TicketService) publish(ctx context.Context, eventType models.TicketEventType, ticket *models.Ticket) {
	if s.Events == nil {
		return
	}
	snapshot := *ticket
	event := models.TicketEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		TicketID:   ticket.ID,
		OccurredAt: s.Now().UTC(),
		Ticket:     &snapshot,
	}
	if err := s.Events.PublishTicketEvent(ctx, event); err != nil {
		s.Logger.Error("EVENTS", fmt.Sprintf("Failed to publish %s for ticket %d: %v", eventType, ticket.ID, err))
	}
}
