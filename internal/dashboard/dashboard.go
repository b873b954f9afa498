// Package dashboard assembles the read-side views for customers and admins.
// It never computes money itself; every figure comes from billing.
package dashboard

import (
	"context"
	"fmt"

	"ms-servicing/internal/billing"
	"ms-servicing/internal/logger"
	"ms-servicing/internal/models"
	tickets "ms-servicing/internal/tickets/service"
)

type TicketReader interface {
	List(ctx context.Context) ([]models.Ticket, error)
	ListFiltered(ctx context.Context, f tickets.Filter) ([]models.Ticket, error)
	ListForCustomer(ctx context.Context, customerID int64) ([]models.Ticket, error)
}

type CustomerLister interface {
	List(ctx context.Context) ([]models.Customer, error)
}

type Service struct {
	Tickets   TicketReader
	Customers CustomerLister
	Logger    *logger.Logger
}

func NewService(t TicketReader, c CustomerLister, log *logger.Logger) *Service {
	return &Service{Tickets: t, Customers: c, Logger: log}
}

type Summary struct {
	TotalTickets int                         `json:"total_tickets"`
	ByStatus     map[models.TicketStatus]int `json:"by_status"`
	Revenue      int64                       `json:"revenue"`
	Outstanding  int64                       `json:"outstanding"`
	PaymentsDue  int                         `json:"payments_due"`
}

// AdminSummary counts tickets per status. Revenue sums the total cost of
// settled tickets; Outstanding sums remaining balances of tickets that are
// not cancelled.
func (s *Service) AdminSummary(ctx context.Context) (Summary, error) {
	all, err := s.Tickets.List(ctx)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{ByStatus: make(map[models.TicketStatus]int, len(models.TicketStatuses))}
	for _, st := range models.TicketStatuses {
		summary.ByStatus[st] = 0
	}
	for i := range all {
		t := &all[i]
		s.checkIntegrity(t)
		summary.TotalTickets++
		summary.ByStatus[t.Status]++
		if t.PaymentStatus == models.PaymentDone {
			summary.Revenue += billing.TotalCost(t)
		}
		if t.Status != models.StatusCancelled && billing.PaymentDue(t) {
			summary.Outstanding += billing.RemainingBalance(t)
			summary.PaymentsDue++
		}
	}
	return summary, nil
}

// AdminRow is a ticket enriched with its owner's contact details.
type AdminRow struct {
	Ticket        models.Ticket   `json:"ticket"`
	Billing       billing.Summary `json:"billing"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	CustomerPhone string          `json:"customer_phone"`
	Warning       string          `json:"warning,omitempty"`
}

// AdminTickets returns the filtered tickets with customer details. A ticket
// whose customer cannot be resolved is still returned, with a warning.
func (s *Service) AdminTickets(ctx context.Context, f tickets.Filter) ([]AdminRow, error) {
	list, err := s.Tickets.ListFiltered(ctx, f)
	if err != nil {
		return nil, err
	}
	customers, err := s.Customers.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]models.Customer, len(customers))
	for _, c := range customers {
		byID[c.ID] = c
	}

	rows := make([]AdminRow, 0, len(list))
	for i := range list {
		t := &list[i]
		row := AdminRow{Ticket: *t, Billing: billing.Summarize(t)}
		if c, ok := byID[t.CustomerID]; ok {
			row.CustomerName = c.FullName
			row.CustomerEmail = c.Email
			row.CustomerPhone = c.Phone
		} else {
			row.Warning = fmt.Sprintf("customer %d not found", t.CustomerID)
			s.Logger.LogIntegrity("ticket", t.ID, row.Warning)
		}
		if err := s.checkIntegrity(t); err != nil && row.Warning == "" {
			row.Warning = err.Error()
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// HistoryFilter narrows a customer's history. Empty fields match everything.
type HistoryFilter struct {
	Status        models.TicketStatus
	PaymentStatus models.PaymentStatus
}

type HistoryRow struct {
	Ticket  models.Ticket   `json:"ticket"`
	Billing billing.Summary `json:"billing"`
}

func (s *Service) CustomerHistory(ctx context.Context, customerID int64, f HistoryFilter) ([]HistoryRow, error) {
	list, err := s.Tickets.ListForCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	rows := make([]HistoryRow, 0, len(list))
	for i := range list {
		t := &list[i]
		if f.Status != "" && f.Status != models.StatusAll && t.Status != f.Status {
			continue
		}
		if f.PaymentStatus != "" && t.PaymentStatus != f.PaymentStatus {
			continue
		}
		s.checkIntegrity(t)
		rows = append(rows, HistoryRow{Ticket: *t, Billing: billing.Summarize(t)})
	}
	return rows, nil
}

func (s *Service) checkIntegrity(t *models.Ticket) error {
	err := billing.Check(t)
	if err != nil {
		s.Logger.LogIntegrity("ticket", t.ID, err.Error())
	}
	return err
}
