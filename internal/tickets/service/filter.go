package tickets

import (
	"fmt"
	"strings"
	"time"

	"ms-servicing/internal/apperr"
	"ms-servicing/internal/models"
	"ms-servicing/internal/utils"
)

// Filter combines three independent predicates with AND. A zero Start or
// End leaves that side of the date range open. An empty Statuses slice, or
// one containing StatusAll, matches every status.
type Filter struct {
	Start    time.Time
	End      time.Time
	Statuses []models.TicketStatus
	Plate    string
}

// ParseFilter builds a Filter from query values. status may hold a comma
// separated list.
func ParseFilter(start, end, status, plate string) (Filter, error) {
	var f Filter
	var err error
	if f.Start, err = utils.ParseDate(start); err != nil {
		return Filter{}, fmt.Errorf("start %q: %w", start, apperr.ErrInvalidInput)
	}
	if f.End, err = utils.ParseDate(end); err != nil {
		return Filter{}, fmt.Errorf("end %q: %w", end, apperr.ErrInvalidInput)
	}
	for _, raw := range strings.Split(status, ",") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		s, err := models.ParseTicketStatus(raw)
		if err != nil {
			return Filter{}, fmt.Errorf("%v: %w", err, apperr.ErrInvalidStatus)
		}
		f.Statuses = append(f.Statuses, s)
	}
	f.Plate = strings.TrimSpace(plate)
	return f, nil
}

func (f Filter) allStatuses() bool {
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if s == models.StatusAll {
			return true
		}
	}
	return false
}

// Match tests one ticket. A ticket without a request timestamp passes the
// date predicate so that damaged records stay visible.
func (f Filter) Match(t *models.Ticket) bool {
	if !t.RequestedAt.IsZero() {
		if !f.Start.IsZero() && !utils.SameOrAfterDay(t.RequestedAt, f.Start) {
			return false
		}
		if !f.End.IsZero() && !utils.SameOrBeforeDay(t.RequestedAt, f.End) {
			return false
		}
	}

	if !f.allStatuses() {
		found := false
		for _, s := range f.Statuses {
			if t.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if f.Plate != "" && !strings.Contains(strings.ToUpper(t.Plate), strings.ToUpper(f.Plate)) {
		return false
	}
	return true
}

// FilterTickets returns the matching tickets in their original order.
func FilterTickets(tickets []models.Ticket, f Filter) []models.Ticket {
	out := make([]models.Ticket, 0, len(tickets))
	for i := range tickets {
		if f.Match(&tickets[i]) {
			out = append(out, tickets[i])
		}
	}
	return out
}
