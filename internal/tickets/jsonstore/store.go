// Package jsonstore keeps tickets in a single JSON document on disk. It is the
// file-backed counterpart of the SQL store and satisfies the same interface.
package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"ms-servicing/internal/apperr"
	"ms-servicing/internal/models"
)

type document struct {
	NextID     int64           `json:"next_id"`
	NextLineID int64           `json:"next_line_id"`
	Tickets    []models.Ticket `json:"tickets"`
}

type Store struct {
	mu   sync.Mutex
	path string
	doc  document
	Now  func() time.Time
}

// Open loads path, or starts empty when the file does not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path, doc: document{NextID: 1, NextLineID: 1}, Now: time.Now}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, apperr.Storage("read ticket file", err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.doc); err != nil {
		return nil, fmt.Errorf("failed to parse ticket file %s: %w", path, err)
	}
	for _, t := range s.doc.Tickets {
		if t.ID >= s.doc.NextID {
			s.doc.NextID = t.ID + 1
		}
		for _, l := range t.Lines {
			if l.ID >= s.doc.NextLineID {
				s.doc.NextLineID = l.ID + 1
			}
		}
	}
	return s, nil
}

// flush writes through a temp file and rename so readers never see a
// half-written document.
func (s *Store) flush() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".tickets-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *Store) index(id int64) int {
	for i := range s.doc.Tickets {
		if s.doc.Tickets[i].ID == id {
			return i
		}
	}
	return -1
}

func clone(t models.Ticket) models.Ticket {
	t.ServiceTypes = append([]string(nil), t.ServiceTypes...)
	t.Lines = append([]models.TicketLine(nil), t.Lines...)
	if t.MechanicID != nil {
		id := *t.MechanicID
		t.MechanicID = &id
	}
	return t
}

func (s *Store) Insert(_ context.Context, t *models.Ticket) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = s.doc.NextID
	for i := range t.Lines {
		t.Lines[i].ID = s.doc.NextLineID + int64(i)
		t.Lines[i].TicketID = t.ID
	}

	prev := s.doc
	s.doc.NextID++
	s.doc.NextLineID += int64(len(t.Lines))
	s.doc.Tickets = append(append([]models.Ticket(nil), prev.Tickets...), clone(*t))

	if err := s.flush(); err != nil {
		s.doc = prev
		return 0, apperr.Storage("insert ticket", err)
	}
	return t.ID, nil
}

func (s *Store) Get(_ context.Context, id int64) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return nil, nil
	}
	t := clone(s.doc.Tickets[i])
	return &t, nil
}

func (s *Store) List(_ context.Context) ([]models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Ticket, 0, len(s.doc.Tickets))
	for _, t := range s.doc.Tickets {
		out = append(out, clone(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ListByCustomer(ctx context.Context, customerID int64) ([]models.Ticket, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, t := range all {
		if t.CustomerID == customerID {
			out = append(out, t)
		}
	}
	return out, nil
}

// UpdateFields applies update to the stored ticket under the store lock,
// which makes the guard check and the write a single step.
func (s *Store) UpdateFields(_ context.Context, id int64, update models.TicketUpdate) (bool, error) {
	if update.Empty() {
		return false, fmt.Errorf("ticket %d: nothing to update: %w", id, apperr.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 || !update.Matches(&s.doc.Tickets[i]) {
		return false, nil
	}

	prev := clone(s.doc.Tickets[i])
	update.Apply(&s.doc.Tickets[i], s.Now().UTC())
	if err := s.flush(); err != nil {
		s.doc.Tickets[i] = prev
		return false, apperr.Storage("update ticket", err)
	}
	return true, nil
}

func (s *Store) Delete(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return false, nil
	}
	prev := s.doc.Tickets
	next := make([]models.Ticket, 0, len(prev)-1)
	next = append(next, prev[:i]...)
	next = append(next, prev[i+1:]...)
	s.doc.Tickets = next

	if err := s.flush(); err != nil {
		s.doc.Tickets = prev
		return false, apperr.Storage("delete ticket", err)
	}
	return true, nil
}
