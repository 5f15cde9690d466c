package order

import (
	"fmt"
	"slices"
	"sync"

	"orderbell/internal/core/apperror"
	"orderbell/internal/core/sequence"
)

// Store holds active orders in creation order and the history of removed ones.
type Store struct {
	mu      sync.RWMutex
	seq     sequence.Generator
	idSpace int // distinct ids seq can produce
	active  []*Order
	byID    map[int]*Order
	history []Order
}

// NewStore creates an empty store drawing ids from seq. idSpace bounds how
// many draws Create makes while skipping ids held by active orders.
func NewStore(seq sequence.Generator, idSpace int) *Store {
	if idSpace < 1 {
		idSpace = 1
	}
	return &Store{
		seq:     seq,
		idSpace: idSpace,
		byID:    make(map[int]*Order),
	}
}

// Create inserts a new, not yet done order. With explicitID the sequence is
// reset so the order receives exactly that id; an explicit id already used by
// an active order fails with CodeDuplicateID.
func (s *Store) Create(items []string, explicitID *int) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id int
	if explicitID != nil {
		if _, taken := s.byID[*explicitID]; taken {
			return Order{}, apperror.NewDuplicateID(*explicitID)
		}
		s.seq.ResetFrom(*explicitID)
		id = s.seq.Next()
	} else {
		var ok bool
		if id, ok = s.drawFree(); !ok {
			return Order{}, apperror.NewBusinessRule(apperror.CodeOrderIDsExhausted,
				"Every order id is held by an active order")
		}
	}

	o := &Order{ID: id, Items: slices.Clone(items)}
	if o.Items == nil {
		o.Items = []string{}
	}
	s.active = append(s.active, o)
	s.byID[id] = o
	return o.clone(), nil
}

// drawFree advances the sequence past ids held by active orders.
func (s *Store) drawFree() (int, bool) {
	for range s.idSpace {
		id := s.seq.Next()
		if _, taken := s.byID[id]; !taken {
			return id, true
		}
	}
	return 0, false
}

// MarkDone sets IsDone on an active order and returns the updated order.
func (s *Store) MarkDone(id int) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.byID[id]
	if !ok {
		return Order{}, notFound(id)
	}
	o.IsDone = true
	return o.clone(), nil
}

// Delete moves an active order into history and returns it.
func (s *Store) Delete(id int) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.byID[id]
	if !ok {
		return Order{}, notFound(id)
	}
	delete(s.byID, id)
	s.active = slices.DeleteFunc(s.active, func(a *Order) bool { return a == o })

	removed := o.clone()
	s.history = append(s.history, removed)
	return removed.clone(), nil
}

// Find returns the active order with id.
func (s *Store) Find(id int) (Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.byID[id]
	if !ok {
		return Order{}, false
	}
	return o.clone(), true
}

// List returns all active orders in creation order.
func (s *Store) List() []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Order, 0, len(s.active))
	for _, o := range s.active {
		out = append(out, o.clone())
	}
	return out
}

// History returns removed orders in removal order.
func (s *Store) History() []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Order, 0, len(s.history))
	for i := range s.history {
		out = append(out, s.history[i].clone())
	}
	return out
}

func notFound(id int) *apperror.AppError {
	return apperror.NewNotFound("order", id, fmt.Sprintf("There is no order with the id %d", id))
}
