// Package subscription tracks which push endpoints wait for which order.
package subscription

import (
	"context"
	"slices"
	"sync"

	"orderbell/internal/core/apperror"
	"orderbell/pkg/logger"
)

// TokenValidator reports whether token is a well-formed push endpoint token.
type TokenValidator func(token string) bool

// tokenSet is a set of tokens remembering first-insertion order.
type tokenSet struct {
	order   []string
	members map[string]struct{}
}

func (s *tokenSet) add(token string) bool {
	if _, ok := s.members[token]; ok {
		return false
	}
	s.members[token] = struct{}{}
	s.order = append(s.order, token)
	return true
}

func (s *tokenSet) remove(token string) bool {
	if _, ok := s.members[token]; !ok {
		return false
	}
	delete(s.members, token)
	if i := slices.Index(s.order, token); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	return true
}

// Registry maps order id to the set of subscribed tokens.
type Registry struct {
	mu       sync.Mutex
	sets     map[int]*tokenSet
	validate TokenValidator
}

// NewRegistry creates an empty registry. validate is consulted on every Subscribe.
func NewRegistry(validate TokenValidator) *Registry {
	return &Registry{
		sets:     make(map[int]*tokenSet),
		validate: validate,
	}
}

// Subscribe adds token to the set for orderID. Subscribing twice is a no-op.
func (r *Registry) Subscribe(ctx context.Context, orderID int, token string) error {
	if !r.validate(token) {
		return apperror.NewInvalidToken(token)
	}

	r.mu.Lock()
	set, ok := r.sets[orderID]
	if !ok {
		set = &tokenSet{members: make(map[string]struct{})}
		r.sets[orderID] = set
	}
	added := set.add(token)
	r.mu.Unlock()

	logger.Debug(ctx, "subscription stored", "order_id", orderID, "new", added)
	return nil
}

// Unsubscribe removes token from the set for orderID. An emptied set is kept.
func (r *Registry) Unsubscribe(ctx context.Context, orderID int, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.sets[orderID]
	if !ok {
		return apperror.NewNoSubscriptions(orderID)
	}
	if !set.remove(token) {
		return apperror.NewTokenNotSubscribed(orderID, token)
	}

	logger.Debug(ctx, "subscription removed", "order_id", orderID)
	return nil
}

// Drain removes the whole set for orderID and returns its tokens in subscription order.
// It returns an empty slice when nobody subscribed.
func (r *Registry) Drain(orderID int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.sets[orderID]
	if !ok {
		return []string{}
	}
	delete(r.sets, orderID)
	return set.order
}

// Count returns the number of tokens waiting for orderID.
func (r *Registry) Count(orderID int) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if set, ok := r.sets[orderID]; ok {
		return len(set.order)
	}
	return 0
}

// Has reports whether a set, possibly empty, exists for orderID.
func (r *Registry) Has(orderID int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.sets[orderID]
	return ok
}
