package menu

import (
	"context"
	"fmt"
	"sync"

	"orderbell/internal/core/apperror"
	"orderbell/pkg/logger"
)

// Registry is the in-memory menu. Items keep their insertion order.
type Registry struct {
	mu    sync.RWMutex
	items []Item
	index map[string]int // name -> position in items
}

// NewRegistry creates an empty menu.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Add inserts a new item. It fails with CodeDuplicate if the name is taken.
func (r *Registry) Add(ctx context.Context, name, imageURL string) (*Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[name]; exists {
		return nil, apperror.NewDuplicate("menu item", "name", name)
	}

	item := Item{Name: name, ImageURL: imageURL}
	r.index[name] = len(r.items)
	r.items = append(r.items, item)

	logger.Info(ctx, "menu item added", "name", name)
	return &item, nil
}

// Remove deletes an item by name and returns it.
func (r *Registry) Remove(ctx context.Context, name string) (*Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos, exists := r.index[name]
	if !exists {
		return nil, apperror.NewNotFound("menu item", name,
			fmt.Sprintf("There is no menu item with the name %s", name))
	}

	removed := r.items[pos]
	r.items = append(r.items[:pos], r.items[pos+1:]...)
	delete(r.index, name)
	for i := pos; i < len(r.items); i++ {
		r.index[r.items[i].Name] = i
	}

	logger.Info(ctx, "menu item removed", "name", name)
	return &removed, nil
}

// List returns a copy of all items in insertion order.
func (r *Registry) List() []Item {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Item, len(r.items))
	copy(out, r.items)
	return out
}
