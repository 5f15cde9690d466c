// Package app assembles the process-wide application state.
package app

import (
	"time"

	"orderbell/internal/core/sequence"
	"orderbell/internal/domain/menu"
	"orderbell/internal/domain/notification"
	"orderbell/internal/domain/order"
	"orderbell/internal/domain/subscription"
)

// State owns every store of the service. It is built once at startup and
// lives as long as the process; nothing is persisted.
type State struct {
	Counter       *sequence.Counter
	Menu          *menu.Registry
	Orders        *order.Store
	Subscriptions *subscription.Registry
	Coordinator   *order.Service
}

// NewState wires the stores and the order lifecycle coordinator around push.
// metrics may be nil.
func NewState(push notification.Dispatcher, metrics order.Recorder, pushTimeout time.Duration) *State {
	counter := sequence.NewCounter()
	orders := order.NewStore(counter, counter.Size())
	subs := subscription.NewRegistry(push.IsValidToken)

	return &State{
		Counter:       counter,
		Menu:          menu.NewRegistry(),
		Orders:        orders,
		Subscriptions: subs,
		Coordinator: order.NewService(order.ServiceConfig{
			Store:         orders,
			Subscriptions: subs,
			Dispatcher:    push,
			Metrics:       metrics,
			PushTimeout:   pushTimeout,
		}),
	}
}
