package order

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"orderbell/internal/domain/notification"
	"orderbell/internal/domain/subscription"
	"orderbell/pkg/logger"
)

var tracer = otel.Tracer("orderbell/order")

// DefaultPushTimeout bounds one completion's notification fan-out.
const DefaultPushTimeout = 10 * time.Second

// Recorder receives lifecycle counters. A nil Recorder disables metrics.
type Recorder interface {
	OrderCreated()
	OrderCompleted()
	OrderDeleted()
	PushMessages(result string, n int)
}

// Push result labels passed to Recorder.PushMessages.
const (
	PushSent     = "sent"
	PushRejected = "rejected"
	PushFailed   = "failed"
	PushInvalid  = "invalid_token"
)

// ServiceConfig wires the lifecycle coordinator.
type ServiceConfig struct {
	Store         *Store
	Subscriptions *subscription.Registry
	Dispatcher    notification.Dispatcher
	Metrics       Recorder
	PushTimeout   time.Duration
}

// Service coordinates order transitions with subscription fan-out.
// It is the only writer of the order store and the subscription registry.
type Service struct {
	store       *Store
	subs        *subscription.Registry
	push        notification.Dispatcher
	metrics     Recorder
	pushTimeout time.Duration
	locks       *keyedMutex
}

// NewService creates the coordinator.
func NewService(cfg ServiceConfig) *Service {
	timeout := cfg.PushTimeout
	if timeout <= 0 {
		timeout = DefaultPushTimeout
	}
	m := cfg.Metrics
	if m == nil {
		m = nopRecorder{}
	}
	return &Service{
		store:       cfg.Store,
		subs:        cfg.Subscriptions,
		push:        cfg.Dispatcher,
		metrics:     m,
		pushTimeout: timeout,
		locks:       newKeyedMutex(),
	}
}

// Create adds a new order. explicitID, when set, becomes the order's id.
func (s *Service) Create(ctx context.Context, items []string, explicitID *int) (*Order, error) {
	ctx, span := tracer.Start(ctx, "order.create")
	defer span.End()

	o, err := s.store.Create(items, explicitID)
	if err != nil {
		recordErr(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("order.id", o.ID))
	s.metrics.OrderCreated()

	logger.Info(ctx, "order created", "order_id", o.ID, "items", len(o.Items))
	return &o, nil
}

// Complete marks an order done and notifies everyone subscribed to it.
// Delivery problems are logged, never returned: once the order is found the
// call succeeds. Completions of the same id are serialized, so each
// subscriber is notified at most once.
func (s *Service) Complete(ctx context.Context, id int) (*Order, error) {
	ctx, span := tracer.Start(ctx, "order.complete", trace.WithAttributes(attribute.Int("order.id", id)))
	defer span.End()

	unlock := s.locks.lock(id)
	defer unlock()

	o, err := s.store.MarkDone(id)
	if err != nil {
		recordErr(span, err)
		return nil, err
	}
	s.metrics.OrderCompleted()

	tokens := s.subs.Drain(id)
	span.SetAttributes(attribute.Int("subscriptions.drained", len(tokens)))
	logger.Info(ctx, "order done", "order_id", id, "subscribers", len(tokens))

	s.notify(ctx, id, tokens)
	return &o, nil
}

// Delete removes an order into history. Orders need not be done first.
func (s *Service) Delete(ctx context.Context, id int) (*Order, error) {
	ctx, span := tracer.Start(ctx, "order.delete", trace.WithAttributes(attribute.Int("order.id", id)))
	defer span.End()

	o, err := s.store.Delete(id)
	if err != nil {
		recordErr(span, err)
		return nil, err
	}
	s.metrics.OrderDeleted()

	logger.Info(ctx, "order deleted", "order_id", id, "was_done", o.IsDone)
	return &o, nil
}

// Subscribe registers token for the completion of order id.
func (s *Service) Subscribe(ctx context.Context, id int, token string) error {
	return s.subs.Subscribe(ctx, id, token)
}

// Unsubscribe withdraws token from order id.
func (s *Service) Unsubscribe(ctx context.Context, id int, token string) error {
	return s.subs.Unsubscribe(ctx, id, token)
}

// List returns active orders.
func (s *Service) List() []Order {
	return s.store.List()
}

// History returns removed orders.
func (s *Service) History() []Order {
	return s.store.History()
}

// notify sends the ready message to tokens. The fan-out runs to completion
// even if the request that triggered it goes away.
func (s *Service) notify(ctx context.Context, id int, tokens []string) {
	if len(tokens) == 0 {
		return
	}
	log := logger.FromContext(ctx).WithComponent("push").With("order_id", id)

	messages := make([]notification.Message, 0, len(tokens))
	for _, token := range tokens {
		if !s.push.IsValidToken(token) {
			log.Warnw("push token is not a valid expo push token, skipping", "token", token)
			s.metrics.PushMessages(PushInvalid, 1)
			continue
		}
		messages = append(messages, notification.OrderReady(token, id))
	}
	if len(messages) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.pushTimeout)
	defer cancel()

	for i, chunk := range s.push.Chunk(messages) {
		tickets, err := s.push.Send(ctx, chunk)
		if err != nil {
			log.Errorw("push chunk failed", "chunk", i, "size", len(chunk), "error", err)
			s.metrics.PushMessages(PushFailed, len(chunk))
			continue
		}

		sent := 0
		for j, t := range tickets {
			if t.OK() {
				sent++
				continue
			}
			to := ""
			if j < len(chunk) {
				to = chunk[j].To
			}
			log.Warnw("push message rejected", "token", to, "message", t.Message, "details", t.Details)
		}
		s.metrics.PushMessages(PushSent, sent)
		s.metrics.PushMessages(PushRejected, len(tickets)-sent)
	}
}

func recordErr(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

type nopRecorder struct{}

func (nopRecorder) OrderCreated() {}
func (nopRecorder) OrderCompleted() {}
func (nopRecorder) OrderDeleted() {}
func (nopRecorder) PushMessages(string, int) {}
