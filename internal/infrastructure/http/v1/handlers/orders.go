package handlers

import (
	"github.com/gin-gonic/gin"

	"orderbell/internal/domain/order"
	"orderbell/internal/infrastructure/http/v1/dto"
)

// OrderHandler serves orders, history and subscriptions.
type OrderHandler struct {
	*BaseHandler
	orders *order.Service
}

// NewOrderHandler creates an order handler.
func NewOrderHandler(base *BaseHandler, orders *order.Service) *OrderHandler {
	return &OrderHandler{BaseHandler: base, orders: orders}
}

// List returns active orders.
// GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	h.OK(c, h.orders.List())
}

// History returns removed orders.
// GET /history
func (h *OrderHandler) History(c *gin.Context) {
	h.OK(c, h.orders.History())
}

// Create adds an order.
// POST /order
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	o, err := h.orders.Create(c.Request.Context(), req.Orders, req.ID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, o)
}

// Complete marks an order done and notifies its subscribers.
// PUT /order, PUT /order/done
func (h *OrderHandler) Complete(c *gin.Context) {
	var req dto.OrderIDRequest
	if !h.BindJSON(c, &req) {
		return
	}

	o, err := h.orders.Complete(c.Request.Context(), *req.ID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, o)
}

// Delete moves an order into history.
// DELETE /order
func (h *OrderHandler) Delete(c *gin.Context) {
	var req dto.OrderIDRequest
	if !h.BindJSON(c, &req) {
		return
	}

	o, err := h.orders.Delete(c.Request.Context(), *req.ID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, o)
}

// Subscribe registers a push token for an order.
// POST /order/subscribe
func (h *OrderHandler) Subscribe(c *gin.Context) {
	var req dto.SubscriptionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.orders.Subscribe(c.Request.Context(), *req.ID, req.Token); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.Subscribed(*req.ID, req.Token))
}

// Unsubscribe withdraws a push token from an order.
// POST /order/unsubscribe
func (h *OrderHandler) Unsubscribe(c *gin.Context) {
	var req dto.SubscriptionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.orders.Unsubscribe(c.Request.Context(), *req.ID, req.Token); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.Unsubscribed(*req.ID, req.Token))
}
