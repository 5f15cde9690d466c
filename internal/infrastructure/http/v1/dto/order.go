package dto

import "fmt"

// CreateOrderRequest is the body of POST /order.
type CreateOrderRequest struct {
	Orders []string `json:"orders" binding:"required"`
	// ID forces the id of the new order
	ID *int `json:"id"`
}

// OrderIDRequest is the body of PUT/DELETE /order.
type OrderIDRequest struct {
	ID *int `json:"id" binding:"required"`
}

// SubscriptionRequest is the body of the subscribe/unsubscribe endpoints.
type SubscriptionRequest struct {
	ID    *int   `json:"id" binding:"required"`
	Token string `json:"token" binding:"required"`
}

// Subscribed builds the subscribe confirmation.
func Subscribed(id int, token string) MessageResponse {
	return MessageResponse{Message: fmt.Sprintf("Successfully subscribed to order #%d with token %s", id, token)}
}

// Unsubscribed builds the unsubscribe confirmation.
func Unsubscribed(id int, token string) MessageResponse {
	return MessageResponse{Message: fmt.Sprintf("Successfully unsubscribed from order #%d with token %s", id, token)}
}
