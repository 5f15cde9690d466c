// Package notification defines push messages and the delivery contract.
package notification

import (
	"context"
	"fmt"
)

const (
	readyTitle = "Din mat är klar 🍽️"
	readyBody  = "Nu kan du gå och hämta beställning #%d"
)

// Message is a single push notification.
type Message struct {
	To    string `json:"to"`
	Sound string `json:"sound,omitempty"`
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
}

// Ticket is the per-message delivery receipt returned by the push service.
type Ticket struct {
	Status  string         `json:"status"` // "ok" or "error"
	ID      string         `json:"id,omitempty"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// OK reports whether the push service accepted the message.
func (t Ticket) OK() bool {
	return t.Status == "ok"
}

// Dispatcher delivers push messages in batches.
type Dispatcher interface {
	// IsValidToken reports whether token has the endpoint token format.
	IsValidToken(token string) bool

	// Chunk splits messages into batches the service accepts in one call.
	Chunk(messages []Message) [][]Message

	// Send delivers one batch. Tickets are returned in message order.
	Send(ctx context.Context, batch []Message) ([]Ticket, error)
}

// OrderReady builds the "your food is ready" message for token.
func OrderReady(token string, orderID int) Message {
	return Message{
		To:    token,
		Sound: "default",
		Title: readyTitle,
		Body:  fmt.Sprintf(readyBody, orderID),
	}
}
