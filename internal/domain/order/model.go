// Package order implements the order lifecycle: creation, completion with
// push fan-out to subscribers, and removal into history.
package order

import "slices"

// Order is a customer's food request.
type Order struct {
	ID     int      `json:"id"`
	Items  []string `json:"orders"`
	IsDone bool     `json:"isDone"`
}

func (o *Order) clone() Order {
	c := *o
	c.Items = slices.Clone(o.Items)
	if c.Items == nil {
		c.Items = []string{}
	}
	return c
}
