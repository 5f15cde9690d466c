// Package menu holds the menu of items that can be ordered.
package menu

// Item is a menu entry. Name is the unique, case-sensitive key.
type Item struct {
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}
