package dto

// CreateMenuItemRequest is the body of POST /menuItem.
type CreateMenuItemRequest struct {
	Name     string `json:"name" binding:"required"`
	ImageURL string `json:"imageUrl"`
}

// RemoveMenuItemRequest is the body of DELETE /menuItem.
type RemoveMenuItemRequest struct {
	Name string `json:"name" binding:"required"`
}
