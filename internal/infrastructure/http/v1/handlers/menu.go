package handlers

import (
	"github.com/gin-gonic/gin"

	"orderbell/internal/domain/menu"
	"orderbell/internal/infrastructure/http/v1/dto"
)

// MenuHandler serves the menu.
type MenuHandler struct {
	*BaseHandler
	menu *menu.Registry
}

// NewMenuHandler creates a menu handler.
func NewMenuHandler(base *BaseHandler, registry *menu.Registry) *MenuHandler {
	return &MenuHandler{BaseHandler: base, menu: registry}
}

// List returns all menu items.
// GET /menu
func (h *MenuHandler) List(c *gin.Context) {
	h.OK(c, h.menu.List())
}

// Add creates a menu item.
// POST /menuItem
func (h *MenuHandler) Add(c *gin.Context) {
	var req dto.CreateMenuItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	item, err := h.menu.Add(c.Request.Context(), req.Name, req.ImageURL)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, item)
}

// Remove deletes a menu item.
// DELETE /menuItem
func (h *MenuHandler) Remove(c *gin.Context) {
	var req dto.RemoveMenuItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	item, err := h.menu.Remove(c.Request.Context(), req.Name)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, item)
}
