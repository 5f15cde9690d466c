package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"orderbell/internal/app"
)

// Version is reported by /health/info.
const Version = "0.1.0"

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	state *app.State
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(state *app.State) *HealthHandler {
	return &HealthHandler{state: state}
}

// Live handles the liveness probe.
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready handles the readiness probe. All state is in memory, so a live
// process is ready.
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"checks": map[string]string{"state": "in-memory"},
	})
}

// Info returns application information.
// GET /health/info
func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"app":     "orderbell",
		"version": Version,
		"state": map[string]any{
			"active_orders": len(h.state.Orders.List()),
			"history":       len(h.state.Orders.History()),
			"menu_items":    len(h.state.Menu.List()),
			"next_order_id": h.state.Counter.Peek(),
		},
	})
}
