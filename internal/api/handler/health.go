package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/producelens/internal/catalog"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	store *catalog.Store
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store *catalog.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

// Health returns the health status of the service
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Catalog handles GET /catalog: label count and reference data coverage.
func (h *HealthHandler) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Stats())
}
