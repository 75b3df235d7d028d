package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmsync/internal/domain/models"
	"github.com/mamadbah2/farmsync/internal/server/middleware"
)

// InventoryService lists and adds stock items.
type InventoryService interface {
	List(ctx context.Context, ownerID string) ([]models.InventoryItem, error)
	Create(ctx context.Context, ownerID string, req models.CreateInventoryRequest) (models.InventoryItem, error)
}

// InventoryHandler serves /api/inventory.
type InventoryHandler struct {
	svc    InventoryService
	logger *zap.Logger
}

// NewInventoryHandler constructs the inventory handler.
func NewInventoryHandler(svc InventoryService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{svc: svc, logger: orNop(logger)}
}

// List returns the owner's stock.
func (h *InventoryHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Create adds a stock item.
func (h *InventoryHandler) Create(c *gin.Context) {
	var req models.CreateInventoryRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	item, err := h.svc.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}
