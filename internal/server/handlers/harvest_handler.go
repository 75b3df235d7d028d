package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmsync/internal/domain/models"
	"github.com/mamadbah2/farmsync/internal/server/middleware"
)

// HarvestService manages yields and their sales.
type HarvestService interface {
	ListYields(ctx context.Context, ownerID string) ([]models.Yield, error)
	CreateYield(ctx context.Context, ownerID string, req models.CreateYieldRequest) (models.Yield, error)
	ListSales(ctx context.Context, ownerID string) ([]models.Sale, error)
	CreateSale(ctx context.Context, ownerID string, req models.CreateSaleRequest) (models.Sale, error)
}

// HarvestHandler serves /api/yields and /api/sales.
type HarvestHandler struct {
	svc    HarvestService
	logger *zap.Logger
}

// NewHarvestHandler constructs the harvest handler.
func NewHarvestHandler(svc HarvestService, logger *zap.Logger) *HarvestHandler {
	return &HarvestHandler{svc: svc, logger: orNop(logger)}
}

// ListYields returns the owner's harvests with their unsold quantity.
func (h *HarvestHandler) ListYields(c *gin.Context) {
	yields, err := h.svc.ListYields(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, yields)
}

// CreateYield records a harvest.
func (h *HarvestHandler) CreateYield(c *gin.Context) {
	var req models.CreateYieldRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	yield, err := h.svc.CreateYield(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, yield)
}

// ListSales returns the owner's sales.
func (h *HarvestHandler) ListSales(c *gin.Context) {
	sales, err := h.svc.ListSales(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sales)
}

// CreateSale records a sale; selling more than the yield has left is a 422.
func (h *HarvestHandler) CreateSale(c *gin.Context) {
	var req models.CreateSaleRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	sale, err := h.svc.CreateSale(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}
