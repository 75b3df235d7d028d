package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmsync/internal/domain/models"
	"github.com/mamadbah2/farmsync/internal/server/middleware"
)

// FinanceService lists and records financial transactions.
type FinanceService interface {
	List(ctx context.Context, ownerID string) ([]models.FinancialTransaction, error)
	Record(ctx context.Context, ownerID string, kind models.TransactionType, req models.TransactionRequest) (models.FinancialTransaction, error)
}

// FinanceHandler serves /api/financials.
type FinanceHandler struct {
	svc    FinanceService
	logger *zap.Logger
}

// NewFinanceHandler constructs the financials handler.
func NewFinanceHandler(svc FinanceService, logger *zap.Logger) *FinanceHandler {
	return &FinanceHandler{svc: svc, logger: orNop(logger)}
}

// List returns the owner's transactions.
func (h *FinanceHandler) List(c *gin.Context) {
	txs, err := h.svc.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, txs)
}

// AddRevenue books a revenue.
func (h *FinanceHandler) AddRevenue(c *gin.Context) {
	h.record(c, models.TransactionRevenue)
}

// AddExpense books an expense.
func (h *FinanceHandler) AddExpense(c *gin.Context) {
	h.record(c, models.TransactionExpense)
}

func (h *FinanceHandler) record(c *gin.Context, kind models.TransactionType) {
	var req models.TransactionRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	tx, err := h.svc.Record(c.Request.Context(), middleware.UserID(c), kind, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, tx)
}
