package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmsync/internal/domain/models"
	"github.com/mamadbah2/farmsync/internal/server/middleware"
)

// WorkerService manages workers, attendance, loans and payroll.
type WorkerService interface {
	List(ctx context.Context, ownerID string) ([]models.Worker, error)
	Create(ctx context.Context, ownerID string, req models.CreateWorkerRequest) (models.Worker, error)
	Get(ctx context.Context, ownerID, workerID string) (models.WorkerDetails, error)
	MarkAttendance(ctx context.Context, ownerID, workerID string, req models.AttendanceRequest) (models.AttendanceRecord, error)
	AddLoan(ctx context.Context, ownerID, workerID string, req models.LoanRequest) (models.LoanLedgerEntry, error)
	RunPayroll(ctx context.Context, ownerID, workerID string, req models.PayrollRequest) (models.PayResult, error)
}

// WorkersHandler serves /api/workers.
type WorkersHandler struct {
	svc    WorkerService
	logger *zap.Logger
}

// NewWorkersHandler constructs the workers handler.
func NewWorkersHandler(svc WorkerService, logger *zap.Logger) *WorkersHandler {
	return &WorkersHandler{svc: svc, logger: orNop(logger)}
}

// List returns the owner's workers.
func (h *WorkersHandler) List(c *gin.Context) {
	workers, err := h.svc.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, workers)
}

// Create adds a worker.
func (h *WorkersHandler) Create(c *gin.Context) {
	var req models.CreateWorkerRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	worker, err := h.svc.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, worker)
}

// Get returns one worker with attendance and loan ledger.
func (h *WorkersHandler) Get(c *gin.Context) {
	details, err := h.svc.Get(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// MarkAttendance upserts the attendance of one day.
func (h *WorkersHandler) MarkAttendance(c *gin.Context) {
	var req models.AttendanceRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	record, err := h.svc.MarkAttendance(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// AddLoan records a loan against the worker.
func (h *WorkersHandler) AddLoan(c *gin.Context) {
	var req models.LoanRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	entry, err := h.svc.AddLoan(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// RunPayroll pays the worker for the requested period. An empty body runs the
// default trailing period without a deduction.
func (h *WorkersHandler) RunPayroll(c *gin.Context) {
	var req models.PayrollRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, h.logger, &req) {
		return
	}

	result, err := h.svc.RunPayroll(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.PayrollResponse{Message: "Payroll processed", PayResult: result})
}
