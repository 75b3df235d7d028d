package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmsync/internal/domain/models"
	"github.com/mamadbah2/farmsync/internal/server/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportService builds the dashboard, the reports page and the workbook export.
type ReportService interface {
	Dashboard(ctx context.Context, ownerID string) (models.Dashboard, error)
	Reports(ctx context.Context, ownerID string) (models.Reports, error)
	ExportWorkbook(ctx context.Context, ownerID string, w io.Writer) error
}

// ReportsHandler serves /api/dashboard and /api/reports.
type ReportsHandler struct {
	svc    ReportService
	logger *zap.Logger
	now    func() time.Time
}

// NewReportsHandler constructs the reporting handler.
func NewReportsHandler(svc ReportService, logger *zap.Logger) *ReportsHandler {
	return &ReportsHandler{svc: svc, logger: orNop(logger), now: time.Now}
}

// Dashboard serves the summary page, cached per owner.
func (h *ReportsHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.svc.Dashboard(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// Reports serves the breakdowns and trends.
func (h *ReportsHandler) Reports(c *gin.Context) {
	reports, err := h.svc.Reports(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

// Export streams the reports workbook. The workbook is rendered to memory
// first so a failure still produces a JSON error.
func (h *ReportsHandler) Export(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.svc.ExportWorkbook(c.Request.Context(), middleware.UserID(c), &buf); err != nil {
		respondError(c, h.logger, err)
		return
	}

	filename := fmt.Sprintf("farmsync-report-%s.xlsx", h.now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
