package sheets

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/farmsync/internal/domain/models"
)

const (
	financialsRange = "Financials!A:G"
	reportsRange    = "DailyReports!A:H"

	dayLayout = "2006-01-02"
)

// Mirror copies ledger bookings and daily snapshots into a spreadsheet so the
// farm owner can work with them outside the dashboard. A Mirror without a
// repository does nothing.
type Mirror struct {
	repo   Repository
	logger *zap.Logger
}

// NewMirror wraps a sheets repository. repo may be nil.
func NewMirror(repo Repository, logger *zap.Logger) *Mirror {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mirror{repo: repo, logger: logger}
}

// Enabled reports whether rows are actually written.
func (m *Mirror) Enabled() bool {
	return m != nil && m.repo != nil
}

// MirrorTransaction appends a booking row: date, owner, id, type,
// description, amount, crop.
func (m *Mirror) MirrorTransaction(ctx context.Context, tx models.FinancialTransaction) error {
	if !m.Enabled() {
		return nil
	}

	row := []interface{}{
		tx.Date.UTC().Format(dayLayout),
		tx.OwnerID,
		tx.ID,
		string(tx.Type),
		tx.Description,
		tx.Amount,
		tx.CropLabel(),
	}
	if err := m.repo.WriteRow(ctx, financialsRange, row); err != nil {
		return fmt.Errorf("mirror transaction %s: %w", tx.ID, err)
	}
	return nil
}

// MirrorDailyReport appends a snapshot row.
func (m *Mirror) MirrorDailyReport(ctx context.Context, report models.DailyReport) error {
	if !m.Enabled() {
		return nil
	}

	row := []interface{}{
		report.Date.Format(dayLayout),
		report.OwnerID,
		report.TotalRevenue,
		report.TotalExpenses,
		report.NetProfit,
		report.TotalYield,
		report.ActiveWorkers,
		report.OutstandingLoans,
	}
	if err := m.repo.WriteRow(ctx, reportsRange, row); err != nil {
		return fmt.Errorf("mirror daily report %s: %w", report.Date.Format(dayLayout), err)
	}
	return nil
}

// MirroredDays lists the days for which an owner's snapshot is already in
// the sheet.
func (m *Mirror) MirroredDays(ctx context.Context, ownerID string) (map[string]bool, error) {
	days := map[string]bool{}
	if !m.Enabled() {
		return days, nil
	}

	rows, err := m.repo.ReadRange(ctx, reportsRange)
	if err != nil {
		return nil, fmt.Errorf("load mirrored reports: %w", err)
	}

	for _, row := range rows {
		if len(row) < 2 || fmt.Sprint(row[1]) != ownerID {
			continue
		}
		day, err := parseDay(row[0])
		if err != nil {
			m.logger.Debug("skip report row with invalid date", zap.Any("value", row[0]), zap.Error(err))
			continue
		}
		days[day.Format(dayLayout)] = true
	}
	return days, nil
}

func parseDay(value interface{}) (time.Time, error) {
	str := fmt.Sprint(value)
	if str == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if len(str) > 10 {
		str = str[:10]
	}
	return time.Parse(dayLayout, str)
}
