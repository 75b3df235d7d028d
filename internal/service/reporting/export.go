package reporting

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/farmsync/internal/domain/models"
)

const (
	summarySheet       = "Summary"
	transactionsSheet  = "Transactions"
	yieldsSheet        = "Yields"
	profitabilitySheet = "Profitability"
	breakdownSheet     = "Breakdown"
)

// ExportWorkbook writes the owner's figures as an XLSX workbook.
func (s *Service) ExportWorkbook(ctx context.Context, ownerID string, w io.Writer) error {
	yields, txs, err := s.load(ctx, ownerID)
	if err != nil {
		return err
	}
	reports := BuildReports(yields, txs, s.now().In(s.opts.Location), s.opts.TrendMonths)

	f, err := buildWorkbook(Totals(txs), txs, yields, reports)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func buildWorkbook(summary models.FinancialSummary, txs []models.FinancialTransaction, yields []models.Yield, reports models.Reports) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	sheets := map[string][][]interface{}{
		summarySheet: {
			{"Metric", "Value"},
			{"Total revenue", summary.TotalRevenue},
			{"Total expenses", summary.TotalExpenses},
			{"Net profit", summary.NetProfit},
		},
		transactionsSheet: {{"Date", "Type", "Description", "Amount", "Crop"}},
		yieldsSheet:       {{"Harvest date", "Crop", "Quantity", "Unit"}},
		profitabilitySheet: {
			{"Crop", "Gross revenue", "Gross expense", "Net"},
		},
		breakdownSheet: {{"Kind", "Category", "Amount"}},
	}

	for _, tx := range txs {
		sheets[transactionsSheet] = append(sheets[transactionsSheet], []interface{}{
			tx.Date.Format(dateLayout), string(tx.Type), tx.Description, tx.Amount, tx.CropLabel(),
		})
	}
	for _, y := range yields {
		sheets[yieldsSheet] = append(sheets[yieldsSheet], []interface{}{
			y.HarvestDate.Format(dateLayout), y.CropName, y.Quantity, string(y.Unit),
		})
	}
	for _, p := range reports.Profitability {
		sheets[profitabilitySheet] = append(sheets[profitabilitySheet], []interface{}{p.Name, p.GrossRevenue, p.GrossExpense, p.Net})
	}
	for _, p := range reports.RevenueBreakdown {
		sheets[breakdownSheet] = append(sheets[breakdownSheet], []interface{}{"Revenue", p.Name, p.Value})
	}
	for _, p := range reports.ExpenseBreakdown {
		sheets[breakdownSheet] = append(sheets[breakdownSheet], []interface{}{"Expense", p.Name, p.Value})
	}

	for _, name := range []string{summarySheet, transactionsSheet, yieldsSheet, profitabilitySheet, breakdownSheet} {
		if name != summarySheet {
			if _, err := f.NewSheet(name); err != nil {
				return nil, fmt.Errorf("create sheet %s: %w", name, err)
			}
		}
		for i, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				return nil, err
			}
			row := row
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				return nil, fmt.Errorf("fill sheet %s: %w", name, err)
			}
		}
	}

	return f, nil
}
