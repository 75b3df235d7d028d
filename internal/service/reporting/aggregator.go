package reporting

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/farmsync/internal/domain/models"
)

const (
	otherCropLabel    = "Other"
	salariesCategory  = "Salaries"
	loansCategory     = "Loans"
	otherExpenseLabel = "Other Expenses"

	monthLayout = "2006-01"
)

// orderedSums accumulates decimal totals per key while remembering the order
// in which keys were first seen.
type orderedSums struct {
	keys []string
	sums map[string]decimal.Decimal
}

func newOrderedSums() *orderedSums {
	return &orderedSums{sums: make(map[string]decimal.Decimal)}
}

func (o *orderedSums) add(key string, amount decimal.Decimal) {
	current, ok := o.sums[key]
	if !ok {
		o.keys = append(o.keys, key)
	}
	o.sums[key] = current.Add(amount)
}

func (o *orderedSums) points() []models.ChartPoint {
	out := make([]models.ChartPoint, 0, len(o.keys))
	for _, key := range o.keys {
		out = append(out, models.ChartPoint{Name: key, Value: o.sums[key].InexactFloat64()})
	}
	return out
}

func amountOf(value float64) (decimal.Decimal, bool) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(value), true
}

// RevenueBreakdown sums revenue per crop. Revenue without a crop is reported
// under "Other".
func RevenueBreakdown(txs []models.FinancialTransaction) []models.ChartPoint {
	groups := newOrderedSums()
	for _, tx := range txs {
		if tx.Type != models.TransactionRevenue {
			continue
		}
		amount, ok := amountOf(tx.Amount)
		if !ok {
			continue
		}
		crop := tx.CropLabel()
		if crop == "" {
			crop = otherCropLabel
		}
		groups.add(crop, amount)
	}
	return groups.points()
}

// ExpenseCategory maps an expense description to its breakdown category.
// Matching is case-sensitive.
func ExpenseCategory(description string) string {
	switch {
	case strings.Contains(description, "salary"):
		return salariesCategory
	case strings.Contains(description, "Loan"):
		return loansCategory
	default:
		return otherExpenseLabel
	}
}

// ExpenseBreakdown sums expenses per description category.
func ExpenseBreakdown(txs []models.FinancialTransaction) []models.ChartPoint {
	groups := newOrderedSums()
	for _, tx := range txs {
		if tx.Type != models.TransactionExpense {
			continue
		}
		amount, ok := amountOf(tx.Amount)
		if !ok {
			continue
		}
		groups.add(ExpenseCategory(tx.Description), amount)
	}
	return groups.points()
}

// CropProfitability accumulates gross revenue and gross expense for every
// crop that appears on a transaction. Transactions without a crop are ignored.
func CropProfitability(txs []models.FinancialTransaction) []models.CropProfitability {
	type totals struct {
		revenue decimal.Decimal
		expense decimal.Decimal
	}

	var order []string
	byCrop := make(map[string]*totals)

	for _, tx := range txs {
		crop := tx.CropLabel()
		if crop == "" {
			continue
		}
		amount, ok := amountOf(tx.Amount)
		if !ok {
			continue
		}

		t, seen := byCrop[crop]
		if !seen {
			t = &totals{}
			byCrop[crop] = t
			order = append(order, crop)
		}

		switch tx.Type {
		case models.TransactionRevenue:
			t.revenue = t.revenue.Add(amount)
		case models.TransactionExpense:
			t.expense = t.expense.Add(amount)
		}
	}

	out := make([]models.CropProfitability, 0, len(order))
	for _, crop := range order {
		t := byCrop[crop]
		out = append(out, models.CropProfitability{
			Name:         crop,
			GrossRevenue: t.revenue.InexactFloat64(),
			GrossExpense: t.expense.InexactFloat64(),
			Net:          t.revenue.Sub(t.expense).InexactFloat64(),
		})
	}
	return out
}

// YieldReport emits one point per yield, in input order. Yields of the same
// crop are not merged.
func YieldReport(yields []models.Yield) []models.ChartPoint {
	out := make([]models.ChartPoint, 0, len(yields))
	for _, y := range yields {
		value := y.Quantity
		if math.IsNaN(value) || math.IsInf(value, 0) {
			value = 0
		}
		out = append(out, models.ChartPoint{Name: y.CropName, Value: value})
	}
	return out
}

// FinancialTrends totals revenue and expenses per calendar month for the
// trailing months ending with now's month, oldest first. Months without
// transactions are reported with zero totals.
func FinancialTrends(txs []models.FinancialTransaction, now time.Time, months int) []models.TrendPoint {
	if months < 1 {
		return []models.TrendPoint{}
	}

	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(months - 1), 0)

	type totals struct {
		revenue decimal.Decimal
		expense decimal.Decimal
	}
	buckets := make(map[string]*totals, months)
	labels := make([]string, 0, months)
	for i := 0; i < months; i++ {
		label := start.AddDate(0, i, 0).Format(monthLayout)
		labels = append(labels, label)
		buckets[label] = &totals{}
	}

	for _, tx := range txs {
		bucket, ok := buckets[tx.Date.In(now.Location()).Format(monthLayout)]
		if !ok {
			continue
		}
		amount, ok := amountOf(tx.Amount)
		if !ok {
			continue
		}
		switch tx.Type {
		case models.TransactionRevenue:
			bucket.revenue = bucket.revenue.Add(amount)
		case models.TransactionExpense:
			bucket.expense = bucket.expense.Add(amount)
		}
	}

	out := make([]models.TrendPoint, 0, months)
	for _, label := range labels {
		b := buckets[label]
		out = append(out, models.TrendPoint{
			Month:    label,
			Revenue:  b.revenue.InexactFloat64(),
			Expenses: b.expense.InexactFloat64(),
		})
	}
	return out
}

// Totals returns the overall revenue, expenses and their difference.
func Totals(txs []models.FinancialTransaction) models.FinancialSummary {
	revenue, expense := decimal.Zero, decimal.Zero
	for _, tx := range txs {
		amount, ok := amountOf(tx.Amount)
		if !ok {
			continue
		}
		switch tx.Type {
		case models.TransactionRevenue:
			revenue = revenue.Add(amount)
		case models.TransactionExpense:
			expense = expense.Add(amount)
		}
	}
	return models.FinancialSummary{
		TotalRevenue:  revenue.InexactFloat64(),
		TotalExpenses: expense.InexactFloat64(),
		NetProfit:     revenue.Sub(expense).InexactFloat64(),
	}
}

// TotalYield sums the quantity of every yield regardless of unit.
func TotalYield(yields []models.Yield) float64 {
	total := decimal.Zero
	for _, y := range yields {
		if amount, ok := amountOf(y.Quantity); ok {
			total = total.Add(amount)
		}
	}
	return total.InexactFloat64()
}

// BuildReports assembles every chart series of the reports page.
func BuildReports(yields []models.Yield, txs []models.FinancialTransaction, now time.Time, months int) models.Reports {
	return models.Reports{
		Yields:           YieldReport(yields),
		Profitability:    CropProfitability(txs),
		RevenueBreakdown: RevenueBreakdown(txs),
		ExpenseBreakdown: ExpenseBreakdown(txs),
		FinancialTrends:  FinancialTrends(txs, now, months),
	}
}
