package reporting

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/farmsync/internal/domain/models"
)

func crop(name string) *string { return &name }

func revenue(amount float64, cropName *string) models.FinancialTransaction {
	return models.FinancialTransaction{Type: models.TransactionRevenue, Amount: amount, Crop: cropName, Description: "revenue"}
}

func expense(description string, amount float64, cropName *string) models.FinancialTransaction {
	return models.FinancialTransaction{Type: models.TransactionExpense, Description: description, Amount: amount, Crop: cropName}
}

func TestRevenueBreakdown(t *testing.T) {
	txs := []models.FinancialTransaction{
		revenue(100, crop("Maize")),
		revenue(50, nil),
		expense("Fertilizer", 30, crop("Maize")),
		revenue(25, crop("Rice")),
		revenue(10, crop("")),
		revenue(200, crop("Maize")),
	}

	got := RevenueBreakdown(txs)
	assert.Equal(t, []models.ChartPoint{
		{Name: "Maize", Value: 300},
		{Name: "Other", Value: 60},
		{Name: "Rice", Value: 25},
	}, got)
}

func TestRevenueBreakdown_SumsToTotalRevenue(t *testing.T) {
	txs := []models.FinancialTransaction{
		revenue(0.1, crop("A")),
		revenue(0.2, nil),
		revenue(19.99, crop("B")),
		expense("x", 5, nil),
		revenue(1e6, crop("A")),
	}

	var sum float64
	for _, p := range RevenueBreakdown(txs) {
		sum += p.Value
	}
	assert.InDelta(t, Totals(txs).TotalRevenue, sum, 1e-9)
}

func TestExpenseBreakdown(t *testing.T) {
	txs := []models.FinancialTransaction{
		expense("Seeds", 40, nil),
		expense("Worker salary - Amina", 700, nil),
		expense("Loan to Amina - school fees", 200, nil),
		expense("Worker Salary - Bob", 10, nil),
		expense("loan to Bob", 5, nil),
		revenue(1000, nil),
	}

	assert.Equal(t, []models.ChartPoint{
		{Name: "Other Expenses", Value: 55},
		{Name: "Salaries", Value: 700},
		{Name: "Loans", Value: 200},
	}, ExpenseBreakdown(txs))
}

func TestExpenseCategory(t *testing.T) {
	assert.Equal(t, "Salaries", ExpenseCategory("Worker salary - Jo"))
	assert.Equal(t, "Loans", ExpenseCategory("Loan to Jo - bike"))
	assert.Equal(t, "Salaries", ExpenseCategory("salary advance Loan"))
	assert.Equal(t, "Other Expenses", ExpenseCategory("SALARY"))
	assert.Equal(t, "Other Expenses", ExpenseCategory(""))
}

func TestCropProfitability(t *testing.T) {
	txs := []models.FinancialTransaction{
		expense("Seeds", 100, crop("Maize")),
		revenue(500, crop("Maize")),
		revenue(80, crop("Beans")),
		revenue(999, nil),
		expense("Transport", 20, crop("Maize")),
	}

	assert.Equal(t, []models.CropProfitability{
		{Name: "Maize", GrossRevenue: 500, GrossExpense: 120, Net: 380},
		{Name: "Beans", GrossRevenue: 80, GrossExpense: 0, Net: 80},
	}, CropProfitability(txs))
}

func TestYieldReport_DoesNotMerge(t *testing.T) {
	yields := []models.Yield{
		{CropName: "Maize", Quantity: 10},
		{CropName: "Rice", Quantity: 4},
		{CropName: "Maize", Quantity: 6},
	}

	assert.Equal(t, []models.ChartPoint{
		{Name: "Maize", Value: 10},
		{Name: "Rice", Value: 4},
		{Name: "Maize", Value: 6},
	}, YieldReport(yields))
	assert.Equal(t, 20.0, TotalYield(yields))
}

func TestAggregatesAreDeterministic(t *testing.T) {
	txs := []models.FinancialTransaction{
		revenue(10, crop("C")), revenue(20, crop("A")), revenue(30, crop("B")),
		expense("Loan to X", 3, crop("A")), expense("Worker salary - Y", 7, nil),
	}

	for i := 0; i < 5; i++ {
		assert.Equal(t, RevenueBreakdown(txs), RevenueBreakdown(txs))
		assert.Equal(t, ExpenseBreakdown(txs), ExpenseBreakdown(txs))
		assert.Equal(t, CropProfitability(txs), CropProfitability(txs))
	}
	assert.Equal(t, "C", RevenueBreakdown(txs)[0].Name)
}

func TestAggregatesSkipNonFiniteAmounts(t *testing.T) {
	txs := []models.FinancialTransaction{
		revenue(math.NaN(), crop("A")),
		revenue(math.Inf(1), nil),
		revenue(5, crop("A")),
		expense("Seeds", math.Inf(-1), crop("A")),
	}

	assert.Equal(t, []models.ChartPoint{{Name: "A", Value: 5}}, RevenueBreakdown(txs))
	assert.Empty(t, ExpenseBreakdown(txs))
	summary := Totals(txs)
	assert.Equal(t, 5.0, summary.TotalRevenue)
	assert.False(t, math.IsNaN(summary.NetProfit))
}

func TestEmptyInputs(t *testing.T) {
	assert.Empty(t, RevenueBreakdown(nil))
	assert.NotNil(t, RevenueBreakdown(nil))
	assert.Empty(t, ExpenseBreakdown(nil))
	assert.Empty(t, CropProfitability(nil))
	assert.Empty(t, YieldReport(nil))
	assert.Equal(t, models.FinancialSummary{}, Totals(nil))
}

func TestFinancialTrends(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	txs := []models.FinancialTransaction{
		{Type: models.TransactionRevenue, Amount: 100, Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{Type: models.TransactionExpense, Amount: 40, Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)},
		{Type: models.TransactionRevenue, Amount: 70, Date: time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC)},
		{Type: models.TransactionRevenue, Amount: 999, Date: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)},
	}

	got := FinancialTrends(txs, now, 3)
	require.Len(t, got, 3)
	assert.Equal(t, models.TrendPoint{Month: "2024-01", Revenue: 70}, got[0])
	assert.Equal(t, models.TrendPoint{Month: "2024-02"}, got[1])
	assert.Equal(t, models.TrendPoint{Month: "2024-03", Revenue: 100, Expenses: 40}, got[2])

	assert.Empty(t, FinancialTrends(txs, now, 0))
}

func TestFinancialTrends_YearBoundary(t *testing.T) {
	now := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	got := FinancialTrends(nil, now, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "2023-12", got[0].Month)
	assert.Equal(t, "2024-01", got[1].Month)
}

func TestBuildReports(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	reports := BuildReports(
		[]models.Yield{{CropName: "Maize", Quantity: 3}},
		[]models.FinancialTransaction{revenue(10, crop("Maize"))},
		now, 2,
	)

	assert.Len(t, reports.Yields, 1)
	assert.Len(t, reports.Profitability, 1)
	assert.Len(t, reports.RevenueBreakdown, 1)
	assert.Empty(t, reports.ExpenseBreakdown)
	assert.Len(t, reports.FinancialTrends, 2)
}
