package models

import "time"

// DailyReport is the per-owner snapshot stored by the scheduler.
type DailyReport struct {
	OwnerID          string    `bson:"owner_id" json:"-"`
	Date             time.Time `bson:"date" json:"date"`
	TotalRevenue     float64   `bson:"total_revenue" json:"totalRevenue"`
	TotalExpenses    float64   `bson:"total_expenses" json:"totalExpenses"`
	NetProfit        float64   `bson:"net_profit" json:"netProfit"`
	TotalYield       float64   `bson:"total_yield" json:"totalYield"`
	ActiveWorkers    int       `bson:"active_workers" json:"activeWorkers"`
	OutstandingLoans float64   `bson:"outstanding_loans" json:"outstandingLoans"`
	CreatedAt        time.Time `bson:"created_at" json:"createdAt"`
}

// ChartPoint is a single named value of a chart series.
type ChartPoint struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// CropProfitability holds the gross revenue and gross expense booked
// against a crop, plus their difference.
type CropProfitability struct {
	Name         string  `json:"name"`
	GrossRevenue float64 `json:"grossRevenue"`
	GrossExpense float64 `json:"grossExpense"`
	Net          float64 `json:"net"`
}

// TrendPoint is the revenue and expense total of one calendar month.
type TrendPoint struct {
	Month    string  `json:"month"`
	Revenue  float64 `json:"revenue"`
	Expenses float64 `json:"expenses"`
}

// FinancialSummary is the headline revenue/expense pair of the dashboard.
type FinancialSummary struct {
	TotalRevenue  float64 `json:"totalRevenue"`
	TotalExpenses float64 `json:"totalExpenses"`
	NetProfit     float64 `json:"netProfit"`
}

// DashboardMetrics groups the operational counters of the dashboard.
type DashboardMetrics struct {
	TotalYield       float64 `json:"totalYield"`
	ActiveWorkers    int     `json:"activeWorkers"`
	OutstandingLoans float64 `json:"outstandingLoans"`
}

// Weather is the current conditions block shown on the dashboard.
type Weather struct {
	Temperature float64 `json:"temperature"`
	WindSpeed   float64 `json:"windSpeed"`
	Humidity    float64 `json:"humidity"`
	Condition   string  `json:"condition"`
}

// Dashboard is the payload of GET /api/dashboard.
type Dashboard struct {
	FinancialSummary FinancialSummary `json:"financialSummary"`
	Metrics          DashboardMetrics `json:"metrics"`
	FinancialTrends  []TrendPoint     `json:"financialTrends"`
	Weather          *Weather         `json:"weather,omitempty"`
}

// Reports bundles every chart series of the reports page.
type Reports struct {
	Yields           []ChartPoint        `json:"yields"`
	Profitability    []CropProfitability `json:"profitability"`
	RevenueBreakdown []ChartPoint        `json:"revenueBreakdown"`
	ExpenseBreakdown []ChartPoint        `json:"expenseBreakdown"`
	FinancialTrends  []TrendPoint        `json:"financialTrends"`
}
