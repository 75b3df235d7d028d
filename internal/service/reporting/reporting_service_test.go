package reporting

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/farmsync/internal/domain/models"
)

type fakeStore struct {
	yields  []models.Yield
	txs     []models.FinancialTransaction
	workers []models.Worker
	ledger  []models.LoanLedgerEntry
	owners  []string
	saved   []models.DailyReport
	saveErr map[string]error
	calls   int
}

func (f *fakeStore) ListYields(context.Context, string) ([]models.Yield, error) {
	f.calls++
	return f.yields, nil
}

func (f *fakeStore) ListTransactions(context.Context, string) ([]models.FinancialTransaction, error) {
	return f.txs, nil
}

func (f *fakeStore) ListWorkers(context.Context, string) ([]models.Worker, error) {
	return f.workers, nil
}

func (f *fakeStore) ListOwnerLedger(context.Context, string) ([]models.LoanLedgerEntry, error) {
	return f.ledger, nil
}

func (f *fakeStore) ListUserIDs(context.Context) ([]string, error) { return f.owners, nil }

func (f *fakeStore) SaveDailyReport(_ context.Context, r models.DailyReport) error {
	if err := f.saveErr[r.OwnerID]; err != nil {
		return err
	}
	f.saved = append(f.saved, r)
	return nil
}

type memCache struct{ entries map[string]interface{} }

func (m *memCache) GetJSON(_ context.Context, key string, dest interface{}) bool {
	v, ok := m.entries[key]
	if !ok {
		return false
	}
	switch d := dest.(type) {
	case *models.Dashboard:
		*d = v.(models.Dashboard)
	case *models.Reports:
		*d = v.(models.Reports)
	}
	return true
}

func (m *memCache) SetJSON(_ context.Context, key string, value interface{}) {
	m.entries[key] = value
}

type fakeWeather struct {
	w   *models.Weather
	err error
}

func (f fakeWeather) Current(context.Context) (*models.Weather, error) { return f.w, f.err }

type fakeMirror struct {
	mirrored map[string]bool
	rows     []models.DailyReport
}

func (f *fakeMirror) MirrorDailyReport(_ context.Context, r models.DailyReport) error {
	f.rows = append(f.rows, r)
	return nil
}

func (f *fakeMirror) MirroredDays(context.Context, string) (map[string]bool, error) {
	return f.mirrored, nil
}

var now = time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)

func sampleStore() *fakeStore {
	maize := "Maize"
	return &fakeStore{
		yields: []models.Yield{
			{ID: "y1", CropName: "Maize", Quantity: 100, Unit: models.UnitKg, HarvestDate: now.AddDate(0, 0, -10)},
			{ID: "y2", CropName: "Rice", Quantity: 5, Unit: models.UnitTons, HarvestDate: now.AddDate(0, 0, 1)},
		},
		txs: []models.FinancialTransaction{
			{ID: "t1", Type: models.TransactionRevenue, Description: "Sale of Maize", Amount: 500, Crop: &maize, Date: now.AddDate(0, 0, -2)},
			{ID: "t2", Type: models.TransactionExpense, Description: "Worker salary - Amina", Amount: 200, Date: now.AddDate(0, 0, -1)},
			{ID: "t3", Type: models.TransactionExpense, Description: "Seeds", Amount: 50, Date: now.AddDate(0, 0, 2)},
		},
		workers: []models.Worker{{ID: "w1", Active: true}, {ID: "w2", Active: false}, {ID: "w3", Active: true}},
		ledger: []models.LoanLedgerEntry{
			{Amount: 2000, Date: now.AddDate(0, 0, -5)},
			{Amount: -300, Date: now.AddDate(0, 0, 3)},
		},
	}
}

func newTestService(store *fakeStore, c Cache, w WeatherProvider, m SnapshotMirror) *Service {
	svc := NewService(store, c, w, m, Options{TrendMonths: 3}, nil)
	svc.now = func() time.Time { return now }
	return svc
}

func TestDashboard(t *testing.T) {
	store := sampleStore()
	weather := &models.Weather{Temperature: 30, Condition: "Clear"}
	svc := newTestService(store, nil, fakeWeather{w: weather}, nil)

	d, err := svc.Dashboard(context.Background(), "o1")
	require.NoError(t, err)

	assert.Equal(t, models.FinancialSummary{TotalRevenue: 500, TotalExpenses: 250, NetProfit: 250}, d.FinancialSummary)
	assert.Equal(t, 105.0, d.Metrics.TotalYield)
	assert.Equal(t, 2, d.Metrics.ActiveWorkers)
	assert.Equal(t, 1700.0, d.Metrics.OutstandingLoans)
	assert.Len(t, d.FinancialTrends, 3)
	assert.Equal(t, weather, d.Weather)
}

func TestDashboard_WeatherFailureIsNotFatal(t *testing.T) {
	svc := newTestService(sampleStore(), nil, fakeWeather{err: errors.New("timeout")}, nil)

	d, err := svc.Dashboard(context.Background(), "o1")
	require.NoError(t, err)
	assert.Nil(t, d.Weather)
}

func TestDashboard_UsesCache(t *testing.T) {
	store := sampleStore()
	c := &memCache{entries: map[string]interface{}{}}
	svc := newTestService(store, c, nil, nil)

	first, err := svc.Dashboard(context.Background(), "o1")
	require.NoError(t, err)
	callsAfterFirst := store.calls

	second, err := svc.Dashboard(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, callsAfterFirst, store.calls)
	assert.Contains(t, c.entries, "dashboard:o1")
}

func TestReports(t *testing.T) {
	svc := newTestService(sampleStore(), nil, nil, nil)

	r, err := svc.Reports(context.Background(), "o1")
	require.NoError(t, err)
	assert.Len(t, r.Yields, 2)
	assert.Equal(t, []models.ChartPoint{{Name: "Maize", Value: 500}}, r.RevenueBreakdown)
	assert.Equal(t, []models.ChartPoint{{Name: "Salaries", Value: 200}, {Name: "Other Expenses", Value: 50}}, r.ExpenseBreakdown)
	assert.Equal(t, []models.CropProfitability{{Name: "Maize", GrossRevenue: 500, Net: 500}}, r.Profitability)
}

func TestSnapshotDaily_CountsUpToEndOfDay(t *testing.T) {
	store := sampleStore()
	mirror := &fakeMirror{mirrored: map[string]bool{}}
	svc := newTestService(store, nil, nil, mirror)

	report, err := svc.SnapshotDaily(context.Background(), "o1", now)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), report.Date)
	assert.Equal(t, 500.0, report.TotalRevenue)
	assert.Equal(t, 200.0, report.TotalExpenses)
	assert.Equal(t, 300.0, report.NetProfit)
	assert.Equal(t, 100.0, report.TotalYield)
	assert.Equal(t, 2, report.ActiveWorkers)
	assert.Equal(t, 2000.0, report.OutstandingLoans)

	require.Len(t, store.saved, 1)
	require.Len(t, mirror.rows, 1)
}

func TestSnapshotDaily_SkipsAlreadyMirroredDay(t *testing.T) {
	mirror := &fakeMirror{mirrored: map[string]bool{"2024-03-15": true}}
	svc := newTestService(sampleStore(), nil, nil, mirror)

	_, err := svc.SnapshotDaily(context.Background(), "o1", now)
	require.NoError(t, err)
	assert.Empty(t, mirror.rows)
}

func TestSnapshotAll_ContinuesPastFailures(t *testing.T) {
	store := sampleStore()
	store.owners = []string{"o1", "o2", "o3"}
	store.saveErr = map[string]error{"o2": errors.New("write conflict")}
	svc := newTestService(store, nil, nil, nil)

	err := svc.SnapshotAll(context.Background(), now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "o2")
	assert.Len(t, store.saved, 2)
}

func TestExportWorkbook(t *testing.T) {
	svc := newTestService(sampleStore(), nil, nil, nil)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportWorkbook(context.Background(), "o1", &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Transactions", "Yields", "Profitability", "Breakdown"}, f.GetSheetList())

	rows, err := f.GetRows("Transactions")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Date", "Type", "Description", "Amount", "Crop"}, rows[0])
	assert.Equal(t, "Sale of Maize", rows[1][2])

	value, err := f.GetCellValue("Summary", "B4")
	require.NoError(t, err)
	assert.Equal(t, "250", value)
}
