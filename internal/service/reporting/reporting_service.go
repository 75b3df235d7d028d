package reporting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/farmsync/internal/cache"
	"github.com/mamadbah2/farmsync/internal/domain/models"
	"github.com/mamadbah2/farmsync/internal/service/payroll"
)

const dateLayout = "2006-01-02"

// Store is the read side the reports are computed from, plus the snapshot
// sink.
type Store interface {
	ListYields(ctx context.Context, ownerID string) ([]models.Yield, error)
	ListTransactions(ctx context.Context, ownerID string) ([]models.FinancialTransaction, error)
	ListWorkers(ctx context.Context, ownerID string) ([]models.Worker, error)
	ListOwnerLedger(ctx context.Context, ownerID string) ([]models.LoanLedgerEntry, error)
	ListUserIDs(ctx context.Context) ([]string, error)
	SaveDailyReport(ctx context.Context, report models.DailyReport) error
}

// Cache stores computed payloads between mutations.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) bool
	SetJSON(ctx context.Context, key string, value interface{})
}

// WeatherProvider reports the current conditions at the farm.
type WeatherProvider interface {
	Current(ctx context.Context) (*models.Weather, error)
}

// SnapshotMirror copies daily snapshots to an external sheet.
type SnapshotMirror interface {
	MirrorDailyReport(ctx context.Context, report models.DailyReport) error
	MirroredDays(ctx context.Context, ownerID string) (map[string]bool, error)
}

// Options tunes the reporting service.
type Options struct {
	TrendMonths int
	Location    *time.Location
}

// Service computes the dashboard, the reports and the daily snapshots.
type Service struct {
	store   Store
	cache   Cache
	weather WeatherProvider
	mirror  SnapshotMirror
	opts    Options
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires a new reporting service instance. payloads, weather and
// mirror may be nil.
func NewService(store Store, payloads Cache, weather WeatherProvider, mirror SnapshotMirror, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.TrendMonths < 1 {
		opts.TrendMonths = 6
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Service{
		store:   store,
		cache:   payloads,
		weather: weather,
		mirror:  mirror,
		opts:    opts,
		logger:  logger,
		now:     time.Now,
	}
}

// Dashboard returns the headline figures of the owner's farm.
func (s *Service) Dashboard(ctx context.Context, ownerID string) (models.Dashboard, error) {
	key := cache.DashboardKey(ownerID)
	var cached models.Dashboard
	if s.cache != nil && s.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	yields, txs, err := s.load(ctx, ownerID)
	if err != nil {
		return models.Dashboard{}, err
	}
	metrics, err := s.metrics(ctx, ownerID, yields, nil)
	if err != nil {
		return models.Dashboard{}, err
	}

	dashboard := models.Dashboard{
		FinancialSummary: Totals(txs),
		Metrics:          metrics,
		FinancialTrends:  FinancialTrends(txs, s.now().In(s.opts.Location), s.opts.TrendMonths),
	}

	if s.weather != nil {
		current, err := s.weather.Current(ctx)
		if err != nil {
			s.logger.Warn("weather lookup failed", zap.Error(err))
		} else {
			dashboard.Weather = current
		}
	}

	if s.cache != nil {
		s.cache.SetJSON(ctx, key, dashboard)
	}
	return dashboard, nil
}

// Reports returns every chart series of the reports page.
func (s *Service) Reports(ctx context.Context, ownerID string) (models.Reports, error) {
	key := cache.ReportsKey(ownerID)
	var cached models.Reports
	if s.cache != nil && s.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	yields, txs, err := s.load(ctx, ownerID)
	if err != nil {
		return models.Reports{}, err
	}

	reports := BuildReports(yields, txs, s.now().In(s.opts.Location), s.opts.TrendMonths)
	if s.cache != nil {
		s.cache.SetJSON(ctx, key, reports)
	}
	return reports, nil
}

// SnapshotDaily stores the owner's figures as of the end of day and mirrors
// them to the sheet when the day is not mirrored yet.
func (s *Service) SnapshotDaily(ctx context.Context, ownerID string, day time.Time) (models.DailyReport, error) {
	local := day.In(s.opts.Location)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.opts.Location)
	end := start.AddDate(0, 0, 1)
	before := func(t time.Time) bool { return t.Before(end) }

	yields, txs, err := s.load(ctx, ownerID)
	if err != nil {
		return models.DailyReport{}, err
	}

	var dayTxs []models.FinancialTransaction
	for _, tx := range txs {
		if before(tx.Date) {
			dayTxs = append(dayTxs, tx)
		}
	}
	var dayYields []models.Yield
	for _, y := range yields {
		if before(y.HarvestDate) {
			dayYields = append(dayYields, y)
		}
	}

	metrics, err := s.metrics(ctx, ownerID, dayYields, before)
	if err != nil {
		return models.DailyReport{}, err
	}
	summary := Totals(dayTxs)

	report := models.DailyReport{
		OwnerID:          ownerID,
		Date:             time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC),
		TotalRevenue:     summary.TotalRevenue,
		TotalExpenses:    summary.TotalExpenses,
		NetProfit:        summary.NetProfit,
		TotalYield:       metrics.TotalYield,
		ActiveWorkers:    metrics.ActiveWorkers,
		OutstandingLoans: metrics.OutstandingLoans,
		CreatedAt:        s.now().UTC(),
	}

	if err := s.store.SaveDailyReport(ctx, report); err != nil {
		return models.DailyReport{}, fmt.Errorf("save daily report: %w", err)
	}

	if s.mirror != nil {
		s.mirrorSnapshot(ctx, report)
	}
	return report, nil
}

// SnapshotAll snapshots every registered owner for the day. A failing owner
// does not stop the others.
func (s *Service) SnapshotAll(ctx context.Context, day time.Time) error {
	owners, err := s.store.ListUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("list owners: %w", err)
	}

	var errs []error
	for _, ownerID := range owners {
		if _, err := s.SnapshotDaily(ctx, ownerID, day); err != nil {
			s.logger.Error("daily snapshot failed", zap.String("owner_id", ownerID), zap.Error(err))
			errs = append(errs, fmt.Errorf("owner %s: %w", ownerID, err))
		}
	}

	s.logger.Info("daily snapshots written",
		zap.String("day", day.In(s.opts.Location).Format(dateLayout)),
		zap.Int("owners", len(owners)),
		zap.Int("failed", len(errs)),
	)
	return errors.Join(errs...)
}

func (s *Service) mirrorSnapshot(ctx context.Context, report models.DailyReport) {
	day := report.Date.Format(dateLayout)
	mirrored, err := s.mirror.MirroredDays(ctx, report.OwnerID)
	if err != nil {
		s.logger.Warn("could not read mirrored snapshots", zap.String("owner_id", report.OwnerID), zap.Error(err))
	} else if mirrored[day] {
		return
	}

	if err := s.mirror.MirrorDailyReport(ctx, report); err != nil {
		s.logger.Warn("snapshot mirror failed", zap.String("owner_id", report.OwnerID), zap.String("day", day), zap.Error(err))
	}
}

func (s *Service) load(ctx context.Context, ownerID string) ([]models.Yield, []models.FinancialTransaction, error) {
	yields, err := s.store.ListYields(ctx, ownerID)
	if err != nil {
		return nil, nil, fmt.Errorf("load yields: %w", err)
	}
	txs, err := s.store.ListTransactions(ctx, ownerID)
	if err != nil {
		return nil, nil, fmt.Errorf("load transactions: %w", err)
	}
	return yields, txs, nil
}

// metrics computes the operational counters. When include is set, only
// ledger entries it accepts are counted.
func (s *Service) metrics(ctx context.Context, ownerID string, yields []models.Yield, include func(time.Time) bool) (models.DashboardMetrics, error) {
	workers, err := s.store.ListWorkers(ctx, ownerID)
	if err != nil {
		return models.DashboardMetrics{}, fmt.Errorf("load workers: %w", err)
	}
	ledger, err := s.store.ListOwnerLedger(ctx, ownerID)
	if err != nil {
		return models.DashboardMetrics{}, fmt.Errorf("load loan ledger: %w", err)
	}

	if include != nil {
		filtered := ledger[:0:0]
		for _, e := range ledger {
			if include(e.Date) {
				filtered = append(filtered, e)
			}
		}
		ledger = filtered
	}

	active := 0
	for _, w := range workers {
		if w.Active {
			active++
		}
	}

	return models.DashboardMetrics{
		TotalYield:       TotalYield(yields),
		ActiveWorkers:    active,
		OutstandingLoans: payroll.LedgerBalance(ledger),
	}, nil
}
