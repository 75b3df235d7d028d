package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmsync/internal/config"
)

const (
	snapshotTimeout = 2 * time.Minute
	snapshotLockTTL = 24 * time.Hour
)

// Snapshotter writes the daily snapshot of every owner.
type Snapshotter interface {
	SnapshotAll(ctx context.Context, day time.Time) error
}

// Locker makes sure a single instance runs a job when several replicas
// share the same schedule.
type Locker interface {
	Lock(ctx context.Context, name string, ttl time.Duration) (func(), error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	snapshot Snapshotter
	locker   Locker
	schedule string
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewScheduler creates a new scheduler instance running in the configured
// timezone. locker may be nil.
func NewScheduler(cfg config.ReportingConfig, snapshot Snapshotter, locker Locker, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load scheduler timezone: %w", err)
	}

	// Standard 5-field cron expressions (min, hour, dom, month, dow).
	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:     c,
		snapshot: snapshot,
		locker:   locker,
		schedule: cfg.CronSchedule,
		location: loc,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule), zap.String("timezone", s.location.String()))

	if _, err := s.cron.AddFunc(s.schedule, s.runDailySnapshot); err != nil {
		return fmt.Errorf("schedule daily snapshot: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runDailySnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	if err := s.RunDailySnapshot(ctx); err != nil {
		s.logger.Error("daily snapshot failed", zap.Error(err))
	}
}

// RunDailySnapshot snapshots today's figures for every owner. When another
// instance holds the day's lock the run is skipped. A successful run keeps the
// lock until it expires so replicas firing later that day skip too; a failed
// run releases it.
func (s *Scheduler) RunDailySnapshot(ctx context.Context) error {
	day := s.now().In(s.location)
	s.logger.Info("generating daily snapshot", zap.String("day", day.Format("2006-01-02")))

	release := func() {}
	if s.locker != nil {
		var err error
		release, err = s.locker.Lock(ctx, "snapshot:"+day.Format("2006-01-02"), snapshotLockTTL)
		if err != nil {
			s.logger.Info("daily snapshot already taken elsewhere", zap.Error(err))
			return nil
		}
	}

	if err := s.snapshot.SnapshotAll(ctx, day); err != nil {
		release()
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("daily snapshot timed out: %w", err)
		}
		return err
	}

	s.logger.Info("daily snapshot completed")
	return nil
}
