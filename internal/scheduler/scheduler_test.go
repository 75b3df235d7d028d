package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/farmsync/internal/cache"
	"github.com/mamadbah2/farmsync/internal/config"
)

type fakeSnapshotter struct {
	days []time.Time
	err  error
}

func (f *fakeSnapshotter) SnapshotAll(_ context.Context, day time.Time) error {
	f.days = append(f.days, day)
	return f.err
}

type fakeLocker struct {
	err      error
	names    []string
	released int
}

func (f *fakeLocker) Lock(_ context.Context, name string, _ time.Duration) (func(), error) {
	if f.err != nil {
		return func() {}, f.err
	}
	f.names = append(f.names, name)
	return func() { f.released++ }, nil
}

func newTestScheduler(t *testing.T, snap Snapshotter, locker Locker) *Scheduler {
	s, err := NewScheduler(config.ReportingConfig{CronSchedule: "0 20 * * *", Timezone: "UTC"}, snap, locker, nil)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC) }
	return s
}

func TestRunDailySnapshot(t *testing.T) {
	snap, locker := &fakeSnapshotter{}, &fakeLocker{}
	s := newTestScheduler(t, snap, locker)

	require.NoError(t, s.RunDailySnapshot(context.Background()))
	require.Len(t, snap.days, 1)
	assert.Equal(t, 15, snap.days[0].Day())
	assert.Equal(t, []string{"snapshot:2024-03-15"}, locker.names)
	assert.Zero(t, locker.released)
}

func TestRunDailySnapshot_LaterReplicaSkipsSameDay(t *testing.T) {
	shared := cache.New(context.Background(), config.RedisConfig{}, nil)
	first, second := &fakeSnapshotter{}, &fakeSnapshotter{}

	require.NoError(t, newTestScheduler(t, first, shared).RunDailySnapshot(context.Background()))

	late := newTestScheduler(t, second, shared)
	late.now = func() time.Time { return time.Date(2024, 3, 15, 20, 30, 0, 0, time.UTC) }
	require.NoError(t, late.RunDailySnapshot(context.Background()))

	assert.Len(t, first.days, 1)
	assert.Empty(t, second.days)

	nextDay := newTestScheduler(t, second, shared)
	nextDay.now = func() time.Time { return time.Date(2024, 3, 16, 20, 0, 0, 0, time.UTC) }
	require.NoError(t, nextDay.RunDailySnapshot(context.Background()))
	assert.Len(t, second.days, 1)
}

func TestRunDailySnapshot_FailureReleasesLock(t *testing.T) {
	locker := &fakeLocker{}
	s := newTestScheduler(t, &fakeSnapshotter{err: errors.New("sheets down")}, locker)

	assert.Error(t, s.RunDailySnapshot(context.Background()))
	assert.Equal(t, 1, locker.released)
}

func TestRunDailySnapshot_SkipsWhenLocked(t *testing.T) {
	snap := &fakeSnapshotter{}
	s := newTestScheduler(t, snap, &fakeLocker{err: errors.New("locked")})

	require.NoError(t, s.RunDailySnapshot(context.Background()))
	assert.Empty(t, snap.days)
}

func TestRunDailySnapshot_PropagatesErrors(t *testing.T) {
	s := newTestScheduler(t, &fakeSnapshotter{err: errors.New("owner o2: boom")}, nil)
	assert.Error(t, s.RunDailySnapshot(context.Background()))
}

func TestStart_InvalidSchedule(t *testing.T) {
	s, err := NewScheduler(config.ReportingConfig{CronSchedule: "every day", Timezone: "UTC"}, &fakeSnapshotter{}, nil, nil)
	require.NoError(t, err)
	assert.Error(t, s.Start())
}

func TestStartStop(t *testing.T) {
	s := newTestScheduler(t, &fakeSnapshotter{}, nil)
	require.NoError(t, s.Start())
	s.Stop()
}

func TestNewScheduler_BadTimezone(t *testing.T) {
	_, err := NewScheduler(config.ReportingConfig{CronSchedule: "0 20 * * *", Timezone: "Nowhere/City"}, &fakeSnapshotter{}, nil, nil)
	assert.Error(t, err)
}
