// Package scheduler runs the background maintenance jobs of the medicines API.
// The dataset itself is loaded once and never refreshed; the jobs only keep
// the rate limiter bounded and complain while the service runs without data.
package scheduler

import (
	"fmt"
	"time"

	"github.com/giygas/medicines-api/interfaces"
	"github.com/giygas/medicines-api/logging"
	"github.com/giygas/medicines-api/metrics"
	"github.com/go-co-op/gocron"
)

const (
	SweepInterval    = 30 * time.Minute
	BucketMaxIdle    = time.Hour
	WatchdogInterval = time.Hour
	PruneTime        = "03:00"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler owns the gocron scheduler and its jobs
type Scheduler struct {
	dataStore interfaces.DataStore
	limiter   interfaces.BucketSweeper
	logs      interfaces.LogPruner
	scheduler *gocron.Scheduler
}

// NewScheduler creates a new scheduler instance with injected dependencies.
// limiter and logs are optional.
func NewScheduler(dataStore interfaces.DataStore, limiter interfaces.BucketSweeper, logs interfaces.LogPruner) *Scheduler {
	return &Scheduler{
		dataStore: dataStore,
		limiter:   limiter,
		logs:      logs,
		scheduler: gocron.NewScheduler(time.Local),
	}
}

// Start registers the jobs and runs them asynchronously
func (s *Scheduler) Start() error {
	if s.limiter != nil {
		_, err := s.scheduler.Every(SweepInterval).WaitForSchedule().Tag("ratelimit-sweep").Do(s.sweepBuckets)
		if err != nil {
			logging.Error("Failed to schedule rate limiter sweep", "error", err)
			return fmt.Errorf("failed to schedule rate limiter sweep: %w", err)
		}
	}

	if s.logs != nil {
		_, err := s.scheduler.Every(1).Day().At(PruneTime).Tag("log-retention").Do(s.pruneLogs)
		if err != nil {
			logging.Error("Failed to schedule log retention", "error", err)
			return fmt.Errorf("failed to schedule log retention: %w", err)
		}
	}

	_, err := s.scheduler.Every(WatchdogInterval).WaitForSchedule().Tag("data-watchdog").Do(s.checkData)
	if err != nil {
		logging.Error("Failed to schedule data watchdog", "error", err)
		return fmt.Errorf("failed to schedule data watchdog: %w", err)
	}

	s.scheduler.StartAsync()
	logging.Info("Scheduler started", "jobs", len(s.scheduler.Jobs()))

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// sweepBuckets forgets clients that have been quiet for an hour
func (s *Scheduler) sweepBuckets() {
	remaining := s.limiter.Sweep(BucketMaxIdle)
	metrics.RateLimiterBucketsTotal.Set(float64(remaining))
	logging.Debug("Rate limiter sweep completed", "buckets", remaining)
}

func (s *Scheduler) pruneLogs() {
	removed, err := s.logs.PruneOldLogs()
	if err != nil {
		logging.Warn("Failed to prune old logs", "error", err)
		return
	}
	if removed > 0 {
		logging.Info("Pruned old log files", "removed", removed)
	}
}

// checkData warns for as long as the service answers without a dataset
func (s *Scheduler) checkData() {
	if s.dataStore.IsLoaded() {
		return
	}

	var downtime time.Duration
	if start := s.dataStore.GetServerStartTime(); !start.IsZero() {
		downtime = time.Since(start).Round(time.Minute)
	}

	logging.Warn("Serving without data, every query reports data not loaded",
		"since", downtime.String(),
		"load_error", s.dataStore.GetLoadError(),
	)
}
