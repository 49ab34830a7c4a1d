package janitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper removes documents last modified before a cutoff
type Sweeper interface {
	RemoveOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// SweepRecorder receives the number of documents removed by each sweep
type SweepRecorder interface {
	DocumentsSwept(n int)
}

// Janitor periodically deletes rendered documents that have outlived their validation records
type Janitor struct {
	cron     *cron.Cron
	sweeper  Sweeper
	maxAge   time.Duration
	schedule string
	metrics  SweepRecorder
	logger   *zap.Logger
	now      func() time.Time
	mu       sync.Mutex
	running  bool
}

// New creates a janitor. schedule uses standard five-field cron syntax or descriptors such as @hourly.
func New(sweeper Sweeper, schedule string, maxAge time.Duration, metrics SweepRecorder, logger *zap.Logger) (*Janitor, error) {
	if maxAge <= 0 {
		return nil, fmt.Errorf("max age must be positive")
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(schedule); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	return &Janitor{
		cron:     cron.New(cron.WithParser(parser)),
		sweeper:  sweeper,
		maxAge:   maxAge,
		schedule: schedule,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Start registers the sweep job and starts the scheduler
func (j *Janitor) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.running {
		return fmt.Errorf("janitor already running")
	}

	if _, err := j.cron.AddFunc(j.schedule, func() { j.Sweep(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}

	j.logger.Info("Starting document janitor",
		zap.String("schedule", j.schedule),
		zap.Duration("max_age", j.maxAge),
	)
	j.cron.Start()
	j.running = true
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish
func (j *Janitor) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.running {
		return
	}

	j.logger.Info("Stopping document janitor")
	<-j.cron.Stop().Done()
	j.running = false
}

// Sweep runs one pass and returns the number of removed documents
func (j *Janitor) Sweep(ctx context.Context) int {
	cutoff := j.now().Add(-j.maxAge)

	removed, err := j.sweeper.RemoveOlderThan(ctx, cutoff)
	if err != nil {
		j.logger.Error("Document sweep failed", zap.Error(err), zap.Int("removed", removed))
	}
	if removed > 0 {
		j.logger.Info("Removed stale documents", zap.Int("count", removed), zap.Time("cutoff", cutoff))
	}
	if j.metrics != nil {
		j.metrics.DocumentsSwept(removed)
	}
	return removed
}
