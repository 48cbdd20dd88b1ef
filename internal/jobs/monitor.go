package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"pagewatch/internal/models"
)

// TargetLister returns the targets due for a check.
type TargetLister interface {
	ListTargetsDue(ctx context.Context, limit int) ([]models.Target, error)
}

// TargetRunner runs the pipeline for one target.
type TargetRunner interface {
	RunTarget(ctx context.Context, id uuid.UUID) (*models.RunResult, error)
}

// Monitor periodically checks every active target.
type Monitor struct {
	targets   TargetLister
	runner    TargetRunner
	schedule  cron.Schedule
	spec      string
	batchSize int
	logger    *slog.Logger
}

// NewMonitor creates a monitor for a cron spec such as "@every 15m" or
// "0 */6 * * *".
func NewMonitor(targets TargetLister, runner TargetRunner, spec string, batchSize int, logger *slog.Logger) (*Monitor, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid monitor schedule %q: %w", spec, err)
	}
	if batchSize < 1 {
		batchSize = 50
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		targets:   targets,
		runner:    runner,
		schedule:  schedule,
		spec:      spec,
		batchSize: batchSize,
		logger:    logger,
	}, nil
}

// Start runs a check immediately and then on the schedule until ctx is
// cancelled. A pass still running when the next one is due is skipped.
func (m *Monitor) Start(ctx context.Context) {
	m.logger.Info("monitor started", "schedule", m.spec, "batch_size", m.batchSize)

	c := cron.New(cron.WithChain(
		cron.Recover(cron.DefaultLogger),
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))
	job := c.Schedule(m.schedule, cron.FuncJob(func() { m.CheckAll(ctx) }))

	// Run immediately on start, through the chain so a slow first pass
	// still blocks the scheduled ones.
	go c.Entry(job).WrappedJob.Run()
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	m.logger.Info("monitor stopped")
}

// CheckAll runs every due target once, one target at a time.
func (m *Monitor) CheckAll(ctx context.Context) {
	targets, err := m.targets.ListTargetsDue(ctx, m.batchSize)
	if err != nil {
		m.logger.Error("failed to list targets", "error", err)
		return
	}

	if len(targets) == 0 {
		return
	}

	m.logger.Info("checking targets", "count", len(targets))

	for _, t := range targets {
		// Check context before each target
		select {
		case <-ctx.Done():
			return
		default:
		}

		if _, err := m.runner.RunTarget(ctx, t.ID); err != nil {
			m.logger.Error("target run failed", "target", t.Name, "error", err)
		}
	}
}
