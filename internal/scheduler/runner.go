package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"movebot/internal/workout"

	"github.com/robfig/cron"
	"go.uber.org/zap"
)

// Broadcaster posts a message to the workout channel.
type Broadcaster interface {
	Broadcast(ctx context.Context, text string) error
}

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	Hours          ActiveHours
	Schedule       cron.Schedule
	Location       *time.Location
	Header         string
	RunImmediately bool
}

// Runner fires a Cycle on its schedule and broadcasts the new workout.
type Runner struct {
	cycle       *Cycle
	broadcaster Broadcaster
	opts        RunnerOptions
	logger      *zap.Logger
	now         func() time.Time

	running atomic.Bool

	mu      sync.Mutex
	stopped bool
	jobs    sync.WaitGroup
}

// NewRunner creates a Runner.
func NewRunner(cycle *Cycle, broadcaster Broadcaster, opts RunnerOptions, logger *zap.Logger) *Runner {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cycle:       cycle,
		broadcaster: broadcaster,
		opts:        opts,
		logger:      logger,
		now:         time.Now,
	}
}

// Run schedules the cycle and blocks until ctx is done. Jobs in flight are waited for.
func (r *Runner) Run(ctx context.Context) error {
	c := cron.NewWithLocation(r.opts.Location)
	c.Schedule(r.opts.Schedule, cron.FuncJob(func() { r.job(ctx) }))

	if r.opts.RunImmediately {
		r.job(ctx)
	}

	c.Start()
	r.logger.Info("workout scheduler started",
		zap.Int("active_from", r.opts.Hours.From),
		zap.Int("active_to", r.opts.Hours.To),
		zap.Bool("weekends", r.opts.Hours.Weekends))

	<-ctx.Done()
	c.Stop()

	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()
	r.jobs.Wait()

	r.logger.Info("workout scheduler stopped")
	return nil
}

func (r *Runner) job(ctx context.Context) {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.jobs.Add(1)
	r.mu.Unlock()
	defer r.jobs.Done()

	r.Tick(ctx)
}

// Tick runs one cycle if inside active hours and broadcasts the result. Overlapping ticks
// are skipped.
func (r *Runner) Tick(ctx context.Context) {
	if !r.running.CompareAndSwap(false, true) {
		r.logger.Warn("previous cycle still running, skipping")
		return
	}
	defer r.running.Store(false)

	now := r.now().In(r.opts.Location)
	if !r.opts.Hours.Contains(now) {
		r.logger.Debug("outside active hours", zap.Time("now", now))
		return
	}

	set, err := r.cycle.OnCycle(ctx)
	if set == nil {
		return
	}
	if err != nil {
		r.logger.Warn("broadcasting despite failed flush", zap.String("set_id", set.ID.String()), zap.Error(err))
	}

	if err := r.broadcaster.Broadcast(ctx, workout.Render(r.opts.Header, set)); err != nil {
		r.logger.Error("broadcast workout", zap.String("set_id", set.ID.String()), zap.Error(err))
		return
	}
	r.logger.Info("workout broadcast", zap.String("set_id", set.ID.String()))
}
