package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"movebot/internal/catalog"
	"movebot/internal/session"
	"movebot/internal/workout"

	"go.uber.org/zap"
)

// Appender is the write side of the completion store.
type Appender interface {
	Append(ctx context.Context, records []session.Record) error
}

// FlushError reports a failed flush. The batch was requeued for the next cycle.
type FlushError struct {
	Records int
	Err     error
}

func (e *FlushError) Error() string {
	return fmt.Sprintf("flush %d completions: %v", e.Records, e.Err)
}

func (e *FlushError) Unwrap() error { return e.Err }

// Cycle flushes pending completions and generates the next workout.
type Cycle struct {
	catalog *catalog.Catalog
	counts  workout.Counts
	state   *session.State
	store   Appender
	logger  *zap.Logger

	mu  sync.Mutex
	rng workout.Source
}

// NewCycle creates a Cycle. rng is only used under the Cycle's own lock.
func NewCycle(cat *catalog.Catalog, counts workout.Counts, state *session.State, store Appender, rng workout.Source, logger *zap.Logger) *Cycle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cycle{
		catalog: cat,
		counts:  counts,
		state:   state,
		store:   store,
		logger:  logger,
		rng:     rng,
	}
}

// OnCycle flushes pending completions, then generates and installs a new workout.
// A failed flush does not prevent generation: the new set is returned together with a
// *FlushError. On a generation error the set is nil and the previous workout stays active.
func (c *Cycle) OnCycle(ctx context.Context) (*workout.Set, error) {
	var flushErr error
	if n, err := c.pendingFlush(ctx); err != nil {
		flushErr = &FlushError{Records: n, Err: err}
	}

	c.mu.Lock()
	set, err := workout.Generate(c.catalog, c.counts, c.rng)
	c.mu.Unlock()
	if err != nil {
		c.logger.Error("workout generation failed, skipping cycle", zap.Error(err))
		return nil, errors.Join(err, flushErr)
	}

	c.state.ReplaceWorkout(set)
	c.logger.Info("new workout generated",
		zap.String("set_id", set.ID.String()),
		zap.Int("items_per_difficulty", c.counts.Total()))
	return set, flushErr
}

// Flush drains pending completions into the store. When the append fails the batch is
// requeued, so the next flush retries it.
func (c *Cycle) Flush(ctx context.Context) (int, error) {
	n, err := c.pendingFlush(ctx)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// pendingFlush returns the batch size and the append error, if any.
func (c *Cycle) pendingFlush(ctx context.Context) (int, error) {
	batch := c.state.DrainPending()
	if len(batch) == 0 {
		return 0, nil
	}

	if err := c.store.Append(ctx, batch); err != nil {
		c.state.Requeue(batch)
		c.logger.Error("flush failed, completions kept for next cycle",
			zap.Int("records", len(batch)),
			zap.Error(err))
		return len(batch), err
	}

	c.logger.Info("completions flushed", zap.Int("records", len(batch)))
	return len(batch), nil
}
