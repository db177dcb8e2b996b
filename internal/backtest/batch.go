package backtest

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/newthinker/tradesim/internal/core"
	"github.com/newthinker/tradesim/internal/strategy"
)

// Job is one independent run of a batch
type Job struct {
	Name     string
	Table    *core.Table
	Strategy strategy.Factory
	Params   map[string]any
}

// BatchResult pairs a job with its outcome. Exactly one of Result and Err is set.
type BatchResult struct {
	Job    string
	Result *Result
	Err    error
}

// RunBatch runs jobs with at most parallelism in flight. Each job gets a
// fresh strategy instance and its own portfolio; results keep job order.
// A failing job does not stop the others. The returned error is non-nil
// only when ctx is cancelled, in which case unstarted jobs carry ctx.Err().
func (b *Backtester) RunBatch(ctx context.Context, jobs []Job, parallelism int) ([]BatchResult, error) {
	results := make([]BatchResult, len(jobs))
	for i, job := range jobs {
		results[i].Job = job.Name
	}

	g, gctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			if job.Strategy == nil {
				results[i].Err = core.WrapError(core.ErrStrategyFailed, errors.New("nil strategy factory"))
				return nil
			}

			res, err := b.runJob(job)
			if err != nil {
				b.logger.Warn("batch job failed", zap.String("job", job.Name), zap.Error(err))
				results[i].Err = err
				return nil
			}
			results[i].Result = res
			return nil
		})
	}

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// runJob converts a panic anywhere in the run into the job's error
func (b *Backtester) runJob(job Job) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("backtest panicked: %v", r)
		}
	}()
	return b.Run(job.Table, job.Strategy(), job.Params)
}
