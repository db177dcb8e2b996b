package backtest

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newthinker/tradesim/internal/broker"
	"github.com/newthinker/tradesim/internal/core"
	"github.com/newthinker/tradesim/internal/strategy"
)

func scripted(signals ...core.Signal) strategy.Factory {
	return func() strategy.Strategy {
		return &scriptedStrategy{signals: signals}
	}
}

func TestRunBatch(t *testing.T) {
	rec := newCountingRecorder()
	bt := New(zeroCost(), WithSizer(broker.NewFixedSizer(10)), WithRecorder(rec))

	jobs := make([]Job, 0, 8)
	for i := 0; i < 8; i++ {
		jobs = append(jobs, Job{
			Name:     fmt.Sprintf("job-%d", i),
			Table:    barsTable(100, 100, 100+float64(i)),
			Strategy: scripted(0, 1, 0),
		})
	}

	results, err := bt.RunBatch(context.Background(), jobs, 3)
	require.NoError(t, err)
	require.Len(t, results, 8)

	for i, r := range results {
		assert.Equal(t, fmt.Sprintf("job-%d", i), r.Job)
		require.NoError(t, r.Err)
		assert.InDelta(t, 10000+10*float64(i), r.Result.FinalPortfolioValue, 1e-9)
	}
	assert.Equal(t, 8, rec.runs["success"])
}

func TestRunBatch_FailuresAreIsolated(t *testing.T) {
	bt := New(zeroCost(), WithSizer(broker.NewFixedSizer(10)))

	jobs := []Job{
		{Name: "ok", Table: barsTable(100, 110), Strategy: scripted(0, 1)},
		{Name: "empty", Table: core.NewTableFromBars(nil), Strategy: scripted()},
		{Name: "broken", Table: barsTable(100, 110), Strategy: func() strategy.Strategy {
			return &scriptedStrategy{genErr: errors.New("boom")}
		}},
		{Name: "no factory", Table: barsTable(100, 110)},
		{Name: "panicking factory", Table: barsTable(100, 110), Strategy: func() strategy.Strategy {
			panic("factory exploded")
		}},
	}

	results, err := bt.RunBatch(context.Background(), jobs, 0)
	require.NoError(t, err)

	assert.NoError(t, results[0].Err)
	assert.NotNil(t, results[0].Result)
	assert.True(t, errors.Is(results[1].Err, core.ErrNoData))
	assert.True(t, errors.Is(results[2].Err, core.ErrStrategyFailed))
	assert.True(t, errors.Is(results[3].Err, core.ErrStrategyFailed))
	require.Error(t, results[4].Err)
	assert.Contains(t, results[4].Err.Error(), "factory exploded")
	for _, r := range results[1:] {
		assert.Nil(t, r.Result)
	}
}

func TestRunBatch_Cancelled(t *testing.T) {
	bt := New(zeroCost())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := []Job{
		{Name: "a", Table: barsTable(100, 101), Strategy: scripted()},
		{Name: "b", Table: barsTable(100, 101), Strategy: scripted()},
	}

	results, err := bt.RunBatch(ctx, jobs, 1)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
		assert.Nil(t, r.Result)
	}
}
