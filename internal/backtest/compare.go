package backtest

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/tradequest/tradequest/internal/core"
	"golang.org/x/sync/errgroup"
)

// Compare runs several strategies over one symbol and date range. Bars are
// fetched once and shared read-only across the runs, which execute
// concurrently. Results are ranked by total return, best first.
func (e *Engine) Compare(ctx context.Context, base Options, strategies []string) ([]*Result, error) {
	if len(strategies) == 0 {
		return nil, core.WrapError(core.ErrInvalidRequest, errors.New("no strategies to compare"))
	}

	plans := make([]plan, len(strategies))
	for i, name := range strategies {
		opts := base
		opts.Strategy = name
		p, err := e.prepare(opts)
		if err != nil {
			return nil, err
		}
		plans[i] = p
	}

	start := time.Now()
	bars, err := e.fetch(ctx, plans[0].opts)
	if err != nil {
		return nil, err
	}

	results := make([]*Result, len(plans))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range plans {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := e.execute(p, bars, start)
			status := "completed"
			if err != nil {
				status = "failed"
			}
			e.metrics.RecordBacktest(string(p.kind), status, time.Since(start).Seconds())
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Results.TotalReturnPercent > results[j].Results.TotalReturnPercent
	})
	return results, nil
}
