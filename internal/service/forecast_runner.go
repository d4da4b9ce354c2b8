package service

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/domain"
	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/engine"
)

// ForecastRunner fans the per-row forecast out over a bounded worker
// group. Rows are independent, so the only shared state is the
// read-only seasonal index. A cancelled context abandons the run and
// returns no rows: stale results are discarded, never served.
type ForecastRunner struct {
	workers int
}

func NewForecastRunner(workers int) *ForecastRunner {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &ForecastRunner{workers: workers}
}

func (r *ForecastRunner) Run(
	ctx context.Context,
	rows []domain.AnalysisRow,
	history []domain.Transaction,
	today time.Time,
	properties []string,
) ([]domain.AnalysisRow, error) {
	idx := engine.BuildSeasonalIndex(history, properties)
	out := make([]domain.AnalysisRow, len(rows))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i := range rows {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = engine.ForecastRow(rows[i], idx, today)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
