package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/cache"
	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/domain"
	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/engine"
	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/repository"
)

// AnalysisService wires the data source, the aggregation engine, the
// Redis result cache, and the forecast runner together. Aggregation is
// memoized; forecasting runs only on explicit request since it is the
// expensive path.
type AnalysisService struct {
	datasets repository.DatasetRepository
	groups   repository.GroupRepository
	cache    cache.AnalysisCache
	memo     engine.Memo
	runner   *ForecastRunner
}

func NewAnalysisService(
	datasets repository.DatasetRepository,
	groups repository.GroupRepository,
	cacheImpl cache.AnalysisCache,
) *AnalysisService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopAnalysisCache()
	}
	return &AnalysisService{
		datasets: datasets,
		groups:   groups,
		cache:    cacheImpl,
		runner:   NewForecastRunner(0),
	}
}

// GetAnalysis returns the aggregated rows for the given filter,
// served from cache when possible.
func (s *AnalysisService) GetAnalysis(ctx context.Context, filters domain.FilterState) (*cache.AnalysisResult, error) {
	if result, ok, err := s.cache.Get(ctx, &filters); err == nil && ok {
		return result, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("analysis: cache get failed")
	}

	result, err := s.computeAnalysis(ctx, filters)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, &filters, result); err != nil {
		log.Warn().Err(err).Msg("analysis: cache set failed")
	}

	return result, nil
}

// Forecast runs the aggregation for the filter, then enriches every row
// with its 12-month restock schedule. The caller's context cancels the
// run; a cancelled run returns no partial rows.
func (s *AnalysisService) Forecast(ctx context.Context, filters domain.FilterState) ([]domain.AnalysisRow, error) {
	result, err := s.GetAnalysis(ctx, filters)
	if err != nil {
		return nil, err
	}

	history, err := s.datasets.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transaction history: %w", err)
	}

	started := time.Now()
	rows, err := s.runner.Run(ctx, result.Rows, history, time.Now(), filters.Properties)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("rows", len(rows)).
		Dur("elapsed", time.Since(started)).
		Msg("forecast completed")
	return rows, nil
}

// GetRowSchedule returns a single forecasted row, for callers that only
// narrate one row's breakdown.
func (s *AnalysisService) GetRowSchedule(ctx context.Context, filters domain.FilterState, rowID string) (*domain.AnalysisRow, error) {
	rows, err := s.Forecast(ctx, filters)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].ID == rowID {
			return &rows[i], nil
		}
	}
	return nil, fmt.Errorf("row %s not found", rowID)
}

// UpdateTransactionReview applies a review-workflow edit and invalidates
// every cached aggregate: edits always trigger a fresh pass.
func (s *AnalysisService) UpdateTransactionReview(ctx context.Context, id string, patch repository.ReviewPatch) error {
	if err := s.datasets.UpdateTransactionReview(ctx, id, patch); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *AnalysisService) ListGroups(ctx context.Context) ([]domain.CustomGroup, error) {
	return s.groups.ListGroups(ctx)
}

func (s *AnalysisService) SaveGroup(ctx context.Context, group domain.CustomGroup) error {
	if group.ID == "" {
		return fmt.Errorf("custom group id is required")
	}
	if err := s.groups.SaveGroup(ctx, group); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *AnalysisService) DeleteGroup(ctx context.Context, id string) error {
	if err := s.groups.DeleteGroup(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *AnalysisService) GetFilterOptions(ctx context.Context) (domain.FilterOptions, error) {
	return s.datasets.GetFilterOptions(ctx)
}

// InvalidateCaches drops every cached aggregate. Import paths call this
// after writing new records.
func (s *AnalysisService) InvalidateCaches(ctx context.Context) {
	s.invalidate(ctx)
}

func (s *AnalysisService) computeAnalysis(ctx context.Context, filters domain.FilterState) (*cache.AnalysisResult, error) {
	products, err := s.datasets.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	transactions, err := s.datasets.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	inventory, err := s.datasets.ListInventory(ctx)
	if err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}

	var groups []domain.CustomGroup
	if filters.GroupBy == domain.GroupByCustom {
		groups, err = s.groups.ListGroups(ctx)
		if err != nil {
			return nil, fmt.Errorf("load custom groups: %w", err)
		}
	}

	rows, diags := s.memo.Analyze(products, transactions, inventory, groups, filters)
	if diags.UnknownSKUTransactions > 0 {
		log.Warn().
			Int("count", diags.UnknownSKUTransactions).
			Msg("transactions reference unknown SKUs")
	}

	return &cache.AnalysisResult{Rows: rows, Diagnostics: diags}, nil
}

func (s *AnalysisService) invalidate(ctx context.Context) {
	s.memo.Invalidate()
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("analysis: cache invalidation failed")
	}
}
