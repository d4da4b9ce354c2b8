package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/cache"
	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/domain"
	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/repository"
)

type stubDatasets struct {
	products     []domain.Product
	transactions []domain.Transaction
	inventory    []domain.InventoryState

	listCalls   int
	reviewed    map[string]repository.ReviewPatch
	reviewedErr error
}

func (s *stubDatasets) ListProducts(ctx context.Context) ([]domain.Product, error) {
	s.listCalls++
	return s.products, nil
}

func (s *stubDatasets) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	return s.transactions, nil
}

func (s *stubDatasets) ListInventory(ctx context.Context) ([]domain.InventoryState, error) {
	return s.inventory, nil
}

func (s *stubDatasets) GetFilterOptions(ctx context.Context) (domain.FilterOptions, error) {
	return domain.FilterOptions{}, nil
}

func (s *stubDatasets) UpsertProducts(ctx context.Context, products []domain.Product) error {
	s.products = products
	return nil
}

func (s *stubDatasets) UpsertTransactions(ctx context.Context, transactions []domain.Transaction) error {
	s.transactions = transactions
	return nil
}

func (s *stubDatasets) UpsertInventory(ctx context.Context, counts []domain.InventoryState) error {
	s.inventory = counts
	return nil
}

func (s *stubDatasets) ApplySyncBatch(ctx context.Context, transactions []domain.Transaction, counts []domain.InventoryState) error {
	s.transactions = append(s.transactions, transactions...)
	s.inventory = append(s.inventory, counts...)
	return nil
}

func (s *stubDatasets) UpdateTransactionReview(ctx context.Context, id string, patch repository.ReviewPatch) error {
	if s.reviewedErr != nil {
		return s.reviewedErr
	}
	if s.reviewed == nil {
		s.reviewed = map[string]repository.ReviewPatch{}
	}
	s.reviewed[id] = patch
	return nil
}

type stubGroups struct {
	groups []domain.CustomGroup
}

func (s *stubGroups) ListGroups(ctx context.Context) ([]domain.CustomGroup, error) {
	return s.groups, nil
}

func (s *stubGroups) SaveGroup(ctx context.Context, group domain.CustomGroup) error {
	for i := range s.groups {
		if s.groups[i].ID == group.ID {
			s.groups[i] = group
			return nil
		}
	}
	s.groups = append(s.groups, group)
	return nil
}

func (s *stubGroups) DeleteGroup(ctx context.Context, id string) error {
	for i := range s.groups {
		if s.groups[i].ID == id {
			s.groups = append(s.groups[:i], s.groups[i+1:]...)
			return nil
		}
	}
	return nil
}

// countingCache records cache traffic so tests can assert the
// read-through and invalidation behavior.
type countingCache struct {
	stored      map[string]*cache.AnalysisResult
	gets, sets  int
	invalidates int
}

func newCountingCache() *countingCache {
	return &countingCache{stored: map[string]*cache.AnalysisResult{}}
}

func (c *countingCache) Get(ctx context.Context, filters *domain.FilterState) (*cache.AnalysisResult, bool, error) {
	c.gets++
	result, ok := c.stored[filters.Fingerprint()]
	return result, ok, nil
}

func (c *countingCache) Set(ctx context.Context, filters *domain.FilterState, result *cache.AnalysisResult) error {
	c.sets++
	c.stored[filters.Fingerprint()] = result
	return nil
}

func (c *countingCache) InvalidateAll(ctx context.Context) error {
	c.invalidates++
	c.stored = map[string]*cache.AnalysisResult{}
	return nil
}

func fixtureDatasets() *stubDatasets {
	counted := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	return &stubDatasets{
		products: []domain.Product{
			{SKU: "CF-001", Name: "House Blend", Category: "Coffee", Cost: 5, Price: 12},
			{SKU: "CF-002", Name: "Dark Roast", Category: "Coffee", Cost: 6, Price: 14},
		},
		transactions: []domain.Transaction{
			{ID: "t1", Date: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), SKU: "CF-001", QtySold: 4, Property: "Main St"},
			{ID: "t2", Date: time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC), SKU: "CF-002", QtySold: 2, Property: "Main St"},
		},
		inventory: []domain.InventoryState{
			{SKU: "CF-001", QtyOnHand: 30, LastCounted: &counted},
			{SKU: "CF-002", QtyOnHand: 12, LastCounted: &counted},
		},
	}
}

func janWindow() domain.FilterState {
	return domain.FilterState{
		DateStart: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		DateEnd:   time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		GroupBy:   domain.GroupBySKU,
	}
}

func TestGetAnalysisReadThrough(t *testing.T) {
	datasets := fixtureDatasets()
	cc := newCountingCache()
	svc := NewAnalysisService(datasets, &stubGroups{}, cc)

	first, err := svc.GetAnalysis(context.Background(), janWindow())
	require.NoError(t, err)
	require.Len(t, first.Rows, 2)
	assert.Equal(t, 1, cc.sets)

	second, err := svc.GetAnalysis(context.Background(), janWindow())
	require.NoError(t, err)
	assert.Equal(t, first.Rows, second.Rows)
	assert.Equal(t, 1, cc.sets, "cache hit must not recompute")
	assert.Equal(t, 1, datasets.listCalls, "cache hit must not reload data")
}

func TestGetAnalysisDistinctFiltersMiss(t *testing.T) {
	cc := newCountingCache()
	svc := NewAnalysisService(fixtureDatasets(), &stubGroups{}, cc)

	_, err := svc.GetAnalysis(context.Background(), janWindow())
	require.NoError(t, err)

	narrower := janWindow()
	narrower.Properties = []string{"Main St"}
	_, err = svc.GetAnalysis(context.Background(), narrower)
	require.NoError(t, err)

	assert.Equal(t, 2, cc.sets, "different filters must compute separately")
}

func TestReviewEditInvalidatesCache(t *testing.T) {
	datasets := fixtureDatasets()
	cc := newCountingCache()
	svc := NewAnalysisService(datasets, &stubGroups{}, cc)

	before, err := svc.GetAnalysis(context.Background(), janWindow())
	require.NoError(t, err)
	row := findByID(t, before.Rows, "CF-001")
	assert.Equal(t, 4, row.QtySold)

	ignored := domain.ReviewIgnored
	err = svc.UpdateTransactionReview(context.Background(), "t1", repository.ReviewPatch{ReviewStatus: &ignored})
	require.NoError(t, err)
	assert.Equal(t, 1, cc.invalidates)

	// The stub does not mutate its rows, but the edit must still force a
	// fresh pass through the repository.
	datasets.transactions[0].ReviewStatus = domain.ReviewIgnored
	after, err := svc.GetAnalysis(context.Background(), janWindow())
	require.NoError(t, err)
	row = findByID(t, after.Rows, "CF-001")
	assert.Equal(t, 0, row.QtySold)
	assert.Equal(t, 1, after.Diagnostics.IgnoredTransactions)
}

func TestGroupEditsInvalidateCache(t *testing.T) {
	cc := newCountingCache()
	groups := &stubGroups{}
	svc := NewAnalysisService(fixtureDatasets(), groups, cc)

	err := svc.SaveGroup(context.Background(), domain.CustomGroup{ID: "g1", Name: "Blends", SKUs: []string{"CF-001", "CF-002"}})
	require.NoError(t, err)
	assert.Equal(t, 1, cc.invalidates)

	filters := janWindow()
	filters.GroupBy = domain.GroupByCustom
	result, err := svc.GetAnalysis(context.Background(), filters)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Blends", result.Rows[0].Name)
	assert.Equal(t, 6, result.Rows[0].QtySold)

	require.NoError(t, svc.DeleteGroup(context.Background(), "g1"))
	assert.Equal(t, 2, cc.invalidates)
}

func TestSaveGroupRequiresID(t *testing.T) {
	svc := NewAnalysisService(fixtureDatasets(), &stubGroups{}, nil)
	err := svc.SaveGroup(context.Background(), domain.CustomGroup{Name: "no id"})
	assert.Error(t, err)
}

func TestForecastAttachesSchedules(t *testing.T) {
	svc := NewAnalysisService(fixtureDatasets(), &stubGroups{}, nil)

	rows, err := svc.Forecast(context.Background(), janWindow())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Len(t, row.CalendarSchedule, 12, "row %s", row.ID)
		assert.True(t, row.HasHistory, "row %s", row.ID)
	}
}

func TestGetRowSchedule(t *testing.T) {
	svc := NewAnalysisService(fixtureDatasets(), &stubGroups{}, nil)

	row, err := svc.GetRowSchedule(context.Background(), janWindow(), "CF-002")
	require.NoError(t, err)
	assert.Equal(t, "CF-002", row.ID)
	assert.Len(t, row.CalendarSchedule, 12)

	_, err = svc.GetRowSchedule(context.Background(), janWindow(), "missing")
	assert.Error(t, err)
}

func findByID(t *testing.T, rows []domain.AnalysisRow, id string) domain.AnalysisRow {
	t.Helper()
	for _, row := range rows {
		if row.ID == id {
			return row
		}
	}
	t.Fatalf("row %s not found", id)
	return domain.AnalysisRow{}
}
