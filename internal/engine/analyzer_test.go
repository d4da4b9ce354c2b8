package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fptr(v float64) *float64 { return &v }

func rangeFilter(start, end time.Time) domain.FilterState {
	return domain.FilterState{
		DateStart: start,
		DateEnd:   end,
		GroupBy:   domain.GroupBySKU,
	}
}

func findRow(t *testing.T, rows []domain.AnalysisRow, id string) domain.AnalysisRow {
	t.Helper()
	for _, row := range rows {
		if row.ID == id {
			return row
		}
	}
	t.Fatalf("row %q not found", id)
	return domain.AnalysisRow{}
}

func TestAnalyzeScenarioBasicMetrics(t *testing.T) {
	// P001 at $10/$4 with two in-range sales: qty 5 clean, qty 3 with a
	// $6 discount.
	products := []domain.Product{
		{SKU: "P001", Name: "Widget", Category: "Hardware", Cost: 4, Price: 10},
	}
	transactions := []domain.Transaction{
		{ID: "t1", Date: day(2026, 3, 2), SKU: "P001", QtySold: 5},
		{ID: "t2", Date: day(2026, 3, 15), SKU: "P001", QtySold: 3, Discount: 6},
	}

	rows, diags := Analyze(products, transactions, nil, nil, rangeFilter(day(2026, 3, 1), day(2026, 3, 31)))
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, 8, row.QtySold)
	assert.InDelta(t, 80, row.GrossRevenue, 1e-9)
	assert.InDelta(t, 6, row.Discounts, 1e-9)
	assert.InDelta(t, 74, row.Revenue, 1e-9)
	assert.InDelta(t, 42, row.Profit, 1e-9)
	assert.Equal(t, 2, diags.MissingPriceOverrides)
}

func TestAnalyzeDerivedRatios(t *testing.T) {
	// 30-day window, 30 units sold, 15 on hand.
	products := []domain.Product{{SKU: "P001", Name: "Widget", Price: 10, Cost: 4}}
	transactions := []domain.Transaction{
		{ID: "t1", Date: day(2026, 3, 10), SKU: "P001", QtySold: 30},
	}
	inventory := []domain.InventoryState{{SKU: "P001", QtyOnHand: 15}}

	rows, _ := Analyze(products, transactions, inventory, nil, rangeFilter(day(2026, 3, 1), day(2026, 3, 31)))
	require.Len(t, rows, 1)

	row := rows[0]
	assert.InDelta(t, 30, row.AvgMonthlyDemand, 1e-9)
	assert.InDelta(t, 0.5, row.MonthsOfSupply, 1e-9)
	assert.InDelta(t, 45, row.SuggestedReorder, 1e-9)
}

func TestAnalyzeZeroDemandSentinel(t *testing.T) {
	products := []domain.Product{{SKU: "P001", Name: "Widget"}}
	inventory := []domain.InventoryState{{SKU: "P001", QtyOnHand: 7}}

	rows, _ := Analyze(products, nil, inventory, nil, rangeFilter(day(2026, 3, 1), day(2026, 3, 31)))
	require.Len(t, rows, 1)

	assert.Equal(t, float64(domain.MonthsOfSupplySentinel), rows[0].MonthsOfSupply)
	assert.Zero(t, rows[0].SuggestedReorder)
}

func TestAnalyzeEffectivePriceOverrides(t *testing.T) {
	products := []domain.Product{{SKU: "P001", Name: "Widget", Price: 10, Cost: 4}}
	transactions := []domain.Transaction{
		{ID: "t1", Date: day(2026, 3, 2), SKU: "P001", QtySold: 2, UnitPriceSold: fptr(8), UnitCostSold: fptr(3)},
		{ID: "t2", Date: day(2026, 3, 3), SKU: "P001", QtySold: 1},
	}

	rows, diags := Analyze(products, transactions, nil, nil, rangeFilter(day(2026, 3, 1), day(2026, 3, 31)))
	require.Len(t, rows, 1)

	// 2×8 (override) + 1×10 (catalog)
	assert.InDelta(t, 26, rows[0].GrossRevenue, 1e-9)
	// 26 − (2×3 + 1×4)
	assert.InDelta(t, 16, rows[0].Profit, 1e-9)
	assert.Equal(t, 1, diags.MissingPriceOverrides)
	assert.Equal(t, 1, diags.MissingCostOverrides)
}

func TestAnalyzeIgnoredTransactionsExcluded(t *testing.T) {
	products := []domain.Product{{SKU: "P001", Name: "Widget", Price: 10, Cost: 4}}
	transactions := []domain.Transaction{
		{ID: "t1", Date: day(2026, 3, 2), SKU: "P001", QtySold: 5},
		{ID: "t2", Date: day(2026, 3, 3), SKU: "P001", QtySold: 9},
	}
	filters := rangeFilter(day(2026, 3, 1), day(2026, 3, 31))

	before, _ := Analyze(products, transactions, nil, nil, filters)
	require.Equal(t, 14, before[0].QtySold)

	transactions[1].ReviewStatus = domain.ReviewIgnored
	after, diags := Analyze(products, transactions, nil, nil, filters)
	assert.Equal(t, 5, after[0].QtySold)
	assert.InDelta(t, 50, after[0].GrossRevenue, 1e-9)
	assert.Equal(t, 1, diags.IgnoredTransactions)
}

func TestAnalyzeUnknownSKUSkippedButCounted(t *testing.T) {
	products := []domain.Product{{SKU: "P001", Name: "Widget", Price: 10}}
	transactions := []domain.Transaction{
		{ID: "t1", Date: day(2026, 3, 2), SKU: "P001", QtySold: 1},
		{ID: "t2", Date: day(2026, 3, 2), SKU: "GHOST", QtySold: 50},
	}

	rows, diags := Analyze(products, transactions, nil, nil, rangeFilter(day(2026, 3, 1), day(2026, 3, 31)))
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].QtySold)
	assert.Equal(t, 1, diags.UnknownSKUTransactions)
}

func TestAnalyzeDateRangeAndPropertyPrefilter(t *testing.T) {
	products := []domain.Product{{SKU: "P001", Name: "Widget", Price: 10}}
	transactions := []domain.Transaction{
		{ID: "in", Date: day(2026, 3, 15), SKU: "P001", QtySold: 2, Property: "Downtown"},
		{ID: "wrong-store", Date: day(2026, 3, 16), SKU: "P001", QtySold: 4, Property: "Airport"},
		{ID: "too-early", Date: day(2026, 2, 28), SKU: "P001", QtySold: 8, Property: "Downtown"},
		{ID: "boundary", Date: day(2026, 3, 31), SKU: "P001", QtySold: 1, Property: "Downtown"},
	}
	filters := rangeFilter(day(2026, 3, 1), day(2026, 3, 31))
	filters.Properties = []string{"Downtown"}

	rows, _ := Analyze(products, transactions, nil, nil, filters)
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].QtySold)
}

func TestAnalyzeInventoryLatestCountWins(t *testing.T) {
	older := day(2026, 1, 1)
	newer := day(2026, 2, 1)
	products := []domain.Product{{SKU: "P001", Name: "Widget"}}
	inventory := []domain.InventoryState{
		{SKU: "P001", QtyOnHand: 100, Property: "Downtown", LastCounted: &older},
		{SKU: "P001", QtyOnHand: 40, Property: "Downtown", LastCounted: &newer},
		{SKU: "P001", QtyOnHand: -5, Property: "Airport"},
	}

	rows, _ := Analyze(products, nil, inventory, nil, rangeFilter(day(2026, 3, 1), day(2026, 3, 31)))
	// newer Downtown count wins; negative Airport count floors to 0
	assert.Equal(t, 40, rows[0].QtyOnHand)
}

func TestAnalyzeCategoryGrouping(t *testing.T) {
	products := []domain.Product{
		{SKU: "A1", Name: "Ale", Category: "Beer", Price: 5, Cost: 2},
		{SKU: "A2", Name: "Lager", Category: "Beer", Price: 7, Cost: 3},
		{SKU: "B1", Name: "Merlot", Category: "Wine", Price: 20, Cost: 12},
	}
	transactions := []domain.Transaction{
		{ID: "t1", Date: day(2026, 3, 2), SKU: "A1", QtySold: 2},
		{ID: "t2", Date: day(2026, 3, 3), SKU: "A2", QtySold: 3},
		{ID: "t3", Date: day(2026, 3, 4), SKU: "B1", QtySold: 1},
	}
	filters := rangeFilter(day(2026, 3, 1), day(2026, 3, 31))
	filters.GroupBy = domain.GroupByCategory

	rows, _ := Analyze(products, transactions, nil, nil, filters)
	require.Len(t, rows, 2)

	beer := findRow(t, rows, "Beer")
	assert.ElementsMatch(t, []string{"A1", "A2"}, beer.SKUs)
	assert.Equal(t, 5, beer.QtySold)
	assert.InDelta(t, 31, beer.GrossRevenue, 1e-9)
	// mean of distinct SKU costs, not revenue-weighted
	assert.InDelta(t, 2.5, beer.ProductCost, 1e-9)
}

func TestAnalyzeCustomGroupingCompleteness(t *testing.T) {
	products := []domain.Product{
		{SKU: "A1", Name: "Ale"},
		{SKU: "A2", Name: "Lager"},
		{SKU: "B1", Name: "Merlot"},
		{SKU: "C1", Name: "Chips"},
	}
	groups := []domain.CustomGroup{
		{ID: "g1", Name: "Draft", SKUs: []string{"A1", "A2"}},
		{ID: "g-empty", Name: "Empty"},
	}
	filters := rangeFilter(day(2026, 3, 1), day(2026, 3, 31))
	filters.GroupBy = domain.GroupByCustom

	rows, _ := Analyze(products, nil, nil, groups, filters)

	var all []string
	for _, row := range rows {
		all = append(all, row.SKUs...)
	}
	// union across group rows and ungrouped rows covers the catalog
	// exactly once
	assert.ElementsMatch(t, []string{"A1", "A2", "B1", "C1"}, all)

	empty := findRow(t, rows, "g-empty")
	assert.True(t, empty.IsGroup)
	assert.Zero(t, empty.QtySold)
	assert.Zero(t, empty.Revenue)
}

func TestAnalyzeSearchAndInclusionFilters(t *testing.T) {
	products := []domain.Product{
		{SKU: "A1", Name: "House Ale", Category: "Beer", Department: "Bar", Vendor: "Acme"},
		{SKU: "B1", Name: "Merlot", Category: "Wine", Department: "Bar", Vendor: "Vintners"},
		{SKU: "C1", Name: "Corn Chips", Category: "Snacks", Department: "Grocery", Vendor: "Acme"},
	}
	base := rangeFilter(day(2026, 3, 1), day(2026, 3, 31))

	t.Run("search defaults to name and sku", func(t *testing.T) {
		filters := base
		filters.Search = "ale"
		rows, _ := Analyze(products, nil, nil, nil, filters)
		require.Len(t, rows, 1)
		assert.Equal(t, "A1", rows[0].ID)
	})

	t.Run("search against vendor field", func(t *testing.T) {
		filters := base
		filters.Search = "acme"
		filters.SearchFields = []string{domain.SearchFieldVendor}
		rows, _ := Analyze(products, nil, nil, nil, filters)
		assert.Len(t, rows, 2)
	})

	t.Run("category inclusion set uses OR semantics", func(t *testing.T) {
		filters := base
		filters.Categories = []string{"Beer", "Wine"}
		rows, _ := Analyze(products, nil, nil, nil, filters)
		assert.Len(t, rows, 2)
	})

	t.Run("department inclusion", func(t *testing.T) {
		filters := base
		filters.Departments = []string{"Grocery"}
		rows, _ := Analyze(products, nil, nil, nil, filters)
		require.Len(t, rows, 1)
		assert.Equal(t, "C1", rows[0].ID)
	})
}

func TestAnalyzeHideZeroToggles(t *testing.T) {
	products := []domain.Product{
		{SKU: "A1", Name: "Ale", Price: 5},
		{SKU: "B1", Name: "Merlot", Price: 20},
	}
	transactions := []domain.Transaction{
		{ID: "t1", Date: day(2026, 3, 2), SKU: "A1", QtySold: 2},
	}
	inventory := []domain.InventoryState{{SKU: "A1", QtyOnHand: 3}}

	filters := rangeFilter(day(2026, 3, 1), day(2026, 3, 31))
	filters.HideZeroSales = true
	filters.HideZeroOnHand = true

	rows, _ := Analyze(products, transactions, inventory, nil, filters)
	require.Len(t, rows, 1)
	assert.Equal(t, "A1", rows[0].ID)
}

func TestAnalyzeSorting(t *testing.T) {
	products := []domain.Product{
		{SKU: "A1", Name: "zucchini", Price: 1},
		{SKU: "B1", Name: "Apple", Price: 1},
		{SKU: "C1", Name: "mango", Price: 1},
	}
	transactions := []domain.Transaction{
		{ID: "t1", Date: day(2026, 3, 2), SKU: "C1", QtySold: 9},
		{ID: "t2", Date: day(2026, 3, 2), SKU: "B1", QtySold: 1},
	}
	base := rangeFilter(day(2026, 3, 1), day(2026, 3, 31))

	t.Run("case-insensitive name ascending", func(t *testing.T) {
		filters := base
		filters.SortField = SortByName
		filters.SortDirection = domain.SortAsc
		rows, _ := Analyze(products, transactions, nil, nil, filters)
		require.Len(t, rows, 3)
		assert.Equal(t, []string{"Apple", "mango", "zucchini"}, []string{rows[0].Name, rows[1].Name, rows[2].Name})
	})

	t.Run("numeric descending", func(t *testing.T) {
		filters := base
		filters.SortField = SortByQtySold
		filters.SortDirection = domain.SortDesc
		rows, _ := Analyze(products, transactions, nil, nil, filters)
		require.Len(t, rows, 3)
		assert.Equal(t, 9, rows[0].QtySold)
		assert.Equal(t, "C1", rows[0].ID)
	})
}

func TestAnalyzeRevenueAndProfitIdentities(t *testing.T) {
	products := []domain.Product{
		{SKU: "A1", Name: "Ale", Price: 5.5, Cost: 2.25},
		{SKU: "B1", Name: "Merlot", Price: 19.99, Cost: 11.5},
	}
	transactions := []domain.Transaction{
		{ID: "t1", Date: day(2026, 3, 2), SKU: "A1", QtySold: 3, Discount: 1.5},
		{ID: "t2", Date: day(2026, 3, 9), SKU: "A1", QtySold: 7, UnitPriceSold: fptr(5), UnitCostSold: fptr(2)},
		{ID: "t3", Date: day(2026, 3, 20), SKU: "B1", QtySold: 2, Discount: 4},
	}

	for _, groupBy := range []string{domain.GroupBySKU, domain.GroupByCategory} {
		filters := rangeFilter(day(2026, 3, 1), day(2026, 3, 31))
		filters.GroupBy = groupBy
		rows, _ := Analyze(products, transactions, nil, nil, filters)
		for _, row := range rows {
			assert.InDelta(t, row.GrossRevenue-row.Discounts, row.Revenue, 1e-9, "revenue identity for %s", row.ID)
		}
	}
}

func TestAnalyzeDateRangeMonotonicity(t *testing.T) {
	products := []domain.Product{{SKU: "A1", Name: "Ale", Price: 5}}
	transactions := []domain.Transaction{
		{ID: "t1", Date: day(2026, 1, 10), SKU: "A1", QtySold: 4},
		{ID: "t2", Date: day(2026, 2, 10), SKU: "A1", QtySold: 6},
		{ID: "t3", Date: day(2026, 3, 10), SKU: "A1", QtySold: 2},
	}

	narrow, _ := Analyze(products, transactions, nil, nil, rangeFilter(day(2026, 2, 1), day(2026, 2, 28)))
	wide, _ := Analyze(products, transactions, nil, nil, rangeFilter(day(2026, 1, 1), day(2026, 3, 31)))

	assert.GreaterOrEqual(t, wide[0].QtySold, narrow[0].QtySold)
	assert.GreaterOrEqual(t, wide[0].GrossRevenue, narrow[0].GrossRevenue)
}

func TestAnalyzeIdempotence(t *testing.T) {
	products := []domain.Product{
		{SKU: "A1", Name: "Ale", Category: "Beer", Price: 5, Cost: 2},
		{SKU: "B1", Name: "Merlot", Category: "Wine", Price: 20, Cost: 12},
	}
	transactions := []domain.Transaction{
		{ID: "t1", Date: day(2026, 3, 2), SKU: "A1", QtySold: 2, Discount: 1},
		{ID: "t2", Date: day(2026, 3, 3), SKU: "B1", QtySold: 1},
	}
	inventory := []domain.InventoryState{{SKU: "A1", QtyOnHand: 6}}
	filters := rangeFilter(day(2026, 3, 1), day(2026, 3, 31))
	filters.SortField = SortByRevenue
	filters.SortDirection = domain.SortDesc

	first, firstDiags := Analyze(products, transactions, inventory, nil, filters)
	second, secondDiags := Analyze(products, transactions, inventory, nil, filters)

	assert.Equal(t, first, second)
	assert.Equal(t, firstDiags, secondDiags)
}

func TestMemoAnalyzeRecomputesOnlyOnChange(t *testing.T) {
	products := []domain.Product{{SKU: "A1", Name: "Ale", Price: 5}}
	transactions := []domain.Transaction{
		{ID: "t1", Date: day(2026, 3, 2), SKU: "A1", QtySold: 2},
	}
	filters := rangeFilter(day(2026, 3, 1), day(2026, 3, 31))

	var memo Memo
	first, _ := memo.Analyze(products, transactions, nil, nil, filters)
	second, _ := memo.Analyze(products, transactions, nil, nil, filters)
	assert.Equal(t, first, second)
	assert.Equal(t, uint64(1), memo.Hits())

	// flipping a review flag must invalidate
	transactions[0].ReviewStatus = domain.ReviewIgnored
	third, _ := memo.Analyze(products, transactions, nil, nil, filters)
	assert.Zero(t, third[0].QtySold)
	assert.Equal(t, uint64(1), memo.Hits())
}
