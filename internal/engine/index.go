// internal/engine/index.go
package engine

import (
	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/domain"
)

// datasetIndex holds the pre-filtered, SKU-keyed views of the input
// record sets. Building it is a single O(n) pass so per-row metric
// computation never re-scans the full transaction list.
type datasetIndex struct {
	products map[string]domain.Product
	txBySKU  map[string][]domain.Transaction
	onHand   map[string]int

	diags domain.Diagnostics
}

// buildIndex applies the transaction pre-filter (date range, selected
// locations, review status) and indexes everything by SKU. Unknown-SKU
// transactions are dropped from aggregation but counted in diagnostics.
func buildIndex(
	products []domain.Product,
	transactions []domain.Transaction,
	inventory []domain.InventoryState,
	filters domain.FilterState,
) *datasetIndex {
	idx := &datasetIndex{
		products: make(map[string]domain.Product, len(products)),
		txBySKU:  make(map[string][]domain.Transaction),
		onHand:   make(map[string]int),
	}

	for _, p := range products {
		idx.products[p.SKU] = p
	}

	for _, tx := range transactions {
		if tx.Ignored() {
			idx.diags.IgnoredTransactions++
			continue
		}
		if !filters.InDateRange(tx.Date) || !filters.MatchesProperty(tx.Property) {
			continue
		}
		if _, ok := idx.products[tx.SKU]; !ok {
			idx.diags.UnknownSKUTransactions++
			continue
		}
		if tx.UnitPriceSold == nil {
			idx.diags.MissingPriceOverrides++
		}
		if tx.UnitCostSold == nil {
			idx.diags.MissingCostOverrides++
		}
		idx.txBySKU[tx.SKU] = append(idx.txBySKU[tx.SKU], tx)
	}

	for _, count := range latestCounts(inventory) {
		if !filters.MatchesProperty(count.Property) {
			continue
		}
		qty := count.QtyOnHand
		if qty < 0 {
			// negative counts are upstream data errors
			qty = 0
		}
		idx.onHand[count.SKU] += qty
	}

	return idx
}

// latestCounts reduces inventory to one authoritative count per
// (sku, property) pair, keeping the most recent by LastCounted when the
// source set carries historized duplicates.
func latestCounts(inventory []domain.InventoryState) []domain.InventoryState {
	type key struct{ sku, property string }
	latest := make(map[key]domain.InventoryState, len(inventory))
	order := make([]key, 0, len(inventory))

	for _, count := range inventory {
		k := key{count.SKU, count.Property}
		prev, seen := latest[k]
		if !seen {
			latest[k] = count
			order = append(order, k)
			continue
		}
		if newerCount(count, prev) {
			latest[k] = count
		}
	}

	out := make([]domain.InventoryState, 0, len(order))
	for _, k := range order {
		out = append(out, latest[k])
	}
	return out
}

func newerCount(candidate, current domain.InventoryState) bool {
	if candidate.LastCounted == nil {
		return false
	}
	if current.LastCounted == nil {
		return true
	}
	return candidate.LastCounted.After(*current.LastCounted)
}
