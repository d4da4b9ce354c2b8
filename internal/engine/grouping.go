// internal/engine/grouping.go
package engine

import (
	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/domain"
)

// rowSpec is the identity of one analysis row before any metrics are
// computed: which SKUs it covers and how it is labelled. Each grouping
// mode produces rowSpecs; a single calculator turns them into rows, so
// the summation logic exists exactly once.
type rowSpec struct {
	id      string
	name    string
	isGroup bool
	skus    []string
}

// buildRowSpecs dispatches on the grouping mode.
//
//   - sku: one row per product.
//   - category: one row per distinct category value in the catalog.
//   - custom: one row per custom group, plus one row per product not
//     claimed by any group, so every product appears exactly once.
//
// Unknown modes fall back to per-SKU rows.
func buildRowSpecs(products []domain.Product, groups []domain.CustomGroup, mode string) []rowSpec {
	switch mode {
	case domain.GroupByCategory:
		return categoryRows(products)
	case domain.GroupByCustom:
		return customRows(products, groups)
	default:
		return skuRows(products)
	}
}

func skuRows(products []domain.Product) []rowSpec {
	specs := make([]rowSpec, 0, len(products))
	for _, p := range products {
		specs = append(specs, rowSpec{
			id:   p.SKU,
			name: p.Name,
			skus: []string{p.SKU},
		})
	}
	return specs
}

func categoryRows(products []domain.Product) []rowSpec {
	bySKU := make(map[string][]string)
	var order []string
	for _, p := range products {
		if _, seen := bySKU[p.Category]; !seen {
			order = append(order, p.Category)
		}
		bySKU[p.Category] = append(bySKU[p.Category], p.SKU)
	}

	specs := make([]rowSpec, 0, len(order))
	for _, category := range order {
		specs = append(specs, rowSpec{
			id:      category,
			name:    category,
			isGroup: true,
			skus:    bySKU[category],
		})
	}
	return specs
}

func customRows(products []domain.Product, groups []domain.CustomGroup) []rowSpec {
	claimed := make(map[string]bool)
	specs := make([]rowSpec, 0, len(groups))

	for _, g := range groups {
		// an empty group still yields a row with all-zero metrics
		skus := make([]string, 0, len(g.SKUs))
		for _, sku := range g.SKUs {
			skus = append(skus, sku)
			claimed[sku] = true
		}
		specs = append(specs, rowSpec{
			id:      g.ID,
			name:    g.Name,
			isGroup: true,
			skus:    skus,
		})
	}

	for _, p := range products {
		if claimed[p.SKU] {
			continue
		}
		specs = append(specs, rowSpec{
			id:   p.SKU,
			name: p.Name,
			skus: []string{p.SKU},
		})
	}
	return specs
}
