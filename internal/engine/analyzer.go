// internal/engine/analyzer.go
package engine

import (
	"math"
	"strings"

	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/domain"
)

// Analyze converts the three record sets plus a filter state into an
// ordered list of analysis rows. It is a pure function of its inputs:
// identical inputs always produce identical output and nothing is
// mutated across calls.
func Analyze(
	products []domain.Product,
	transactions []domain.Transaction,
	inventory []domain.InventoryState,
	groups []domain.CustomGroup,
	filters domain.FilterState,
) ([]domain.AnalysisRow, domain.Diagnostics) {
	idx := buildIndex(products, transactions, inventory, filters)
	specs := buildRowSpecs(products, groups, filters.GroupBy)
	monthsDiff := filters.MonthsDiff()

	calc := &rowCalculator{idx: idx}
	rows := make([]domain.AnalysisRow, 0, len(specs))
	for _, spec := range specs {
		row := calc.compute(spec, monthsDiff)
		if !matchRow(&row, &filters) {
			continue
		}
		rows = append(rows, row)
	}

	sortRows(rows, filters.SortField, filters.SortDirection)
	return rows, idx.diags
}

// rowCalculator computes per-row metrics from the shared index. All
// grouping modes flow through the same summation.
type rowCalculator struct {
	idx *datasetIndex
}

func (c *rowCalculator) compute(spec rowSpec, monthsDiff float64) domain.AnalysisRow {
	row := domain.AnalysisRow{
		ID:      spec.id,
		Name:    spec.name,
		IsGroup: spec.isGroup,
		SKUs:    spec.skus,
	}

	var costSum float64
	var costCount int
	departments := newLabelSet()
	categories := newLabelSet()
	vendors := newLabelSet()

	for _, sku := range spec.skus {
		product, known := c.idx.products[sku]
		if known {
			costSum += product.Cost
			costCount++
			departments.add(product.Department)
			categories.add(product.Category)
			vendors.add(product.Vendor)
		}

		row.QtyOnHand += c.idx.onHand[sku]

		for _, tx := range c.idx.txBySKU[sku] {
			price := tx.EffectivePrice(product)
			cost := tx.EffectiveCost(product)
			qty := float64(tx.QtySold)

			row.QtySold += tx.QtySold
			row.GrossRevenue += qty * price
			row.Discounts += tx.Discount
			row.Profit += (qty*price - tx.Discount) - qty*cost
		}
	}

	row.Revenue = row.GrossRevenue - row.Discounts
	if costCount > 0 {
		// arithmetic mean over distinct SKUs, not revenue-weighted
		row.ProductCost = costSum / float64(costCount)
	}
	row.Department = departments.join()
	row.Category = categories.join()
	row.Vendor = vendors.join()

	row.AvgMonthlyDemand = float64(row.QtySold) / monthsDiff
	if row.AvgMonthlyDemand > 0 {
		row.MonthsOfSupply = float64(row.QtyOnHand) / row.AvgMonthlyDemand
	} else {
		row.MonthsOfSupply = domain.MonthsOfSupplySentinel
	}
	row.SuggestedReorder = math.Max(0, row.AvgMonthlyDemand*2-float64(row.QtyOnHand))

	return row
}

// matchRow applies the free-text search, the label inclusion sets, and
// the hide-zero toggles. Inclusion sets use OR semantics within each
// set; a row matches when its joined label contains any selected value.
func matchRow(row *domain.AnalysisRow, filters *domain.FilterState) bool {
	if filters.HideZeroSales && row.QtySold == 0 {
		return false
	}
	if filters.HideZeroOnHand && row.QtyOnHand == 0 {
		return false
	}
	if !matchSearch(row, filters) {
		return false
	}
	if !containsAny(row.Category, filters.Categories) {
		return false
	}
	if !containsAny(row.Department, filters.Departments) {
		return false
	}
	if !containsAny(row.Vendor, filters.Vendors) {
		return false
	}
	return true
}

func matchSearch(row *domain.AnalysisRow, filters *domain.FilterState) bool {
	needle := strings.ToLower(strings.TrimSpace(filters.Search))
	if needle == "" {
		return true
	}

	for _, field := range filters.EffectiveSearchFields() {
		var haystack string
		switch field {
		case domain.SearchFieldName:
			haystack = row.Name
		case domain.SearchFieldSKU:
			haystack = strings.Join(row.SKUs, ",")
		case domain.SearchFieldVendor:
			haystack = row.Vendor
		case domain.SearchFieldCategory:
			haystack = row.Category
		case domain.SearchFieldDepartment:
			haystack = row.Department
		}
		if strings.Contains(strings.ToLower(haystack), needle) {
			return true
		}
	}
	return false
}

func containsAny(label string, selected []string) bool {
	if len(selected) == 0 {
		return true
	}
	lowered := strings.ToLower(label)
	for _, value := range selected {
		if strings.Contains(lowered, strings.ToLower(value)) {
			return true
		}
	}
	return false
}

// labelSet accumulates distinct non-empty labels preserving first-seen
// order, for comma-joined display fields.
type labelSet struct {
	seen   map[string]bool
	values []string
}

func newLabelSet() *labelSet {
	return &labelSet{seen: make(map[string]bool)}
}

func (s *labelSet) add(value string) {
	if value == "" || s.seen[value] {
		return
	}
	s.seen[value] = true
	s.values = append(s.values, value)
}

func (s *labelSet) join() string {
	return strings.Join(s.values, ", ")
}
