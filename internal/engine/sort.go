// internal/engine/sort.go
package engine

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/domain"
)

// Sortable fields. String fields use locale-aware collation; numeric
// fields compare by value. Ties keep the stable order of row
// construction.
const (
	SortByName             = "name"
	SortBySKU              = "sku"
	SortByCategory         = "category"
	SortByDepartment       = "department"
	SortByVendor           = "vendor"
	SortByQtySold          = "qtySold"
	SortByGrossRevenue     = "grossRevenue"
	SortByDiscounts        = "discounts"
	SortByRevenue          = "revenue"
	SortByProfit           = "profit"
	SortByQtyOnHand        = "qtyOnHand"
	SortByProductCost      = "productCost"
	SortByAvgMonthlyDemand = "avgMonthlyDemand"
	SortByMonthsOfSupply   = "monthsOfSupply"
	SortBySuggestedReorder = "suggestedReorder"
)

func sortRows(rows []domain.AnalysisRow, field, direction string) {
	if field == "" {
		return
	}

	desc := strings.EqualFold(direction, domain.SortDesc)

	if key := stringKey(field); key != nil {
		coll := collate.New(language.English, collate.IgnoreCase)
		sort.SliceStable(rows, func(i, j int) bool {
			cmp := coll.CompareString(key(&rows[i]), key(&rows[j]))
			if desc {
				return cmp > 0
			}
			return cmp < 0
		})
		return
	}

	if key := numericKey(field); key != nil {
		sort.SliceStable(rows, func(i, j int) bool {
			if desc {
				return key(&rows[i]) > key(&rows[j])
			}
			return key(&rows[i]) < key(&rows[j])
		})
	}
}

func stringKey(field string) func(*domain.AnalysisRow) string {
	switch field {
	case SortByName:
		return func(r *domain.AnalysisRow) string { return r.Name }
	case SortBySKU:
		return func(r *domain.AnalysisRow) string { return r.ID }
	case SortByCategory:
		return func(r *domain.AnalysisRow) string { return r.Category }
	case SortByDepartment:
		return func(r *domain.AnalysisRow) string { return r.Department }
	case SortByVendor:
		return func(r *domain.AnalysisRow) string { return r.Vendor }
	}
	return nil
}

func numericKey(field string) func(*domain.AnalysisRow) float64 {
	switch field {
	case SortByQtySold:
		return func(r *domain.AnalysisRow) float64 { return float64(r.QtySold) }
	case SortByGrossRevenue:
		return func(r *domain.AnalysisRow) float64 { return r.GrossRevenue }
	case SortByDiscounts:
		return func(r *domain.AnalysisRow) float64 { return r.Discounts }
	case SortByRevenue:
		return func(r *domain.AnalysisRow) float64 { return r.Revenue }
	case SortByProfit:
		return func(r *domain.AnalysisRow) float64 { return r.Profit }
	case SortByQtyOnHand:
		return func(r *domain.AnalysisRow) float64 { return float64(r.QtyOnHand) }
	case SortByProductCost:
		return func(r *domain.AnalysisRow) float64 { return r.ProductCost }
	case SortByAvgMonthlyDemand:
		return func(r *domain.AnalysisRow) float64 { return r.AvgMonthlyDemand }
	case SortByMonthsOfSupply:
		return func(r *domain.AnalysisRow) float64 { return r.MonthsOfSupply }
	case SortBySuggestedReorder:
		return func(r *domain.AnalysisRow) float64 { return r.SuggestedReorder }
	}
	return nil
}
