// internal/engine/forecast.go
package engine

import (
	"math"
	"time"

	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/domain"
)

const (
	forecastHorizonMonths = 12
	seasonalLookbackYears = 3
	growthBuffer          = 1.05
)

// monthHistory accumulates qty sold for one SKU in one calendar month of
// one year. A year counts as "found" by the mere presence of
// transactions, even when returns net the quantity to zero.
type monthHistory struct {
	qty  int
	seen bool
}

// SeasonalIndex is the SKU × (year, month) view of the full transaction
// history used by the forecast lookback. Build it once per forecast run;
// it is immutable afterwards and safe for concurrent readers.
type SeasonalIndex struct {
	bySKU map[string]map[int]monthHistory
}

// BuildSeasonalIndex indexes the unfiltered transaction history by SKU
// and calendar month. Ignored transactions are always excluded; the
// location filter is honored when one is selected, but the performance
// date range is not applied here.
func BuildSeasonalIndex(history []domain.Transaction, properties []string) *SeasonalIndex {
	idx := &SeasonalIndex{bySKU: make(map[string]map[int]monthHistory)}

	propSet := make(map[string]bool, len(properties))
	for _, p := range properties {
		propSet[p] = true
	}

	for _, tx := range history {
		if tx.Ignored() {
			continue
		}
		if len(propSet) > 0 && !propSet[tx.Property] {
			continue
		}
		months := idx.bySKU[tx.SKU]
		if months == nil {
			months = make(map[int]monthHistory)
			idx.bySKU[tx.SKU] = months
		}
		key := yearMonth(tx.Date.Year(), tx.Date.Month())
		entry := months[key]
		entry.qty += tx.QtySold
		entry.seen = true
		months[key] = entry
	}

	return idx
}

// lookup sums qty across the given SKUs for one calendar month of one
// year, reporting whether any of them had transactions.
func (idx *SeasonalIndex) lookup(skus []string, year int, month time.Month) (int, bool) {
	var qty int
	var seen bool
	key := yearMonth(year, month)
	for _, sku := range skus {
		if entry, ok := idx.bySKU[sku][key]; ok && entry.seen {
			qty += entry.qty
			seen = true
		}
	}
	return qty, seen
}

func yearMonth(year int, month time.Month) int {
	return year*100 + int(month)
}

// Forecast enriches each row with a 12-month restock schedule derived
// from 3-year seasonal lookback and a running stock simulation. Rows are
// independent; the input slice is not mutated.
func Forecast(rows []domain.AnalysisRow, history []domain.Transaction, today time.Time, properties []string) []domain.AnalysisRow {
	idx := BuildSeasonalIndex(history, properties)
	out := make([]domain.AnalysisRow, len(rows))
	for i := range rows {
		out[i] = ForecastRow(rows[i], idx, today)
	}
	return out
}

// ForecastRow runs the month-by-month simulation for a single row.
//
// The policy is order-up-to: each month's target stock equals the next
// month's demand forecast (one month of forward cover), and the restock
// quantity tops the simulated stock up to demand plus target. Closing
// stock feeds the next month by construction, so the 12-month schedule
// stays internally consistent even as real stock drifts.
func ForecastRow(row domain.AnalysisRow, idx *SeasonalIndex, today time.Time) domain.AnalysisRow {
	schedule := make([]domain.CellLogic, 0, forecastHorizonMonths)

	// today's on-hand is the starting point, decoupled from the
	// performance date range
	simulatedStock := row.QtyOnHand
	anySeen := false
	currentMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)

	for i := 1; i <= forecastHorizonMonths; i++ {
		target := currentMonth.AddDate(0, i, 0)

		var qtySum, found int
		for back := 1; back <= seasonalLookbackYears; back++ {
			qty, seen := idx.lookup(row.SKUs, target.Year()-back, target.Month())
			if seen {
				qtySum += qty
				found++
			}
		}
		if found > 0 {
			anySeen = true
		}

		var historicalAverage float64
		if found > 0 {
			historicalAverage = float64(qtySum) / float64(found)
		}

		var forecastedDemand int
		if historicalAverage > 0 {
			forecastedDemand = int(math.Ceil(historicalAverage * growthBuffer))
		} else {
			// crude run-rate over the performance window when the
			// month has no seasonal history
			forecastedDemand = int(math.Ceil(float64(row.QtySold) / 3))
		}

		targetStock := forecastedDemand
		openingStock := simulatedStock
		restockQty := forecastedDemand + targetStock - openingStock
		if restockQty < 0 {
			restockQty = 0
		}
		closingStock := openingStock + restockQty - forecastedDemand
		if closingStock < 0 {
			closingStock = 0
		}
		simulatedStock = closingStock

		schedule = append(schedule, domain.CellLogic{
			MonthIndex:        i - 1,
			MonthLabel:        target.Format("Jan 2006"),
			ForecastedDemand:  forecastedDemand,
			OpeningStock:      openingStock,
			TargetStock:       targetStock,
			RestockQty:        restockQty,
			RestockCost:       float64(restockQty) * row.ProductCost,
			ClosingStock:      closingStock,
			HistoricalAverage: historicalAverage,
		})
	}

	row.CalendarSchedule = schedule
	row.HasHistory = anySeen || row.QtySold > 0
	return row
}
