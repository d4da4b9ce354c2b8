// internal/domain/models.go
package domain

import "time"

// Review status values for a transaction. A transaction marked
// ReviewIgnored is excluded from every aggregate and forecast.
const (
	ReviewPending  = "pending"
	ReviewVerified = "verified"
	ReviewIgnored  = "ignored"
	ReviewModified = "modified"
)

// Product is a catalog entry keyed by SKU. Cost and Price hold the
// current values; historical accuracy depends on transactions carrying
// their own point-in-time overrides.
type Product struct {
	SKU        string  `json:"sku" db:"sku"`
	Name       string  `json:"name" db:"name"`
	Department string  `json:"department" db:"department"`
	Category   string  `json:"category" db:"category"`
	Vendor     string  `json:"vendor" db:"vendor"`
	Cost       float64 `json:"cost" db:"cost"`
	Price      float64 `json:"price" db:"price"`
}

// Transaction is an atomic sale event. Date carries calendar-day
// semantics only; time-of-day is never compared.
type Transaction struct {
	ID            string    `json:"id" db:"id"`
	Date          time.Time `json:"date" db:"date"`
	SKU           string    `json:"sku" db:"sku"`
	QtySold       int       `json:"qtySold" db:"qty_sold"`
	Discount      float64   `json:"discount" db:"discount"`
	Property      string    `json:"property" db:"property"`
	UnitPriceSold *float64  `json:"unit_price_sold,omitempty" db:"unit_price_sold"`
	UnitCostSold  *float64  `json:"unit_cost_sold,omitempty" db:"unit_cost_sold"`
	ReviewStatus  string    `json:"review_status,omitempty" db:"review_status"`
}

// EffectivePrice returns the point-in-time unit price when the
// transaction carries one, falling back to the product's current price.
func (t *Transaction) EffectivePrice(p Product) float64 {
	if t.UnitPriceSold != nil {
		return *t.UnitPriceSold
	}
	return p.Price
}

// EffectiveCost returns the point-in-time unit cost when present,
// falling back to the product's current cost.
func (t *Transaction) EffectiveCost(p Product) float64 {
	if t.UnitCostSold != nil {
		return *t.UnitCostSold
	}
	return p.Cost
}

// Ignored reports whether the review workflow excluded this transaction.
func (t *Transaction) Ignored() bool {
	return t.ReviewStatus == ReviewIgnored
}

// InventoryState is a point-in-time stock count. An empty Property means
// a company-wide count. Negative QtyOnHand only occurs through upstream
// data errors and is floored at zero by consumers.
type InventoryState struct {
	SKU         string     `json:"sku" db:"sku"`
	QtyOnHand   int        `json:"qtyOnHand" db:"qty_on_hand"`
	Property    string     `json:"property,omitempty" db:"property"`
	LastCounted *time.Time `json:"lastCounted,omitempty" db:"last_counted"`
}

// CustomGroup is a user-defined bundle of SKUs, used when grouping mode
// is "custom".
type CustomGroup struct {
	ID   string   `json:"id" db:"id"`
	Name string   `json:"name" db:"name"`
	SKUs []string `json:"skus" db:"-"`
}

// CellLogic is one month's entry in a row's restock schedule. The
// closing stock of month i is the opening stock of month i+1.
type CellLogic struct {
	MonthIndex        int     `json:"monthIndex"`
	MonthLabel        string  `json:"monthLabel"`
	ForecastedDemand  int     `json:"forecastedDemand"`
	OpeningStock      int     `json:"openingStock"`
	TargetStock       int     `json:"targetStock"`
	RestockQty        int     `json:"restockQty"`
	RestockCost       float64 `json:"restockCost"`
	ClosingStock      int     `json:"closingStock"`
	HistoricalAverage float64 `json:"historicalAverage"`
}

// MonthsOfSupplySentinel is reported when a row has stock on hand but no
// demand in the window. Presentation renders it as ">12".
const MonthsOfSupplySentinel = 999

// AnalysisRow is a derived aggregation unit: one SKU, one category, or
// one custom group. Rows are recomputed in full on every input change
// and never mutated incrementally.
type AnalysisRow struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	IsGroup    bool     `json:"isGroup"`
	SKUs       []string `json:"skus"`
	Department string   `json:"department"`
	Category   string   `json:"category"`
	Vendor     string   `json:"vendor"`

	QtySold      int     `json:"qtySold"`
	GrossRevenue float64 `json:"grossRevenue"`
	Discounts    float64 `json:"discounts"`
	Revenue      float64 `json:"revenue"`
	Profit       float64 `json:"profit"`
	QtyOnHand    int     `json:"qtyOnHand"`
	ProductCost  float64 `json:"productCost"`

	AvgMonthlyDemand float64 `json:"avgMonthlyDemand"`
	MonthsOfSupply   float64 `json:"monthsOfSupply"`
	SuggestedReorder float64 `json:"suggestedReorder"`

	CalendarSchedule []CellLogic `json:"calendarSchedule,omitempty"`
	HasHistory       bool        `json:"hasHistory"`
}

// Diagnostics surfaces data-quality findings from an analysis pass.
// None of these abort the computation; dirty retail data is expected.
type Diagnostics struct {
	UnknownSKUTransactions int `json:"unknownSkuTransactions"`
	IgnoredTransactions    int `json:"ignoredTransactions"`
	MissingPriceOverrides  int `json:"missingPriceOverrides"`
	MissingCostOverrides   int `json:"missingCostOverrides"`
}

// FilterOptions lists the distinct label values present in the catalog,
// used to populate filter controls.
type FilterOptions struct {
	Categories  []string `json:"categories"`
	Departments []string `json:"departments"`
	Vendors     []string `json:"vendors"`
	Properties  []string `json:"properties"`
}
