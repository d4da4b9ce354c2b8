// internal/importer/csv.go
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/domain"
)

// The source exports come from the spreadsheet era of this system:
// "Inventory Management - Sales.csv" and "Inventory Management -
// Inventory Count Log.csv", plus a product catalog export. Headers are
// matched case-insensitively with spaces and underscores stripped, so
// "Qty Sold", "qty_sold", and "qtySold" all resolve to the same column.

type record map[string]string

func readRecords(r io.Reader) ([]record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	keys := make([]string, len(header))
	for i, name := range header {
		keys[i] = normalizeHeader(name)
	}

	var records []record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		rec := make(record, len(keys))
		for i, value := range row {
			if i >= len(keys) {
				break
			}
			rec[keys[i]] = strings.TrimSpace(value)
		}
		records = append(records, rec)
	}
	return records, nil
}

func normalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "")
	name = strings.ReplaceAll(name, "_", "")
	return name
}

func (r record) first(keys ...string) string {
	for _, key := range keys {
		if value, ok := r[key]; ok && value != "" {
			return value
		}
	}
	return ""
}

// parseFloat coerces dirty numeric input to 0 instead of failing the
// row. Currency symbols and thousands separators are tolerated.
func parseFloat(raw string) float64 {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return 0
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return value
}

func parseInt(raw string) int {
	return int(parseFloat(raw))
}

// parseOptionalFloat distinguishes "absent" from "zero": a missing
// point-in-time price must fall back to the catalog value, not to 0.
func parseOptionalFloat(raw string) *float64 {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return nil
	}
	value := parseFloat(cleaned)
	return &value
}

var dateLayouts = []string{
	time.DateOnly,
	"1/2/2006",
	"01/02/2006",
	"2006/01/02",
	time.RFC3339,
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// ParseProducts reads a product catalog export.
func ParseProducts(r io.Reader) ([]domain.Product, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(records))
	for _, rec := range records {
		sku := rec.first("sku", "itemnumber", "item")
		if sku == "" {
			continue
		}
		products = append(products, domain.Product{
			SKU:        sku,
			Name:       rec.first("name", "itemname", "description"),
			Department: rec.first("department", "dept"),
			Category:   rec.first("category"),
			Vendor:     rec.first("vendor", "supplier"),
			Cost:       parseFloat(rec.first("cost", "unitcost")),
			Price:      parseFloat(rec.first("price", "unitprice", "retailprice")),
		})
	}
	return products, nil
}

// ParseSales reads the sales export. Rows without a SKU or a parseable
// date cannot be attributed and are dropped; everything else is coerced
// per the dirty-data policy.
func ParseSales(r io.Reader) ([]domain.Transaction, int, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, 0, err
	}

	var skipped int
	transactions := make([]domain.Transaction, 0, len(records))
	for i, rec := range records {
		sku := rec.first("sku", "itemnumber", "item")
		date, ok := parseDate(rec.first("date", "saledate", "solddate"))
		if sku == "" || !ok {
			skipped++
			continue
		}

		id := rec.first("id", "transactionid", "saleid")
		if id == "" {
			// the spreadsheet export carries no row ids
			id = fmt.Sprintf("%s-%s-%d", sku, date.Format("20060102"), i)
		}

		transactions = append(transactions, domain.Transaction{
			ID:            id,
			Date:          date,
			SKU:           sku,
			QtySold:       parseInt(rec.first("qtysold", "qty", "quantity")),
			Discount:      parseFloat(rec.first("discount", "discountamount")),
			Property:      rec.first("property", "store", "location"),
			UnitPriceSold: parseOptionalFloat(rec.first("unitpricesold", "soldprice")),
			UnitCostSold:  parseOptionalFloat(rec.first("unitcostsold", "soldcost")),
			ReviewStatus:  strings.ToLower(rec.first("reviewstatus", "status")),
		})
	}
	return transactions, skipped, nil
}

// ParseInventory reads the inventory count log export.
func ParseInventory(r io.Reader) ([]domain.InventoryState, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}

	counts := make([]domain.InventoryState, 0, len(records))
	for _, rec := range records {
		sku := rec.first("sku", "itemnumber", "item")
		if sku == "" {
			continue
		}

		count := domain.InventoryState{
			SKU:       sku,
			QtyOnHand: parseInt(rec.first("qtyonhand", "qty", "count", "onhand")),
			Property:  rec.first("property", "store", "location"),
		}
		if counted, ok := parseDate(rec.first("lastcounted", "countdate", "date")); ok {
			count.LastCounted = &counted
		}
		counts = append(counts, count)
	}
	return counts, nil
}
