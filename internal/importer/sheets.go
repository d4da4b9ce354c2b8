// internal/importer/sheets.go
package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/domain"
)

// Default tab names in the source spreadsheet.
const (
	SheetSales     = "Sales"
	SheetInventory = "Inventory Count Log"
	SheetProducts  = "Products"
)

// SheetsLoader pulls the three record sets straight from the Google
// spreadsheet the retailer maintains, reusing the CSV record builders
// so both paths apply identical coercion rules.
type SheetsLoader struct {
	srv           *sheets.Service
	spreadsheetID string
}

func NewSheetsLoader(ctx context.Context, credentialsJSON, spreadsheetID string) (*SheetsLoader, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id must be provided")
	}

	config, err := google.JWTConfigFromJSON(
		[]byte(credentialsJSON),
		sheets.SpreadsheetsReadonlyScope,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account credentials: %v", err)
	}

	client := config.Client(ctx)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets client: %v", err)
	}

	return &SheetsLoader{srv: srv, spreadsheetID: spreadsheetID}, nil
}

// LoadProducts reads the catalog tab.
func (l *SheetsLoader) LoadProducts(ctx context.Context) ([]domain.Product, error) {
	data, err := l.fetchTab(ctx, SheetProducts)
	if err != nil {
		return nil, err
	}
	return ParseProducts(bytes.NewReader(data))
}

// LoadSales reads the sales tab.
func (l *SheetsLoader) LoadSales(ctx context.Context) ([]domain.Transaction, int, error) {
	data, err := l.fetchTab(ctx, SheetSales)
	if err != nil {
		return nil, 0, err
	}
	return ParseSales(bytes.NewReader(data))
}

// LoadInventory reads the count log tab.
func (l *SheetsLoader) LoadInventory(ctx context.Context) ([]domain.InventoryState, error) {
	data, err := l.fetchTab(ctx, SheetInventory)
	if err != nil {
		return nil, err
	}
	return ParseInventory(bytes.NewReader(data))
}

// fetchTab pulls a whole tab and re-encodes it as CSV so the shared
// parsers can consume it.
func (l *SheetsLoader) fetchTab(ctx context.Context, tab string) ([]byte, error) {
	resp, err := l.srv.Spreadsheets.Values.Get(l.spreadsheetID, tab).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to read sheet tab %q: %v", tab, err)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	for _, row := range resp.Values {
		record := make([]string, len(row))
		for i, cell := range row {
			record[i] = fmt.Sprint(cell)
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("encode sheet tab %q: %w", tab, err)
		}
	}
	writer.Flush()
	return buf.Bytes(), writer.Error()
}
