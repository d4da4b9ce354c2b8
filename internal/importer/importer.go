// internal/importer/importer.go
package importer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/repository"
	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/storage"
)

// Importer loads CSV exports into the data store and archives the raw
// files. It is used by the CLI and by the sync receiver's backfill path.
type Importer struct {
	datasets repository.DatasetRepository
	archive  storage.ObjectArchive
}

// Summary reports what an import pass did.
type Summary struct {
	File     string `json:"file"`
	Kind     string `json:"kind"`
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
}

func New(datasets repository.DatasetRepository, archive storage.ObjectArchive) *Importer {
	if archive == nil {
		archive = storage.NewNoopArchive()
	}
	return &Importer{datasets: datasets, archive: archive}
}

// ImportProducts loads a product catalog export.
func (imp *Importer) ImportProducts(ctx context.Context, path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	products, err := ParseProducts(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := imp.datasets.UpsertProducts(ctx, products); err != nil {
		return nil, err
	}

	imp.archiveFile(ctx, "products", path, data)
	return &Summary{File: filepath.Base(path), Kind: "products", Imported: len(products)}, nil
}

// ImportSales loads a sales export.
func (imp *Importer) ImportSales(ctx context.Context, path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	transactions, skipped, err := ParseSales(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := imp.datasets.UpsertTransactions(ctx, transactions); err != nil {
		return nil, err
	}

	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Str("file", path).Msg("sales rows dropped (missing sku or date)")
	}
	imp.archiveFile(ctx, "sales", path, data)
	return &Summary{File: filepath.Base(path), Kind: "sales", Imported: len(transactions), Skipped: skipped}, nil
}

// ImportInventory loads an inventory count log export.
func (imp *Importer) ImportInventory(ctx context.Context, path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	counts, err := ParseInventory(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := imp.datasets.UpsertInventory(ctx, counts); err != nil {
		return nil, err
	}

	imp.archiveFile(ctx, "inventory", path, data)
	return &Summary{File: filepath.Base(path), Kind: "inventory", Imported: len(counts)}, nil
}

// archiveFile keeps a timestamped raw copy; archive failures never fail
// the import itself.
func (imp *Importer) archiveFile(ctx context.Context, kind, path string, data []byte) {
	key := fmt.Sprintf("%s/%s/%s", kind, time.Now().Format("20060102"), filepath.Base(path))
	if err := imp.archive.UploadObject(ctx, key, data); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("import archive upload failed")
	}
}
