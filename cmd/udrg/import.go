package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/config"
	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/importer"
	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/repository"
	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/storage"
	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/pkg/logger"
)

func importCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import CSV exports or pull directly from Google Sheets",
		Flags: []cli.Flag{
			newDBURLFlag(),
			&cli.StringFlag{
				Name:  "products",
				Usage: "Path to the product catalog CSV",
			},
			&cli.StringFlag{
				Name:  "sales",
				Usage: "Path to the sales CSV",
			},
			&cli.StringFlag{
				Name:  "inventory",
				Usage: "Path to the inventory count log CSV",
			},
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Import every CSV in a directory, inferring the dataset from file names",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent files for --dir imports",
				Value: 4,
			},
			&cli.BoolFlag{
				Name:  "sheets",
				Usage: "Pull all record sets from the configured Google Sheet instead of CSVs",
			},
			&cli.DurationFlag{
				Name:  "watch",
				Usage: "With --sheets, keep re-pulling at this interval until interrupted",
			},
		},
		Action: runImport,
	}
}

func runImport(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	datasets := repository.NewDatasetRepository(db)

	if c.Bool("sheets") {
		return importFromSheets(c, datasets)
	}

	cfg := config.Load()
	archive := buildArchive(c, cfg)
	imp := importer.New(datasets, archive)

	if dir := c.String("dir"); dir != "" {
		return importFromDir(c, imp, dir)
	}

	ran := false
	if path := c.String("products"); path != "" {
		ran = true
		summary, err := imp.ImportProducts(c.Context, path)
		if err != nil {
			return err
		}
		logSummary(summary)
	}
	if path := c.String("sales"); path != "" {
		ran = true
		summary, err := imp.ImportSales(c.Context, path)
		if err != nil {
			return err
		}
		logSummary(summary)
	}
	if path := c.String("inventory"); path != "" {
		ran = true
		summary, err := imp.ImportInventory(c.Context, path)
		if err != nil {
			return err
		}
		logSummary(summary)
	}

	if !ran {
		return fmt.Errorf("nothing to import: pass --products, --sales, --inventory, --dir, or --sheets")
	}
	return nil
}

func importFromDir(c *cli.Context, imp *importer.Importer, dir string) error {
	result, err := imp.ImportDir(c.Context, dir, importer.BatchConfig{
		WorkerCount:   c.Int("workers"),
		RetryAttempts: 2,
	})
	if err != nil {
		return err
	}
	for i := range result.Summaries {
		logSummary(&result.Summaries[i])
	}
	if len(result.Failed) > 0 {
		return fmt.Errorf("%d file(s) failed to import: %v", len(result.Failed), result.Failed)
	}
	if len(result.Summaries) == 0 {
		logger.Log.Warn().Str("dir", dir).Msg("no CSV files found")
	}
	return nil
}

func importFromSheets(c *cli.Context, datasets repository.DatasetRepository) error {
	cfg := config.Load()
	loader, err := importer.NewSheetsLoader(c.Context, cfg.Sheets.CredentialsJSON, cfg.Sheets.SpreadsheetID)
	if err != nil {
		return err
	}

	if interval := c.Duration("watch"); interval > 0 {
		return watchSheets(c.Context, loader, datasets, interval)
	}
	return pullSheets(c.Context, loader, datasets)
}

// watchSheets re-pulls the spreadsheet on a fixed interval. A failed
// pull is logged and retried on the next tick rather than stopping the
// watch.
func watchSheets(ctx context.Context, loader *importer.SheetsLoader, datasets repository.DatasetRepository, interval time.Duration) error {
	logger.Log.Info().Dur("interval", interval).Msg("watching spreadsheet for changes")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := pullSheets(ctx, loader, datasets); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Log.Error().Err(err).Msg("sheets pull failed, will retry")
		}
		select {
		case <-ctx.Done():
			logger.Log.Info().Msg("watch stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func pullSheets(ctx context.Context, loader *importer.SheetsLoader, datasets repository.DatasetRepository) error {
	products, err := loader.LoadProducts(ctx)
	if err != nil {
		return err
	}
	if err := datasets.UpsertProducts(ctx, products); err != nil {
		return err
	}

	sales, skipped, err := loader.LoadSales(ctx)
	if err != nil {
		return err
	}
	if err := datasets.UpsertTransactions(ctx, sales); err != nil {
		return err
	}

	inventory, err := loader.LoadInventory(ctx)
	if err != nil {
		return err
	}
	if err := datasets.UpsertInventory(ctx, inventory); err != nil {
		return err
	}

	logger.Log.Info().
		Int("products", len(products)).
		Int("sales", len(sales)).
		Int("skipped", skipped).
		Int("inventory", len(inventory)).
		Msg("sheets import complete")
	return nil
}

func buildArchive(c *cli.Context, cfg *config.Config) storage.ObjectArchive {
	if !cfg.Archive.Enabled {
		return storage.NewNoopArchive()
	}
	archive, err := storage.NewMinioArchive(c.Context, cfg.Archive)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("import archive unavailable, continuing without it")
		return storage.NewNoopArchive()
	}
	return archive
}

func logSummary(summary *importer.Summary) {
	logger.Log.Info().
		Str("file", summary.File).
		Str("kind", summary.Kind).
		Int("imported", summary.Imported).
		Int("skipped", summary.Skipped).
		Msg("import complete")
}
