// cmd/udrg/main.go
//
// Operations CLI: CSV / Google Sheets imports, ad-hoc analysis, and
// restock forecasts from the terminal.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/repository/postgres"
	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/pkg/logger"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func openDB(c *cli.Context) (*postgres.DB, error) {
	return postgres.NewDBFromURL(c.String("db-url"))
}

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "udrg",
		Usage: "Inventory & sales analytics operations",
		Commands: []*cli.Command{
			importCommand(),
			analyzeCommand(),
			forecastCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("command failed")
	}
}
