package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/cache"
	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/domain"
	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/repository"
	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/service"
)

func filterFlags() []cli.Flag {
	return []cli.Flag{
		newDBURLFlag(),
		&cli.StringFlag{
			Name:  "date-start",
			Usage: "Window start (YYYY-MM-DD), defaults to 30 days ago",
		},
		&cli.StringFlag{
			Name:  "date-end",
			Usage: "Window end (YYYY-MM-DD), defaults to today",
		},
		&cli.StringFlag{
			Name:  "group-by",
			Usage: "Grouping mode: sku, category, or custom",
			Value: domain.GroupBySKU,
		},
		&cli.StringSliceFlag{
			Name:  "property",
			Usage: "Restrict to store location(s)",
		},
		&cli.StringFlag{
			Name:  "sort",
			Usage: "Sort field (e.g. revenue, profit, qtySold)",
			Value: "revenue",
		},
	}
}

func cliFilters(c *cli.Context) (domain.FilterState, error) {
	now := time.Now()
	filters := domain.FilterState{
		DateStart:     now.AddDate(0, -1, 0),
		DateEnd:       now,
		GroupBy:       c.String("group-by"),
		Properties:    c.StringSlice("property"),
		SortField:     c.String("sort"),
		SortDirection: domain.SortDesc,
	}

	if raw := c.String("date-start"); raw != "" {
		start, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return filters, fmt.Errorf("invalid --date-start: %w", err)
		}
		filters.DateStart = start
	}
	if raw := c.String("date-end"); raw != "" {
		end, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return filters, fmt.Errorf("invalid --date-end: %w", err)
		}
		filters.DateEnd = end
	}
	return filters, nil
}

func buildAnalysisService(c *cli.Context) (*service.AnalysisService, func(), error) {
	db, err := openDB(c)
	if err != nil {
		return nil, nil, err
	}
	datasets := repository.NewDatasetRepository(db)
	groups := repository.NewGroupRepository(db)
	svc := service.NewAnalysisService(datasets, groups, cache.NewNoopAnalysisCache())
	return svc, func() { db.Close() }, nil
}

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:   "analyze",
		Usage:  "Print aggregated performance rows for a date window",
		Flags:  filterFlags(),
		Action: runAnalyze,
	}
}

func runAnalyze(c *cli.Context) error {
	filters, err := cliFilters(c)
	if err != nil {
		return err
	}

	svc, closeDB, err := buildAnalysisService(c)
	if err != nil {
		return err
	}
	defer closeDB()

	result, err := svc.GetAnalysis(c.Context, filters)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tQTY\tGROSS\tDISC\tREVENUE\tPROFIT\tON HAND\tMOS\tREORDER")
	for _, row := range result.Rows {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%d\t%s\t%.1f\n",
			row.ID, row.Name, row.QtySold, row.GrossRevenue, row.Discounts,
			row.Revenue, row.Profit, row.QtyOnHand,
			formatMonthsOfSupply(row.MonthsOfSupply), row.SuggestedReorder)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if result.Diagnostics.UnknownSKUTransactions > 0 {
		fmt.Printf("\n%d transactions reference unknown SKUs\n", result.Diagnostics.UnknownSKUTransactions)
	}
	return nil
}

func formatMonthsOfSupply(months float64) string {
	if months >= domain.MonthsOfSupplySentinel {
		return ">12"
	}
	return fmt.Sprintf("%.1f", months)
}

