package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/domain"
)

func forecastCommand() *cli.Command {
	flags := append(filterFlags(), &cli.StringFlag{
		Name:  "row",
		Usage: "Only print the schedule for this row id (SKU, category, or group)",
	})

	return &cli.Command{
		Name:   "forecast",
		Usage:  "Print the 12-month restock schedule",
		Flags:  flags,
		Action: runForecast,
	}
}

func runForecast(c *cli.Context) error {
	filters, err := cliFilters(c)
	if err != nil {
		return err
	}

	svc, closeDB, err := buildAnalysisService(c)
	if err != nil {
		return err
	}
	defer closeDB()

	rows, err := svc.Forecast(c.Context, filters)
	if err != nil {
		return err
	}

	only := c.String("row")
	printed := false
	for _, row := range rows {
		if only != "" && row.ID != only {
			continue
		}
		printed = true
		printSchedule(row)
	}
	if only != "" && !printed {
		return fmt.Errorf("row %s not found", only)
	}
	return nil
}

func printSchedule(row domain.AnalysisRow) {
	fmt.Printf("\n%s (%s)", row.Name, row.ID)
	if !row.HasHistory {
		fmt.Print("  [no sales history]")
	}
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MONTH\tDEMAND\tOPEN\tORDER\tCOST\tCLOSE\tHIST AVG")
	for _, cell := range row.CalendarSchedule {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.2f\t%d\t%.1f\n",
			cell.MonthLabel, cell.ForecastedDemand, cell.OpeningStock,
			cell.RestockQty, cell.RestockCost, cell.ClosingStock, cell.HistoricalAverage)
	}
	w.Flush()
}
