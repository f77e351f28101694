package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"retention-dashboard/internal/models"
	"retention-dashboard/internal/rowsource"
	"retention-dashboard/internal/services"
)

var (
	flagCSV      string
	flagSheetURL string
	flagDSN      string
	flagTable    string
	flagFrom     string
	flagTo       string
	flagProduct  string
)

var rootCmd = &cobra.Command{
	Use:   "retention",
	Short: "Compute customer retention metrics from order line items",
	Long: `Reads order line-item rows from a CSV file, a published sheet URL or a
MySQL table, and prints a per-shop retention summary. With no source flag,
rows are read as CSV from stdin.`,
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&flagCSV, "csv", "", "path to a CSV export of line items")
	rootCmd.Flags().StringVar(&flagSheetURL, "sheet-url", "", "URL of a published CSV sheet")
	rootCmd.Flags().StringVar(&flagDSN, "dsn", "", "MySQL DSN (mysql:// and mariadb:// URLs accepted)")
	rootCmd.Flags().StringVar(&flagTable, "table", "line_items", "MySQL table to read when --dsn is set")
	rootCmd.Flags().StringVar(&flagFrom, "from", "", "inclusive start date (YYYY-MM-DD)")
	rootCmd.Flags().StringVar(&flagTo, "to", "", "inclusive end date (YYYY-MM-DD)")
	rootCmd.Flags().StringVar(&flagProduct, "product", "", "restrict to customers whose first order contains this product")
}

func fetchRows(ctx context.Context) ([]models.RawRow, error) {
	switch {
	case flagCSV != "":
		return rowsource.NewCSVFile(flagCSV).Fetch(ctx)
	case flagSheetURL != "":
		return rowsource.NewSheet(flagSheetURL).Fetch(ctx)
	case flagDSN != "":
		src, err := rowsource.OpenMySQL(flagDSN, flagTable)
		if err != nil {
			return nil, err
		}
		defer src.Close()
		return src.Fetch(ctx)
	default:
		return rowsource.ReadRows(ctx, os.Stdin)
	}
}

func inRange(row models.RawRow) bool {
	date := row[models.ColDate]
	if flagFrom != "" && date < flagFrom {
		return false
	}
	if flagTo != "" && date > flagTo {
		return false
	}
	return true
}

func run(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	rows, err := fetchRows(ctx)
	if err != nil {
		return fmt.Errorf("fetch rows: %w", err)
	}

	if flagFrom != "" || flagTo != "" {
		filtered := make([]models.RawRow, 0, len(rows))
		for _, row := range rows {
			if inRange(row) {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	items := services.NormalizeRows(rows)
	if flagProduct != "" {
		items = services.FilterByFirstOrderProduct(items, flagProduct)
	}

	shops := services.Shops(items)
	fmt.Printf("📊 %d line items across %d shops\n", len(items), len(shops)-1)

	bar := progressbar.Default(int64(len(shops)), "computing")
	type shopResult struct {
		shop    string
		metrics models.MetricsBundle
	}
	results := make([]shopResult, 0, len(shops))
	for _, shop := range shops {
		scoped := services.FilterByShop(items, shop)
		results = append(results, shopResult{shop, services.ComputeMetrics(scoped)})
		bar.Add(1)
	}
	fmt.Println()

	for _, res := range results {
		m := res.metrics
		fmt.Printf("%-20s customers=%-6d repeat=%5.1f%% orders=%-6d revenue=€%-8d medianDaysTo2nd=%-4d avgLTV=€%d\n",
			res.shop, m.TotalCustomers, m.RepeatRate, m.TotalOrders, m.TotalRevenue, m.Timing.Median, m.AvgLtv)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
