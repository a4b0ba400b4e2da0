package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"

	"github.com/ecomlab/retail-etl/internal/db"
	"github.com/ecomlab/retail-etl/internal/logging"
	"github.com/ecomlab/retail-etl/internal/report"
)

var (
	reportOut string
	reportTop int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize the loaded data for dashboard consumers",
	Long: `Read the customer_summary view and the customers table to print
value-segment counts, the top customers by revenue, and each country's
share of the customer base. Optionally export the full customer summary
as CSV for spreadsheet consumers.

Example:
  retail-etl report --connection "postgres://..." --out summary.csv`,
	RunE: runReportCmd,
}

func init() {
	reportCmd.Flags().StringVar(&reportOut, "out", "",
		"write the customer summary to this CSV file")
	reportCmd.Flags().IntVar(&reportTop, "top", 10,
		"number of top customers to print")
}

func runReportCmd(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateReport(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if run, err := db.LastRun(ctx, pool); err == nil {
		logging.Info().
			Str("run_id", run.RunID.String()).
			Str("source_file", run.SourceFile).
			Time("finished_at", run.FinishedAt).
			Msg("Reporting on most recent load")
	} else if err != pgx.ErrNoRows {
		logging.Debug().Err(err).Msg("Could not read run metadata")
	}

	summaries, err := report.CustomerSummaries(ctx, pool)
	if err != nil {
		return err
	}
	shares, err := report.CountryShares(ctx, pool)
	if err != nil {
		return err
	}

	cmd.Printf("Customers: %d\n\n", len(summaries))

	cmd.Println("Value segments:")
	counts := report.SegmentCounts(summaries)
	for _, segment := range []string{"Platinum", "Gold", "Silver", "Bronze"} {
		cmd.Printf("  %-9s %d\n", segment, counts[segment])
	}

	cmd.Println()
	cmd.Printf("Top %d customers by revenue:\n", reportTop)
	for i, s := range summaries {
		if i >= reportTop {
			break
		}
		cmd.Printf("  %-8d %-20s %9.2f  %3d orders  %s\n",
			s.CustomerID, s.Country, s.TotalRevenue, s.TotalOrders, s.Segment)
	}

	cmd.Println()
	cmd.Println("Customer base by country:")
	for _, c := range shares {
		cmd.Printf("  %-20s %5d  %5.2f%%\n", c.Country, c.Customers, c.Share)
	}

	if reportOut != "" {
		f, err := os.Create(reportOut)
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		defer f.Close()
		if err := report.WriteSummaryCSV(f, summaries); err != nil {
			return fmt.Errorf("export summary: %w", err)
		}
		logging.Info().
			Str("path", reportOut).
			Int("rows", len(summaries)).
			Msg("Summary exported")
	}

	return nil
}
