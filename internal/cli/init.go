package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ecomlab/retail-etl/internal/db"
	"github.com/ecomlab/retail-etl/internal/load"
	"github.com/ecomlab/retail-etl/internal/logging"
)

var initDropExisting bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the target schema and summary view",
	Long: `Create the four-table relational schema (customers, products,
orders, order_lines) plus the customer_summary reporting view in the
target PostgreSQL database. Value-segment thresholds from configuration
are rendered into the view definition.

Example:
  retail-etl init --connection "postgres://..." `,
	RunE: runInitCmd,
}

func init() {
	initCmd.Flags().BoolVar(&initDropExisting, "drop-existing", false,
		"drop existing schema before creating it")
}

func runInitCmd(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateInit(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if initDropExisting {
		logging.Info().Msg("Dropping existing schema")
		if err := load.DropSchema(ctx, pool); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
		if err := db.DropRuns(ctx, pool); err != nil {
			logging.Debug().Err(err).Msg("No runs table to drop")
		}
	}

	logging.Info().Msg("Creating schema")
	thresholds := load.SegmentThresholds{
		Platinum: cfg.Report.PlatinumRevenue,
		Gold:     cfg.Report.GoldRevenue,
		Silver:   cfg.Report.SilverRevenue,
	}
	if err := load.CreateSchema(ctx, pool, thresholds); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	logging.Info().Msg("Schema ready")
	return nil
}
