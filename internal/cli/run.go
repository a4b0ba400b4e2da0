package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ecomlab/retail-etl/internal/clean"
	"github.com/ecomlab/retail-etl/internal/db"
	"github.com/ecomlab/retail-etl/internal/load"
	"github.com/ecomlab/retail-etl/internal/logging"
	"github.com/ecomlab/retail-etl/internal/pipeline"
)

var (
	runInput      string
	runNoTruncate bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the batch pipeline once",
	Long: `Run the full pipeline: read the raw extract, clean and filter
records, normalize into the four entity sets, load them in dependency
order, and validate the persisted result.

Target tables are truncated before loading so reruns are idempotent;
pass --no-truncate to append to an existing load instead.

Example:
  retail-etl run --input extract.csv --connection "postgres://..."`,
	RunE: runRunCmd,
}

func init() {
	runCmd.Flags().StringVar(&runInput, "input", "",
		"path to the raw transaction extract (CSV)")
	runCmd.Flags().BoolVar(&runNoTruncate, "no-truncate", false,
		"do not truncate target tables before loading")
}

func runRunCmd(cmd *cobra.Command, args []string) error {
	if runInput != "" {
		cfg.Input = runInput
	}
	if runNoTruncate {
		cfg.Load.Truncate = false
	}

	if err := cfg.ValidateRun(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logging.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
	}()

	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	summary, err := pipeline.Run(ctx, pool, pipeline.Config{
		Input: cfg.Input,
		Bounds: clean.Bounds{
			MaxQuantity:    cfg.Clean.MaxQuantity,
			MaxUnitPrice:   cfg.Clean.MaxUnitPrice,
			MaxLineRevenue: cfg.Clean.MaxLineRevenue,
		},
		Chunks: load.ChunkSizes{
			Customers:  cfg.Load.CustomerChunkSize,
			Products:   cfg.Load.ProductChunkSize,
			Orders:     cfg.Load.OrderChunkSize,
			OrderLines: cfg.Load.OrderLineChunkSize,
		},
		Truncate: cfg.Load.Truncate,
	})
	if err != nil {
		return err
	}

	logging.Info().
		Str("run_id", summary.RunID.String()).
		Int("extracted", summary.Extracted).
		Int("kept", summary.CleanStats.Kept).
		Int("dropped", summary.CleanStats.Dropped()).
		Int64("customers", summary.Loaded.Customers).
		Int64("products", summary.Loaded.Products).
		Int64("orders", summary.Loaded.Orders).
		Int64("order_lines", summary.Loaded.OrderLines).
		Int("warnings", len(summary.Warnings)).
		Dur("duration", summary.Duration).
		Msg("Run summary")

	return nil
}
