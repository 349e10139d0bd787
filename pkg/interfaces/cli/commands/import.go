package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vsinha/cockpit/pkg/infrastructure/logging"
	csvsource "github.com/vsinha/cockpit/pkg/infrastructure/repositories/csv"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import [scenario-dir]",
		Short: "Load a CSV scenario into the configured database",
		Long: "Import reads a CSV scenario and writes it into the database used by\n" +
			"--source sql. BOM and MRP rows of the imported products are replaced,\n" +
			"as are the stock lines of every material in inventory.csv;\n" +
			"materials and purchase documents are upserted.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runImport(cmd, opts, dir)
		},
	}
}

func runImport(cmd *cobra.Command, opts *rootOptions, dir string) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if dir == "" {
		dir = cfg.Source.Scenario
	}
	if dir == "" {
		return errors.New("scenario directory required (argument or --scenario)")
	}

	encoding, err := csvsource.ParseEncoding(cfg.Source.CSVEncoding)
	if err != nil {
		return err
	}
	snapshot, err := csvsource.NewLoaderWithEncoding(encoding).LoadScenario(dir)
	if err != nil {
		return fmt.Errorf("failed to load scenario %s: %w", dir, err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a := &app{cfg: cfg, logger: logger}
	defer a.Close()

	store, err := a.openStore()
	if err != nil {
		return err
	}

	stats, err := store.Import(cmd.Context(), snapshot)
	if err != nil {
		return err
	}
	logger.Info("Scenario imported",
		zap.String("scenario", dir),
		zap.String("driver", cfg.Database.Driver),
		zap.Int("bom_edges", stats.BOMEdges),
	)

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %s: %d BOM edges, %d materials, %d purchase requests, %d purchase orders, %d MRP rows, %d stock lines\n",
		dir, stats.BOMEdges, stats.Materials, stats.PurchaseRequests, stats.PurchaseOrders, stats.MRPDemands, stats.Inventory)
	return nil
}
