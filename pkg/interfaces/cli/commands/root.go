// Package commands holds the cockpit command tree.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vsinha/cockpit/pkg/infrastructure/config"
)

// BuildInfo is stamped into the binary at build time
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// rootOptions are the persistent flags shared by every subcommand
type rootOptions struct {
	configPath string
	source     string
	scenario   string
	verbose    bool
}

// NewRootCommand builds the cockpit command tree
func NewRootCommand(build BuildInfo) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "cockpit",
		Short: "Supply-chain cockpit: BOM backward scheduling",
		Long: "Cockpit expands a product's bill of materials, joins material master,\n" +
			"purchase and MRP data, and backward-schedules every part from the\n" +
			"production start into a gantt tree with status and shortage flags.",
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (default ./configs/config.yaml or ./config.yaml)")
	flags.StringVar(&opts.source, "source", "", "data source: ontology, csv or sql (overrides source.kind)")
	flags.StringVar(&opts.scenario, "scenario", "", "CSV scenario directory (implies --source csv)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(newVersionCmd(build))
	cmd.AddCommand(newServeCmd(opts, build))
	cmd.AddCommand(newScheduleCmd(opts))
	cmd.AddCommand(newValidateCmd(opts))
	cmd.AddCommand(newTreeCmd(opts))
	cmd.AddCommand(newImportCmd(opts))
	cmd.AddCommand(newGenerateCmd())
	return cmd
}

func newVersionCmd(build BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cockpit %s (commit: %s, built: %s)\n", build.Version, build.Commit, build.BuildTime)
		},
	}
}

// loadConfig reads the config file and applies the persistent flags on top
func (o *rootOptions) loadConfig() (*config.Config, error) {
	return config.LoadWithOverrides(o.configPath, func(cfg *config.Config) {
		if o.scenario != "" {
			cfg.Source.Scenario = o.scenario
			if o.source == "" {
				cfg.Source.Kind = "csv"
			}
		}
		if o.source != "" {
			cfg.Source.Kind = o.source
		}
		if o.verbose {
			cfg.Log.Level = "debug"
		}
	})
}

// Execute runs the command and maps failure to a process exit code
func Execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}
