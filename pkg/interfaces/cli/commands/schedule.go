package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vsinha/cockpit/pkg/application/services/gantt"
	"github.com/vsinha/cockpit/pkg/domain/entities"
	csvsource "github.com/vsinha/cockpit/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/cockpit/pkg/interfaces/cli/output"
)

type scheduleOptions struct {
	product   string
	name      string
	start     string
	end       string
	format    string
	outputDir string
	encoding  string
}

func newScheduleCmd(opts *rootOptions) *cobra.Command {
	so := &scheduleOptions{}

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Backward-schedule a product's BOM into a gantt tree",
		Example: "  cockpit schedule --scenario ./data --product P1 --start 2025-06-01 --end 2025-06-10\n" +
			"  cockpit schedule --source sql --product P1 --start 2025-06-01 --end 2025-06-10 --format xlsx --output ./out",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(cmd, opts, so)
		},
	}

	f := cmd.Flags()
	f.StringVar(&so.product, "product", "", "product material code (required)")
	f.StringVar(&so.name, "name", "", "product display name")
	f.StringVar(&so.start, "start", "", "production start date YYYY-MM-DD (required)")
	f.StringVar(&so.end, "end", "", "production end date YYYY-MM-DD (required)")
	f.StringVarP(&so.format, "format", "f", output.FormatText, "output format: text, json, csv or xlsx")
	f.StringVarP(&so.outputDir, "output", "o", "", "write the result into this directory")
	f.StringVar(&so.encoding, "encoding", string(csvsource.UTF8), "shortage CSV encoding: utf8 or gbk")
	_ = cmd.MarkFlagRequired("product")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func runSchedule(cmd *cobra.Command, opts *rootOptions, so *scheduleOptions) error {
	start, err := entities.ParseDate(so.start)
	if err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}
	end, err := entities.ParseDate(so.end)
	if err != nil {
		return fmt.Errorf("invalid --end: %w", err)
	}
	encoding, err := csvsource.ParseEncoding(so.encoding)
	if err != nil {
		return err
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.service.BuildGantt(cmd.Context(), gantt.GanttRequest{
		ProductCode:     entities.MaterialCode(so.product),
		ProductName:     so.name,
		ProductionStart: start,
		ProductionEnd:   end,
	})
	if err != nil {
		return err
	}

	return output.Generate(cmd.OutOrStdout(), result, output.Config{
		Format:    so.format,
		OutputDir: so.outputDir,
		Verbose:   opts.verbose,
		Encoding:  encoding,
	})
}
