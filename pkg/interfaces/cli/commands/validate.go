package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vsinha/cockpit/pkg/domain/entities"
	"github.com/vsinha/cockpit/pkg/domain/services"
)

// errInvalidBOM makes the command exit non-zero after printing the report
var errInvalidBOM = errors.New("BOM has structural problems")

func newValidateCmd(opts *rootOptions) *cobra.Command {
	var product string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a product's BOM for cycles, duplicates and level mismatches",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts, entities.MaterialCode(product), asJSON)
		},
	}

	cmd.Flags().StringVar(&product, "product", "", "product material code (required)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	_ = cmd.MarkFlagRequired("product")
	return cmd
}

func runValidate(cmd *cobra.Command, opts *rootOptions, product entities.MaterialCode, asJSON bool) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.service.ValidateBOM(cmd.Context(), product)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		fmt.Fprintln(out, string(data))
	} else {
		writeValidation(out, result)
	}

	if !result.IsClean() {
		return errInvalidBOM
	}
	return nil
}

func writeValidation(w io.Writer, r *services.ValidationResult) {
	fmt.Fprintf(w, "BOM %s: %d edges (%d alternates)\n", r.ProductCode, r.EdgeCount, r.AlternateCount)
	if len(r.LevelMismatches) > 0 {
		fmt.Fprintf(w, "  warning: bom_level differs from depth for %v\n", r.LevelMismatches)
	}
	if r.IsClean() {
		fmt.Fprintln(w, "OK")
		return
	}
	for _, msg := range r.Errors {
		fmt.Fprintf(w, "  - %s\n", msg)
	}
}
