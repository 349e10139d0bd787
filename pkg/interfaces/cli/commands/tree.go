package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vsinha/cockpit/pkg/application/dto"
	"github.com/vsinha/cockpit/pkg/application/services/gantt"
	"github.com/vsinha/cockpit/pkg/domain/entities"
)

type treeOptions struct {
	products      []string
	noSubstitutes bool
	noInventory   bool
	asJSON        bool
}

func newTreeCmd(opts *rootOptions) *cobra.Command {
	to := &treeOptions{}

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show a product's BOM with stock levels and substitutes",
		Example: "  cockpit tree --scenario ./data --product P1\n" +
			"  cockpit tree --source sql --product P1,P2 --json",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(cmd, opts, to)
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&to.products, "product", nil, "product material codes, comma separated or repeated (required)")
	f.BoolVar(&to.noSubstitutes, "no-substitutes", false, "omit substitute parts")
	f.BoolVar(&to.noInventory, "no-inventory", false, "skip the stock lookup")
	f.BoolVar(&to.asJSON, "json", false, "print the trees as JSON")
	_ = cmd.MarkFlagRequired("product")
	return cmd
}

func runTree(cmd *cobra.Command, opts *rootOptions, to *treeOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	codes := make([]entities.MaterialCode, len(to.products))
	for i, p := range to.products {
		codes[i] = entities.MaterialCode(strings.TrimSpace(p))
	}
	result, err := a.service.BuildInventoryTrees(cmd.Context(), gantt.TreeRequest{
		ProductCodes:       codes,
		IncludeSubstitutes: !to.noSubstitutes,
		IncludeInventory:   !to.noInventory,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if to.asJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal trees: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}
	writeTrees(out, result)
	return nil
}

func writeTrees(w io.Writer, result *dto.InventoryTreeResult) {
	for _, tree := range result.Trees {
		fmt.Fprintf(w, "BOM %s %s\n", tree.ProductCode, tree.ProductName)
		writeInventoryNode(w, tree.Root, "")
		s := tree.Statistics
		fmt.Fprintf(w, "%d materials, inventory value %s, %d stagnant, %d warning, %d insufficient\n",
			s.TotalMaterials, s.TotalInventoryValue.StringFixed(2), s.StagnantCount, s.WarningCount, s.InsufficientCount)
		if tree.Truncated {
			fmt.Fprintln(w, "  warning: tree truncated at the node limit")
		}
	}
	for _, code := range result.Missing {
		fmt.Fprintf(w, "Product %s not found\n", code)
	}
}

func writeInventoryNode(w io.Writer, n *entities.InventoryNode, indent string) {
	fmt.Fprintf(w, "%s%s %s x%s%s", indent, n.Code, n.Name, n.Quantity.String(), n.Unit)
	if n.StockStatus != entities.StockUnknown {
		fmt.Fprintf(w, "  stock %s/%s  %dd  [%s]", n.AvailableStock.String(), n.CurrentStock.String(), n.StorageDays, n.StockStatus)
	}
	fmt.Fprintln(w)
	for _, sub := range n.Substitutes {
		mark := ""
		if sub.Recommended {
			mark = " *"
		}
		fmt.Fprintf(w, "%s  ~ %s %s p%d x%s%s\n", indent, sub.Code, sub.Name, sub.Priority, sub.Ratio.String(), mark)
	}
	for _, child := range n.Children {
		writeInventoryNode(w, child, indent+"  ")
	}
}
