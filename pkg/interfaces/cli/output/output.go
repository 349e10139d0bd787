package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vsinha/cockpit/pkg/application/dto"
	"github.com/vsinha/cockpit/pkg/domain/entities"
	csvsource "github.com/vsinha/cockpit/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/cockpit/pkg/interfaces/export"
)

// Supported formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	Encoding  csvsource.Encoding
}

// Generate writes the result in the configured format. With an output
// directory the result goes to a file there, otherwise to w.
func Generate(w io.Writer, result *dto.GanttResult, config Config) error {
	switch config.Format {
	case FormatText, "":
		return generateTextOutput(w, result, config)
	case FormatJSON:
		return generateJSONOutput(w, result, config)
	case FormatCSV:
		return generateCSVOutput(w, result, config)
	case FormatXLSX:
		return generateXLSXOutput(w, result, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// generateTextOutput prints a summary followed by the indented schedule tree
func generateTextOutput(w io.Writer, result *dto.GanttResult, config Config) error {
	if config.OutputDir != "" {
		return writeFile(w, config, fileName(result, "txt"), func(f io.Writer) error {
			return WriteText(f, result)
		})
	}
	return WriteText(w, result)
}

// WriteText renders the human-readable report
func WriteText(w io.Writer, result *dto.GanttResult) error {
	stats := result.Statistics
	var b strings.Builder

	fmt.Fprintf(&b, "Gantt Schedule: %s (%s .. %s)\n", result.ProductCode, result.ProductionStart, result.ProductionEnd)
	fmt.Fprintf(&b, "==============================\n\n")
	fmt.Fprintf(&b, "Run ID: %s\n", result.RunID)
	fmt.Fprintf(&b, "Materials: %d (max depth %d)\n", stats.TotalMaterials, stats.MaxDepth)
	fmt.Fprintf(&b, "Status: %d on time, %d at risk, %d ordered\n",
		stats.ByStatus[entities.OnTime.String()], stats.RiskCount(), stats.ByStatus[entities.Ordered.String()])
	fmt.Fprintf(&b, "Shortages: %d\n", stats.ShortageCount)
	fmt.Fprintf(&b, "External materials: %d (PR %d, PO %d, uncovered %d)\n",
		stats.ExternalCount, stats.ExternalWithPR, stats.ExternalWithPO, stats.ExternalUncovered)
	fmt.Fprintf(&b, "Time range: %s .. %s\n", result.TimeRange.Start, result.TimeRange.End)
	fmt.Fprintf(&b, "%s\n", result.CriticalChain.Summary())
	if result.Truncated {
		fmt.Fprintf(&b, "Showing %d nodes; the tree is incomplete\n", result.NodeCount)
	}
	for _, warning := range result.Warnings {
		fmt.Fprintf(&b, "Warning: %s\n", warning)
	}
	b.WriteString("\n")

	writeTree(&b, result.Root, 0)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeTree(b *strings.Builder, bar *entities.GanttBar, depth int) {
	if bar == nil {
		return
	}

	fmt.Fprintf(b, "%s%s %s [%s] %s..%s lt=%s %s",
		strings.Repeat("  ", depth),
		bar.MaterialCode, bar.MaterialName, bar.MaterialType,
		bar.StartDate, bar.EndDate, bar.LeadTime, bar.Status)
	if bar.MaterialType.IsExternal() {
		fmt.Fprintf(b, " %s/%s", bar.PRStatusLabel(), bar.POStatusLabel())
	}
	if bar.PODeliverDate != nil {
		fmt.Fprintf(b, " deliver=%s", *bar.PODeliverDate)
	}
	if bar.HasShortage {
		fmt.Fprintf(b, " SHORT %s", bar.ShortageQuantity)
	}
	b.WriteString("\n")

	for _, child := range bar.Children {
		writeTree(b, child, depth+1)
	}
}

// generateJSONOutput creates JSON output
func generateJSONOutput(w io.Writer, result *dto.GanttResult, config Config) error {
	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	jsonData = append(jsonData, '\n')

	if config.OutputDir == "" {
		_, err = w.Write(jsonData)
		return err
	}
	return writeFile(w, config, fileName(result, "json"), func(f io.Writer) error {
		_, err := f.Write(jsonData)
		return err
	})
}

// generateCSVOutput writes the shortage rows as CSV
func generateCSVOutput(w io.Writer, result *dto.GanttResult, config Config) error {
	rows := dto.NewShortageRows(result.Bars)
	if config.OutputDir == "" {
		return export.WriteShortageCSV(w, rows, config.Encoding)
	}
	return writeFile(w, config, fileName(result, "shortages.csv"), func(f io.Writer) error {
		return export.WriteShortageCSV(f, rows, config.Encoding)
	})
}

// generateXLSXOutput writes the shortage rows as a workbook file
func generateXLSXOutput(w io.Writer, result *dto.GanttResult, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for xlsx format")
	}
	rows := dto.NewShortageRows(result.Bars)
	return writeFile(w, config, fileName(result, "shortages.xlsx"), func(f io.Writer) error {
		return export.WriteShortageXLSX(f, rows)
	})
}

func fileName(result *dto.GanttResult, suffix string) string {
	return fmt.Sprintf("gantt_%s.%s", result.ProductCode, suffix)
}

// writeFile creates the output directory and file, then reports the path when verbose
func writeFile(w io.Writer, config Config, name string, write func(io.Writer) error) error {
	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(config.OutputDir, name)
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	if err := write(file); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", filename, err)
	}

	if config.Verbose {
		fmt.Fprintf(w, "Results saved to: %s\n", filename)
	}
	return nil
}
