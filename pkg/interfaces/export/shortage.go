// Package export renders shortage rows as spreadsheet files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"github.com/vsinha/cockpit/pkg/application/dto"
	csvsource "github.com/vsinha/cockpit/pkg/infrastructure/repositories/csv"
)

const (
	// ShortageSheet is the worksheet name of the XLSX export
	ShortageSheet = "Shortages"
	utf8BOM       = "\ufeff"
)

// WriteShortageCSV writes the shortage export. UTF-8 output starts with a
// byte order mark so spreadsheet tools detect the encoding; GBK output has none.
func WriteShortageCSV(w io.Writer, rows []dto.ShortageRow, encoding csvsource.Encoding) error {
	if encoding == csvsource.GBK {
		tw := transform.NewWriter(w, simplifiedchinese.GBK.NewEncoder())
		if err := writeShortageRecords(tw, rows); err != nil {
			return err
		}
		return tw.Close()
	}

	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	return writeShortageRecords(w, rows)
}

func writeShortageRecords(w io.Writer, rows []dto.ShortageRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(dto.ShortageColumns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row.Record()); err != nil {
			return fmt.Errorf("failed to write CSV row %s: %w", row.MaterialCode, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteShortageXLSX writes the shortage export as a single-sheet workbook with a bold header
func WriteShortageXLSX(w io.Writer, rows []dto.ShortageRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ShortageSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	boldStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, h := range dto.ShortageColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(ShortageSheet, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(ShortageSheet, cell, cell, boldStyle); err != nil {
			return err
		}
	}

	for r, row := range rows {
		values := []interface{}{
			string(row.MaterialCode),
			row.MaterialName,
			row.MaterialType.String(),
			row.BOMLevel,
			row.ShortageQuantity.InexactFloat64(),
			row.PRStatus,
			row.POStatus,
			row.LeadTime.InexactFloat64(),
			row.EndDate.String(),
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(ShortageSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %s: %w", row.MaterialCode, err)
		}
	}

	colWidths := []float64{16, 24, 12, 10, 14, 14, 14, 10, 12}
	for i, width := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(ShortageSheet, col, col, width); err != nil {
			return err
		}
	}

	_, err = f.WriteTo(w)
	return err
}

