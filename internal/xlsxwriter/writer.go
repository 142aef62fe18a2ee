// =============================================================================
// Quote Converter - XLSX Writer Module
// =============================================================================
//
// This module serializes the converted order table into the spreadsheet the
// downstream platform imports.
//
// SHEET LAYOUT:
//   Row 1   : the template's column names, in template order
//   Row 2.. : one row per order line
//
//   Cells keep their native type: numbers stay numbers, dates are written as
//   date serials with a dd/mm/yyyy format, empty cells are left blank.
//
// =============================================================================

package xlsxwriter

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ginjaninja78/quote-converter/internal/types"
	"github.com/xuri/excelize/v2"
)

// Options controls the generated workbook.
type Options struct {
	// SheetName is the worksheet name. Default: "Sheet1"
	SheetName string

	// DateFormat is the number format of date cells. Default: "dd/mm/yyyy"
	DateFormat string
}

// DefaultOptions returns the default writer options.
func DefaultOptions() Options {
	return Options{SheetName: "Sheet1", DateFormat: "dd/mm/yyyy"}
}

// Write renders table as an XLSX workbook.
func Write(table *types.Table, opts Options) ([]byte, error) {
	if opts.SheetName == "" {
		opts.SheetName = DefaultOptions().SheetName
	}
	if opts.DateFormat == "" {
		opts.DateFormat = DefaultOptions().DateFormat
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := opts.SheetName
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet %q: %w", sheet, err)
	}

	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &opts.DateFormat})
	if err != nil {
		return nil, fmt.Errorf("failed to create date style: %w", err)
	}

	header := make([]any, len(table.Columns))
	for i, col := range table.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for r, row := range table.Rows {
		for c, col := range table.Columns {
			cell := row.Get(col)
			if cell.IsEmpty() {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, axis, cell.Value()); err != nil {
				return nil, fmt.Errorf("failed to write %s: %w", axis, err)
			}
			if cell.Kind == types.Date {
				if err := f.SetCellStyle(sheet, axis, axis, dateStyle); err != nil {
					return nil, fmt.Errorf("failed to style %s: %w", axis, err)
				}
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}

// WriteFile renders table and writes it to path, creating parent directories.
func WriteFile(path string, table *types.Table, opts Options) error {
	data, err := Write(table, opts)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
