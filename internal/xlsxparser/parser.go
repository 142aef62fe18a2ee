// =============================================================================
// Quote Converter - XLSX Reader
// =============================================================================
//
// This module reads XLSX workbooks into the generic types.Grid model. It is
// used for three kinds of input:
//   - Quote spreadsheets (sheet 0, read without assuming a header)
//   - Catalog / customer workbooks (sheet picked by name, e.g. "CATÁLOGO")
//   - The output template (only the sheet-0 header row is used)
//
// CELL TYPING:
//   excelize reports formatted strings by default. The reader asks for raw
//   values instead and types each cell itself:
//   - shared / inline strings          -> Text
//   - booleans                         -> Bool
//   - ISO 8601 date cells (t="d")      -> Date
//   - numbers with a date number format -> Date
//   - other numbers                    -> Number
//
// =============================================================================

package xlsxparser

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ginjaninja78/quote-converter/internal/textnorm"
	"github.com/ginjaninja78/quote-converter/internal/types"
	"github.com/xuri/excelize/v2"
)

var (
	// ErrNoSheets is returned for workbooks without any worksheet.
	ErrNoSheets = errors.New("workbook has no sheets")

	// ErrEmptyHeader is returned when a template's first row has no headers.
	ErrEmptyHeader = errors.New("header row is empty")
)

// =============================================================================
// WORKBOOK
// =============================================================================

// Workbook is an open XLSX file.
type Workbook struct {
	file *excelize.File

	// name describes where the workbook came from, for error messages.
	name string

	// date1904 is true for workbooks using the 1904 date system.
	date1904 bool

	// dateStyles caches whether a style index carries a date number format.
	dateStyles map[int]bool
}

// Open opens the workbook at path.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	return newWorkbook(f, path), nil
}

// OpenBytes opens a workbook held in memory. name is only used in messages.
func OpenBytes(data []byte, name string) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", name, err)
	}
	return newWorkbook(f, name), nil
}

func newWorkbook(f *excelize.File, name string) *Workbook {
	wb := &Workbook{file: f, name: name, dateStyles: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		wb.date1904 = *props.Date1904
	}
	return wb
}

// Close releases the underlying file.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// Name returns the description the workbook was opened with.
func (w *Workbook) Name() string {
	return w.name
}

// SheetNames returns the worksheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// SelectSheet returns the first sheet whose normalized name equals one of the
// normalized candidates. Without a match it falls back to the first sheet.
//
// PARAMETERS:
//   - candidates: Preferred sheet names, in priority order (e.g. "CATÁLOGO").
//
// RETURNS:
//   - The chosen sheet name.
//   - ErrNoSheets if the workbook is empty.
func (w *Workbook) SelectSheet(candidates ...string) (string, error) {
	sheets := w.SheetNames()
	if len(sheets) == 0 {
		return "", fmt.Errorf("%s: %w", w.name, ErrNoSheets)
	}
	for _, want := range candidates {
		key := textnorm.Normalize(want)
		if key == "" {
			continue
		}
		for _, s := range sheets {
			if textnorm.Normalize(s) == key {
				return s, nil
			}
		}
	}
	return sheets[0], nil
}

// =============================================================================
// GRID READING
// =============================================================================

// ReadGrid reads up to maxRows rows of sheet. maxRows <= 0 reads the whole sheet.
//
// Blank rows inside the used range are kept as empty rows, so row indexes in
// the returned grid match the sheet's row numbers minus one.
func (w *Workbook) ReadGrid(sheet string, maxRows int) (types.Grid, error) {
	rows, err := w.file.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheet, w.name, err)
	}
	defer rows.Close()

	var grid types.Grid
	for r := 0; rows.Next(); r++ {
		if maxRows > 0 && r >= maxRows {
			break
		}
		raw, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d of %s: %w", r+1, w.name, err)
		}
		row := make([]types.Cell, len(raw))
		for c, value := range raw {
			row[c] = w.typedCell(sheet, c, r, value)
		}
		grid = append(grid, row)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows of %s: %w", w.name, err)
	}

	return trimTrailingEmptyRows(grid), nil
}

// typedCell converts one raw cell value into a types.Cell.
func (w *Workbook) typedCell(sheet string, col, row int, value string) types.Cell {
	if strings.TrimSpace(value) == "" {
		return types.Cell{}
	}

	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return types.TextCell(value)
	}

	cellType, err := w.file.GetCellType(sheet, axis)
	if err != nil {
		return types.TextCell(value)
	}

	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeError:
		return types.TextCell(value)

	case excelize.CellTypeBool:
		return types.BoolCell(value == "1" || strings.EqualFold(value, "true"))

	case excelize.CellTypeDate:
		if t, ok := parseISODate(value); ok {
			return types.DateCell(t)
		}
		return types.TextCell(value)
	}

	// Numbers, formulas and untyped cells.
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return types.TextCell(value)
	}
	if w.isDateStyled(sheet, axis) {
		if t, err := excelize.ExcelDateToTime(f, w.date1904); err == nil {
			return types.DateCell(t)
		}
	}
	return types.NumberCell(f)
}

// isDateStyled reports whether the cell's number format renders a date.
func (w *Workbook) isDateStyled(sheet, axis string) bool {
	idx, err := w.file.GetCellStyle(sheet, axis)
	if err != nil || idx == 0 {
		return false
	}
	if v, ok := w.dateStyles[idx]; ok {
		return v
	}
	isDate := false
	if style, err := w.file.GetStyle(idx); err == nil && style != nil {
		isDate = IsDateFormat(style.NumFmt, style.CustomNumFmt)
	}
	w.dateStyles[idx] = isDate
	return isDate
}

// IsDateFormat reports whether a number format renders as a date.
//
// Built-in ids 14-22 and 45-47 are the date/time formats defined by ECMA-376.
// Custom formats count as dates when, outside quoted literals and bracketed
// sections, they contain a day, month or year token.
func IsDateFormat(numFmt int, custom *string) bool {
	if custom != nil && *custom != "" {
		return customFormatIsDate(*custom)
	}
	return (numFmt >= 14 && numFmt <= 22) || (numFmt >= 45 && numFmt <= 47)
}

func customFormatIsDate(format string) bool {
	inQuote, inBracket := false, false
	for _, r := range strings.ToLower(format) {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		case r == 'd' || r == 'm' || r == 'y':
			return true
		}
	}
	return false
}

func parseISODate(value string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04:05Z", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// trimTrailingEmptyRows drops blank rows at the end of the grid.
func trimTrailingEmptyRows(grid types.Grid) types.Grid {
	end := len(grid)
	for end > 0 && isRowEmpty(grid[end-1]) {
		end--
	}
	return grid[:end]
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []types.Cell) bool {
	for _, cell := range row {
		if !cell.IsEmpty() {
			return false
		}
	}
	return true
}

// =============================================================================
// TEMPLATE HEADERS
// =============================================================================

// ReadHeaders returns the header names of the first sheet of the workbook at
// path. Only the first row is read; data rows are ignored. Blank header cells
// are skipped.
//
// PARAMETERS:
//   - templatePath: The path to the XLSX output template.
//
// RETURNS:
//   - The header names in column order.
//   - An error if the file cannot be read, has no sheets, or has no headers.
func ReadHeaders(templatePath string) ([]string, error) {
	wb, err := Open(templatePath)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	sheet, err := wb.SelectSheet()
	if err != nil {
		return nil, err
	}

	grid, err := wb.ReadGrid(sheet, 1)
	if err != nil {
		return nil, err
	}

	var headers []string
	if len(grid) > 0 {
		for _, cell := range grid[0] {
			if name := strings.TrimSpace(cell.String()); name != "" {
				headers = append(headers, name)
			}
		}
	}
	if len(headers) == 0 {
		return nil, fmt.Errorf("%s: %w", templatePath, ErrEmptyHeader)
	}

	return headers, nil
}
