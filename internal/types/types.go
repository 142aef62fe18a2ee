// =============================================================================
// Quote Converter - Shared Types
// =============================================================================
//
// This package contains the tabular data model shared by every stage of the
// conversion pipeline. Quote spreadsheets have no fixed schema, so the model is
// deliberately generic:
//   - Cell  : a tagged value (text, number, date, bool or empty)
//   - Grid  : a raw 2D block of cells read without assuming a header
//   - Table : named columns plus rows keyed by column name
//
// Types defined here are used by:
//   - xlsxparser / csvparser / source (producers)
//   - header / columns / metadata / catalog / customer (consumers)
//   - converter / validation / xlsxwriter
//
// =============================================================================

package types

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CELL
// =============================================================================

// Kind identifies which field of a Cell carries its value.
type Kind int

const (
	// Empty is the zero Kind: a missing or blank cell.
	Empty Kind = iota
	Text
	Number
	Date
	Bool
)

// String returns a short name for the kind, used in logs and validation messages.
func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Number:
		return "number"
	case Date:
		return "date"
	case Bool:
		return "bool"
	default:
		return "empty"
	}
}

// Cell is one heterogeneous spreadsheet value.
type Cell struct {
	Kind Kind

	// Text holds the value for Text cells.
	Text string

	// Number holds the value for Number cells.
	Number float64

	// Time holds the value for Date cells.
	Time time.Time

	// Flag holds the value for Bool cells.
	Flag bool
}

// TextCell builds a Text cell. Whitespace-only input yields an Empty cell.
func TextCell(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Cell{}
	}
	return Cell{Kind: Text, Text: s}
}

// NumberCell builds a Number cell.
func NumberCell(f float64) Cell {
	return Cell{Kind: Number, Number: f}
}

// DateCell builds a Date cell.
func DateCell(t time.Time) Cell {
	return Cell{Kind: Date, Time: t}
}

// BoolCell builds a Bool cell.
func BoolCell(b bool) Cell {
	return Cell{Kind: Bool, Flag: b}
}

// IsEmpty reports whether the cell carries no value.
func (c Cell) IsEmpty() bool {
	return c.Kind == Empty
}

// String renders the cell the way it would read in a spreadsheet.
//
// RENDERING RULES:
//   - Empty  : ""
//   - Number : shortest exact decimal form, so 4521.0 renders as "4521"
//   - Date   : "2006-01-02", or "2006-01-02 15:04:05" when a time of day is set
//   - Bool   : "TRUE" / "FALSE"
func (c Cell) String() string {
	switch c.Kind {
	case Text:
		return c.Text
	case Number:
		return FormatNumber(c.Number)
	case Date:
		if c.Time.Hour() == 0 && c.Time.Minute() == 0 && c.Time.Second() == 0 {
			return c.Time.Format("2006-01-02")
		}
		return c.Time.Format("2006-01-02 15:04:05")
	case Bool:
		if c.Flag {
			return "TRUE"
		}
		return "FALSE"
	default:
		return ""
	}
}

// Value returns the cell as a plain Go value (string, float64, time.Time, bool)
// or nil when the cell is empty. Writers use it to keep native spreadsheet types.
func (c Cell) Value() any {
	switch c.Kind {
	case Text:
		return c.Text
	case Number:
		return c.Number
	case Date:
		return c.Time
	case Bool:
		return c.Flag
	default:
		return nil
	}
}

// =============================================================================
// NUMBER HELPERS
// =============================================================================

// FormatNumber renders f without a trailing ".0" for integral values.
func FormatNumber(f float64) string {
	return decimal.NewFromFloat(f).String()
}

// ParseNumber parses s using strict decimal syntax ("10", "-3.5", "1e3").
// Thousands separators and currency symbols are not accepted: such strings stay text.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// InferCell turns raw text into a Number cell when it parses strictly, otherwise
// into a Text (or Empty) cell. CSV sources rely on this for column typing.
func InferCell(raw string) Cell {
	if f, ok := ParseNumber(raw); ok {
		return NumberCell(f)
	}
	return TextCell(raw)
}

// IsDigits reports whether s is a non-empty string of ASCII digits.
func IsDigits(s string) bool {
	return s != "" && strings.Trim(s, "0123456789") == ""
}

// =============================================================================
// GRID
// =============================================================================

// Grid is a raw block of rows read without assuming a header.
// Rows may have different lengths.
type Grid [][]Cell

// Head returns at most the first n rows of the grid.
func (g Grid) Head(n int) Grid {
	if n < 0 || n >= len(g) {
		return g
	}
	return g[:n]
}

// At returns the cell at (row, col), or an Empty cell when out of range.
func (g Grid) At(row, col int) Cell {
	if row < 0 || row >= len(g) || col < 0 || col >= len(g[row]) {
		return Cell{}
	}
	return g[row][col]
}

// =============================================================================
// TABLE
// =============================================================================

// Row maps column names to cell values. Missing keys read as Empty cells.
type Row map[string]Cell

// Get returns the cell for column, or an Empty cell when absent.
func (r Row) Get(column string) Cell {
	return r[column]
}

// Table is a header-aware view of tabular data.
type Table struct {
	// Columns holds the column names in source order.
	Columns []string

	// Rows holds one map per data row, keyed by the names in Columns.
	Rows []Row
}

// HasColumn reports whether the table declares the named column.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// IsNumericColumn reports whether every non-empty cell of the column is a Number.
// A column with no values at all is not numeric.
func (t *Table) IsNumericColumn(name string) bool {
	seen := false
	for _, row := range t.Rows {
		c := row.Get(name)
		if c.IsEmpty() {
			continue
		}
		if c.Kind != Number {
			return false
		}
		seen = true
	}
	return seen
}

// Rename renames columns according to renames (old -> new). Row keys follow.
func (t *Table) Rename(renames map[string]string) {
	if len(renames) == 0 {
		return
	}
	for i, c := range t.Columns {
		if n, ok := renames[c]; ok {
			t.Columns[i] = n
		}
	}
	for i, row := range t.Rows {
		out := make(Row, len(row))
		for k, v := range row {
			if n, ok := renames[k]; ok {
				k = n
			}
			out[k] = v
		}
		t.Rows[i] = out
	}
}
