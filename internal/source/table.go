package source

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ginjaninja78/quote-converter/internal/types"
)

// Preview returns at most the first n rows of the sheet.
func (s *Sheet) Preview(n int) types.Grid {
	return s.Grid.Head(n)
}

// ReadTable returns the sheet as a Table whose column names come from grid
// row headerRow. Rows below the header become data rows; fully blank rows
// are dropped.
//
// Blank header cells are named "Unnamed: <i>" and repeated names get ".1",
// ".2" suffixes, so every column keeps a distinct key.
func (s *Sheet) ReadTable(headerRow int) (*types.Table, error) {
	if headerRow < 0 || headerRow >= len(s.Grid) {
		return nil, fmt.Errorf("%s: %w: %d of %d rows", s.Source, ErrHeaderOutOfRange, headerRow, len(s.Grid))
	}

	width := 0
	for _, row := range s.Grid[headerRow:] {
		if len(row) > width {
			width = len(row)
		}
	}

	table := &types.Table{Columns: headerNames(s.Grid[headerRow], width)}
	for _, raw := range s.Grid[headerRow+1:] {
		row := make(types.Row, len(table.Columns))
		blank := true
		for i, name := range table.Columns {
			if i >= len(raw) {
				break
			}
			if cell := raw[i]; !cell.IsEmpty() {
				blank = false
				row[name] = cell
			}
		}
		if !blank {
			table.Rows = append(table.Rows, row)
		}
	}

	return table, nil
}

func headerNames(header []types.Cell, width int) []string {
	names := make([]string, width)
	seen := make(map[string]int, width)
	for i := 0; i < width; i++ {
		name := ""
		if i < len(header) {
			name = strings.TrimSpace(header[i].String())
		}
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		base := name
		for seen[name] > 0 {
			name = base + "." + strconv.Itoa(seen[base])
			seen[base]++
		}
		seen[name]++
		names[i] = name
	}
	return names
}
