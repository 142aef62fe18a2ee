// =============================================================================
// Quote Converter - Row Filter
// =============================================================================
//
// This module turns the mapped quote table into line items and drops the
// rows that are not items:
//   - total / subtotal lines printed under the items
//   - rows with neither a product nor a SKU
//
// Filters are evaluated in order and the first filter that rejects a row
// decides why it was skipped.
//
// =============================================================================

package converter

import (
	"strings"

	"github.com/ginjaninja78/quote-converter/internal/columns"
	"github.com/ginjaninja78/quote-converter/internal/textnorm"
	"github.com/ginjaninja78/quote-converter/internal/types"
)

// totalKeywords mark summary rows.
var totalKeywords = []string{"total", "subtotal", "valor total", "total geral", "soma", "sum"}

// lineItem is one quote row after column mapping.
type lineItem struct {
	Product   string
	SKU       string
	Quantity  types.Cell
	UnitValue types.Cell
}

// label is the text used to recognise summary rows: the product, or the SKU
// when the product is blank.
func (li lineItem) label() string {
	if li.Product != "" {
		return li.Product
	}
	return li.SKU
}

// lineItems reads the canonical columns of every row. The unit value comes
// from the unit_value column, else from the value column.
func lineItems(table *types.Table) []lineItem {
	valueColumn := columns.Value
	if table.HasColumn(columns.UnitValue) {
		valueColumn = columns.UnitValue
	}

	items := make([]lineItem, 0, len(table.Rows))
	for _, row := range table.Rows {
		items = append(items, lineItem{
			Product:   strings.TrimSpace(row.Get(columns.Product).String()),
			SKU:       strings.TrimSpace(row.Get(columns.SKU).String()),
			Quantity:  row.Get(columns.Quantity),
			UnitValue: row.Get(valueColumn),
		})
	}
	return items
}

// =============================================================================
// FILTERS
// =============================================================================

type skipCounts struct {
	totals int
	empty  int
}

// rowFilter rejects a line item when skip returns true.
type rowFilter struct {
	name  string
	skip  func(li lineItem) bool
	count func(s *skipCounts)
}

var rowFilters = []rowFilter{
	{
		name:  "total",
		skip:  func(li lineItem) bool { return IsTotalRow(li.label()) },
		count: func(s *skipCounts) { s.totals++ },
	},
	{
		name:  "empty",
		skip:  func(li lineItem) bool { return li.Product == "" && li.SKU == "" },
		count: func(s *skipCounts) { s.empty++ },
	},
}

// IsTotalRow reports whether text names a total or subtotal line.
func IsTotalRow(text string) bool {
	return textnorm.ContainsAny(textnorm.Normalize(text), totalKeywords...)
}

// filterLineItems keeps the items every filter accepts, in order.
func filterLineItems(items []lineItem) ([]lineItem, skipCounts) {
	var counts skipCounts
	kept := make([]lineItem, 0, len(items))

next:
	for _, li := range items {
		for _, f := range rowFilters {
			if f.skip(li) {
				f.count(&counts)
				continue next
			}
		}
		kept = append(kept, li)
	}
	return kept, counts
}
