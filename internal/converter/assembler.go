package converter

import (
	"github.com/ginjaninja78/quote-converter/internal/catalog"
	"github.com/ginjaninja78/quote-converter/internal/config"
	"github.com/ginjaninja78/quote-converter/internal/customer"
	"github.com/ginjaninja78/quote-converter/internal/metadata"
	"github.com/ginjaninja78/quote-converter/internal/types"
)

// order holds the values shared by every row of one conversion.
type order struct {
	metadata metadata.Metadata
	customer customer.Customer
}

// assembler builds output rows whose keys are exactly the template columns.
type assembler struct {
	columns  []string
	declared map[string]bool
	fields   config.FieldColumns
	status   string
}

func newAssembler(template []string, out config.OutputSettings) *assembler {
	declared := make(map[string]bool, len(template))
	for _, col := range template {
		declared[col] = true
	}
	return &assembler{
		columns:  append([]string(nil), template...),
		declared: declared,
		fields:   out.Fields,
		status:   out.Status,
	}
}

// set stores value under column when the template declares it. Fields the
// template does not declare are dropped.
func (a *assembler) set(row types.Row, column string, value types.Cell) {
	if a.declared[column] && !value.IsEmpty() {
		row[column] = value
	}
}

// assemble resolves each item against the catalog and builds the output table.
// Items missing from the catalog are kept with empty product fields and
// reported as unmapped.
func (a *assembler) assemble(o order, items []lineItem, cat *catalog.Catalog) (*types.Table, []catalog.Unmapped) {
	table := &types.Table{Columns: a.columns, Rows: make([]types.Row, 0, len(items))}
	var unmapped []catalog.Unmapped

	shared := make(types.Row, len(a.columns))
	a.set(shared, a.fields.ProposalNumber, types.TextCell(o.metadata.ProposalNumber))
	if o.metadata.HasDate() {
		a.set(shared, a.fields.ProposalDate, types.DateCell(o.metadata.ProposalDate))
	}
	a.set(shared, a.fields.CustomerID, o.customer.ID)
	a.set(shared, a.fields.CustomerName, types.TextCell(o.customer.Name))

	for _, li := range items {
		row := make(types.Row, len(a.columns))
		for k, v := range shared {
			row[k] = v
		}

		match, ok := cat.Resolve(li.SKU, li.Product)
		if ok {
			a.set(row, a.fields.ProductID, match.ID)
			a.set(row, a.fields.ProductDescription, match.Description)
		} else {
			unmapped = append(unmapped, catalog.Unmapped{SKU: li.SKU, Product: li.Product})
		}

		a.set(row, a.fields.Quantity, li.Quantity)
		a.set(row, a.fields.UnitValue, li.UnitValue)

		// Rows that only carry an unknown SKU have no product to order.
		if li.Product != "" || ok {
			a.set(row, a.fields.Status, types.TextCell(a.status))
		}

		table.Rows = append(table.Rows, row)
	}

	return table, unmapped
}
