package converter

import (
	"testing"

	"github.com/ginjaninja78/quote-converter/internal/types"
)

func TestIsTotalRow(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"TOTAL GERAL":   true,
		"Sub-Total":     true,
		"Valor total":   true,
		"Soma":          true,
		"Cadeira X":     false,
		"":              false,
		"Mesa redonda ": false,
	}
	for text, want := range cases {
		if got := IsTotalRow(text); got != want {
			t.Fatalf("%q: want=%v got=%v", text, want, got)
		}
	}
}

func TestFilterLineItems(t *testing.T) {
	t.Parallel()

	items := []lineItem{
		{Product: "Cadeira X"},
		{SKU: "SKU-1"},
		{},
		{Product: "TOTAL GERAL", Quantity: types.NumberCell(10)},
		{SKU: "subtotal"},
	}

	kept, counts := filterLineItems(items)
	if len(kept) != 2 || kept[0].Product != "Cadeira X" || kept[1].SKU != "SKU-1" {
		t.Fatalf("unexpected kept items %+v", kept)
	}
	if counts.totals != 2 || counts.empty != 1 {
		t.Fatalf("unexpected counts %+v", counts)
	}
}

func TestLineItems_UnitValueFallsBackToValue(t *testing.T) {
	t.Parallel()

	table := &types.Table{
		Columns: []string{"product", "value"},
		Rows:    []types.Row{{"product": types.TextCell(" Mesa "), "value": types.NumberCell(42)}},
	}
	items := lineItems(table)
	if items[0].Product != "Mesa" || items[0].UnitValue.Number != 42 {
		t.Fatalf("unexpected item %+v", items[0])
	}
}
