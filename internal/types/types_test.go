package types

import (
	"testing"
	"time"
)

func TestCellString(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		cell Cell
		want string
	}{
		{"empty", Cell{}, ""},
		{"text", TextCell("Cadeira X"), "Cadeira X"},
		{"integral number", NumberCell(4521), "4521"},
		{"fractional number", NumberCell(150.5), "150.5"},
		{"date", DateCell(time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)), "2026-10-18"},
		{"datetime", DateCell(time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)), "2026-10-18 09:30:00"},
		{"bool", BoolCell(true), "TRUE"},
	}
	for _, tc := range cases {
		if got := tc.cell.String(); got != tc.want {
			t.Fatalf("%s: want=%q got=%q", tc.name, tc.want, got)
		}
	}
}

func TestTextCell_BlankIsEmpty(t *testing.T) {
	t.Parallel()

	if c := TextCell("   "); !c.IsEmpty() {
		t.Fatalf("expected empty cell, got %+v", c)
	}
}

func TestInferCell(t *testing.T) {
	t.Parallel()

	if c := InferCell("10"); c.Kind != Number || c.Number != 10 {
		t.Fatalf("unexpected cell for 10: %+v", c)
	}
	if c := InferCell(" 150.25 "); c.Kind != Number || c.Number != 150.25 {
		t.Fatalf("unexpected cell for 150.25: %+v", c)
	}
	if c := InferCell("1.234,56"); c.Kind != Text {
		t.Fatalf("localized number must stay text: %+v", c)
	}
	if c := InferCell("ABC-123"); c.Kind != Text {
		t.Fatalf("unexpected cell for sku: %+v", c)
	}
	if c := InferCell(""); !c.IsEmpty() {
		t.Fatalf("unexpected cell for blank: %+v", c)
	}
}

func TestIsDigits(t *testing.T) {
	t.Parallel()

	if !IsDigits("4521") || IsDigits("") || IsDigits("45a") || IsDigits("4 5") {
		t.Fatalf("IsDigits mismatch")
	}
}

func TestTableRenameAndNumericColumn(t *testing.T) {
	t.Parallel()

	tbl := &Table{
		Columns: []string{"Cod", "Nome"},
		Rows: []Row{
			{"Cod": NumberCell(1), "Nome": TextCell("A")},
			{"Cod": NumberCell(2)},
			{"Nome": TextCell("C")},
		},
	}
	if !tbl.IsNumericColumn("Cod") {
		t.Fatalf("Cod should be numeric")
	}
	if tbl.IsNumericColumn("Nome") {
		t.Fatalf("Nome should not be numeric")
	}

	tbl.Rename(map[string]string{"Cod": "ID"})
	if tbl.Columns[0] != "ID" || tbl.HasColumn("Cod") {
		t.Fatalf("columns not renamed: %v", tbl.Columns)
	}
	if got := tbl.Rows[1].Get("ID"); got.Number != 2 {
		t.Fatalf("row key not renamed: %+v", tbl.Rows[1])
	}
}

func TestGridAt(t *testing.T) {
	t.Parallel()

	g := Grid{{TextCell("a")}, {}, {TextCell("b"), NumberCell(2)}}
	if g.At(2, 1).Number != 2 {
		t.Fatalf("unexpected At(2,1)")
	}
	if !g.At(1, 0).IsEmpty() || !g.At(9, 9).IsEmpty() {
		t.Fatalf("out of range must be empty")
	}
	if len(g.Head(2)) != 2 || len(g.Head(10)) != 3 {
		t.Fatalf("Head mismatch")
	}
}
