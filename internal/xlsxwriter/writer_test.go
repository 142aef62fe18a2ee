package xlsxwriter

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ginjaninja78/quote-converter/internal/types"
	"github.com/ginjaninja78/quote-converter/internal/xlsxparser"
)

func sampleTable() *types.Table {
	return &types.Table{
		Columns: []string{"Número da proposta", "Data", "Quantidade", "ID produto", "Situação"},
		Rows: []types.Row{{
			"Número da proposta": types.TextCell("4521"),
			"Data":               types.DateCell(time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)),
			"Quantidade":         types.NumberCell(10),
			"Situação":           types.TextCell("Aguardando"),
		}},
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	t.Parallel()

	data, err := Write(sampleTable(), DefaultOptions())
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	wb, err := xlsxparser.OpenBytes(data, "out.xlsx")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer wb.Close()

	if names := wb.SheetNames(); len(names) != 1 || names[0] != "Sheet1" {
		t.Fatalf("unexpected sheets %v", names)
	}
	grid, err := wb.ReadGrid("Sheet1", 0)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(grid) != 2 {
		t.Fatalf("want 2 rows got %d", len(grid))
	}
	if got := grid.At(0, 0).String(); got != "Número da proposta" {
		t.Fatalf("unexpected header %q", got)
	}
	if c := grid.At(1, 1); c.Kind != types.Date || c.String() != "2024-03-15" {
		t.Fatalf("date should round-trip, got %+v", c)
	}
	if c := grid.At(1, 2); c.Kind != types.Number || c.Number != 10 {
		t.Fatalf("quantity should stay numeric, got %+v", c)
	}
	if !grid.At(1, 3).IsEmpty() {
		t.Fatalf("empty cell should stay blank")
	}
	if grid.At(1, 0).Kind != types.Text {
		t.Fatalf("proposal number should be text")
	}
}

func TestWriteFile_CreatesDirectories(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "pedido.xlsx")
	if err := WriteFile(path, sampleTable(), Options{SheetName: "Pedidos"}); err != nil {
		t.Fatalf("write file: %v", err)
	}
	headers, err := xlsxparser.ReadHeaders(path)
	if err != nil {
		t.Fatalf("read headers: %v", err)
	}
	if len(headers) != 5 || headers[4] != "Situação" {
		t.Fatalf("unexpected headers %v", headers)
	}
}
