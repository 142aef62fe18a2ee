package converter

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ginjaninja78/quote-converter/internal/source"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/multierr"
)

func TestConvertBatch(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, [][]any{
		{"Produto", "Quantidade", "Valor"},
		{"Cadeira Office", 2, 300},
	})

	dir := t.TempDir()
	totalsOnly := filepath.Join(dir, "so_totais.xlsx")
	writeWorkbook(t, totalsOnly, [][]any{
		{"Produto", "Quantidade", "Valor"},
		{"Subtotal", nil, 10},
	})

	quotes := []source.Source{
		fx.input.Quote,
		{Path: totalsOnly},
		{Path: filepath.Join(dir, "absent.xlsx")},
	}

	outcomes, err := fx.converter.ConvertBatch(context.Background(), fx.input, quotes, 2)
	if len(outcomes) != 3 {
		t.Fatalf("want 3 outcomes got %d", len(outcomes))
	}
	if got := len(multierr.Errors(err)); got != 2 {
		t.Fatalf("want 2 combined errors got %d: %v", got, err)
	}

	if outcomes[0].Err != nil || outcomes[0].Result.Empty() {
		t.Fatalf("first quote should convert: %+v", outcomes[0])
	}
	row := outcomes[0].Result.Table.Rows[0]
	want := map[string]string{"ID produto": "101", "Descrição": "Cadeira Office Preta", "Nome do contato": "Loja Norte"}
	got := map[string]string{}
	for col := range want {
		got[col] = row.Get(col).String()
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("row mismatch (-want +got):\n%s", diff)
	}

	if !errors.Is(outcomes[1].Err, ErrNoData) {
		t.Fatalf("want ErrNoData got %v", outcomes[1].Err)
	}
	if !errors.Is(outcomes[2].Err, ErrSource) {
		t.Fatalf("want ErrSource got %v", outcomes[2].Err)
	}
	if outcomes[2].Quote.Path != quotes[2].Path {
		t.Fatalf("outcomes must keep input order")
	}
}

func TestConvertBatch_ReferenceFailureStopsEarly(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, [][]any{{"Produto", "Quantidade", "Valor"}})
	fx.input.Catalog = source.Source{}

	outcomes, err := fx.converter.ConvertBatch(context.Background(), fx.input, []source.Source{fx.input.Quote}, 1)
	if !errors.Is(err, source.ErrNoLocation) || outcomes != nil {
		t.Fatalf("want ErrNoLocation and no outcomes got %v %v", outcomes, err)
	}
}
