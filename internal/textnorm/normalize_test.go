package textnorm

import "testing"

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"Produto", "produto"},
		{"  VALOR   UNIT(R$) ", "valor unit(r$)"},
		{"ABC -123 ", "abc -123"},
		{"Valor\tUnitário\n", "valor unitário"},
		{"Orçamento", "orçamento"},
		{"Orc\u0327amento", "orçamento"},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q) want=%q got=%q", tc.in, tc.want, got)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{"", " a  b ", "TOTAL GERAL", "Valor Unitário", "x y", "Orçamento  Nº 12"}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Fatalf("not idempotent for %q: %q vs %q", in, once, twice)
		}
	}
}

func TestAlternatives(t *testing.T) {
	t.Parallel()

	got := Alternatives("Quantidade| QTD ||qtde")
	want := []string{"quantidade", "qtd", "qtde"}
	if len(got) != len(want) {
		t.Fatalf("want=%v got=%v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("want=%v got=%v", want, got)
		}
	}
}

func TestContainsAny(t *testing.T) {
	t.Parallel()

	if !ContainsAny("valor unitário", "unit") {
		t.Fatalf("expected match")
	}
	if ContainsAny("valor total", "unit", "") {
		t.Fatalf("unexpected match")
	}
}
