// Package columns maps the free-form column names of a quote table onto the
// canonical vocabulary used by the rest of the pipeline.
package columns

import (
	"github.com/ginjaninja78/quote-converter/internal/textnorm"
	"github.com/ginjaninja78/quote-converter/internal/types"
)

// Canonical column names.
const (
	Product   = "product"
	Quantity  = "quantity"
	UnitValue = "unit_value"
	Value     = "value"
	SKU       = "sku"
)

var (
	productTokens  = []string{"produto", "product"}
	quantityTokens = []string{"quantidade", "qtde", "qtd", "quant", "qty", "quantity"}
	valueTokens    = []string{"valor", "value", "preço", "preco", "price"}
	unitTokens     = []string{"unit"}
	skuTokens      = []string{"sku", "código", "codigo", "cod", "code", "ref"}

	fallbackTokens = []string{"item", "descri"}
)

// rule binds a column to a canonical name when match accepts its normalized name.
type rule struct {
	canonical string
	match     func(name string) bool
}

// rules is evaluated in order for every column; the first hit wins.
var rules = []rule{
	{Product, func(n string) bool { return textnorm.ContainsAny(n, productTokens...) }},
	{Quantity, func(n string) bool { return textnorm.ContainsAny(n, quantityTokens...) }},
	{UnitValue, func(n string) bool {
		return textnorm.ContainsAny(n, valueTokens...) && textnorm.ContainsAny(n, unitTokens...)
	}},
	{Value, func(n string) bool { return textnorm.ContainsAny(n, valueTokens...) }},
	{SKU, func(n string) bool { return textnorm.ContainsAny(n, skuTokens...) }},
}

// Mapping records how source columns were bound.
type Mapping struct {
	// Bound maps each canonical name to the source column it replaced.
	Bound map[string]string

	// Fallback is the source column bound to Product by the fallback search,
	// or "" when the rule chain found a product or SKU column itself.
	Fallback string

	// Degraded is set when fewer than two of product, quantity and
	// value/unit_value were found by the rule chain.
	Degraded bool
}

// Has reports whether a canonical column is bound.
func (m Mapping) Has(canonical string) bool {
	_, ok := m.Bound[canonical]
	return ok
}

// Classify returns the canonical name for a column name, or "" when no rule matches.
func Classify(name string) string {
	n := textnorm.Normalize(name)
	if n == "" {
		return ""
	}
	for _, r := range rules {
		if r.match(n) {
			return r.canonical
		}
	}
	return ""
}

// MapColumns renames the table's columns in place to canonical names.
//
// Columns are classified left to right. The first column to claim a canonical
// name keeps it; later claimants and unmatched columns keep their names.
// When neither a product nor a SKU column is found, the first column whose
// name mentions an item or description becomes the product column, failing
// that the first column holding text, failing that the first column.
func MapColumns(table *types.Table) Mapping {
	m := Mapping{Bound: make(map[string]string)}
	renames := make(map[string]string)

	for _, col := range table.Columns {
		canonical := Classify(col)
		if canonical == "" || m.Has(canonical) {
			continue
		}
		m.Bound[canonical] = col
		if col != canonical {
			renames[col] = canonical
		}
	}

	essential := 0
	for _, c := range []string{Product, Quantity} {
		if m.Has(c) {
			essential++
		}
	}
	if m.Has(Value) || m.Has(UnitValue) {
		essential++
	}
	m.Degraded = essential < 2

	if !m.Has(Product) && !m.Has(SKU) {
		if col := fallbackProductColumn(table, m); col != "" {
			m.Bound[Product] = col
			m.Fallback = col
			renames[col] = Product
		}
	}

	dropShadowed(table, renames)
	table.Rename(renames)
	return m
}

// fallbackProductColumn picks a product column among the unbound columns.
func fallbackProductColumn(table *types.Table, m Mapping) string {
	bound := make(map[string]bool, len(m.Bound))
	for _, col := range m.Bound {
		bound[col] = true
	}

	var free []string
	for _, col := range table.Columns {
		if !bound[col] {
			free = append(free, col)
		}
	}
	if len(free) == 0 {
		return ""
	}

	for _, col := range free {
		if textnorm.ContainsAny(textnorm.Normalize(col), fallbackTokens...) {
			return col
		}
	}
	for _, col := range free {
		if hasText(table, col) {
			return col
		}
	}
	return free[0]
}

func hasText(table *types.Table, col string) bool {
	for _, row := range table.Rows {
		if c := row.Get(col); !c.IsEmpty() && c.Kind != types.Number {
			return true
		}
	}
	return false
}

// dropShadowed renames unmatched source columns that already carry a canonical
// name which another column is about to take, so no two columns share a key.
func dropShadowed(table *types.Table, renames map[string]string) {
	targets := make(map[string]bool, len(renames))
	for _, to := range renames {
		targets[to] = true
	}
	for _, col := range table.Columns {
		if _, renamed := renames[col]; !renamed && targets[col] {
			renames[col] = col + " (original)"
		}
	}
}
