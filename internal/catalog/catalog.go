// Package catalog resolves quoted items against the product catalog.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ginjaninja78/quote-converter/internal/config"
	"github.com/ginjaninja78/quote-converter/internal/textnorm"
	"github.com/ginjaninja78/quote-converter/internal/types"
)

// ErrMissingColumn is returned when the catalog lacks its SKU column.
var ErrMissingColumn = errors.New("catalog column missing")

// Entry is one catalog row.
type Entry struct {
	SKU           string
	SKUNormalized string
	Model         string
	ID            types.Cell
	Description   types.Cell
}

// Match is a successful resolution.
type Match struct {
	ID          types.Cell
	Description types.Cell

	// By is "sku" or "model".
	By string
}

// Unmapped records an item that matched neither by SKU nor by model name.
type Unmapped struct {
	SKU     string
	Product string
}

// String formats the miss for logs.
func (u Unmapped) String() string {
	switch {
	case u.SKU != "" && u.Product != "":
		return fmt.Sprintf("sku %q / product %q", u.SKU, u.Product)
	case u.SKU != "":
		return fmt.Sprintf("sku %q", u.SKU)
	default:
		return fmt.Sprintf("product %q", u.Product)
	}
}

// Catalog is an immutable, indexed product catalog.
type Catalog struct {
	source  string
	entries []Entry
	bySKU   map[string]int
	byModel map[string]int
}

// Load indexes a catalog table. Only the SKU column is required; missing model,
// ID or description columns leave those fields empty.
func Load(table *types.Table, cols config.CatalogColumns, source string) (*Catalog, error) {
	if !table.HasColumn(cols.SKU) {
		return nil, fmt.Errorf("%s: %w: %q (have %v)", source, ErrMissingColumn, cols.SKU, table.Columns)
	}

	c := &Catalog{
		source:  source,
		entries: make([]Entry, 0, len(table.Rows)),
		bySKU:   make(map[string]int, len(table.Rows)),
		byModel: make(map[string]int, len(table.Rows)),
	}
	for _, row := range table.Rows {
		e := Entry{
			SKU:         row.Get(cols.SKU).String(),
			Model:       row.Get(cols.Model).String(),
			ID:          row.Get(cols.ID),
			Description: row.Get(cols.Description),
		}
		e.SKUNormalized = SKUKey(e.SKU)

		i := len(c.entries)
		c.entries = append(c.entries, e)

		// First occurrence wins on duplicates.
		if e.SKUNormalized != "" {
			if _, dup := c.bySKU[e.SKUNormalized]; !dup {
				c.bySKU[e.SKUNormalized] = i
			}
		}
		if model := textnorm.Normalize(e.Model); model != "" {
			if _, dup := c.byModel[model]; !dup {
				c.byModel[model] = i
			}
		}
	}
	return c, nil
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Source describes where the catalog was loaded from.
func (c *Catalog) Source() string {
	return c.source
}

// Resolve looks the item up by SKU, then by model name. ok is false when both miss.
func (c *Catalog) Resolve(sku, product string) (Match, bool) {
	if key := SKUKey(sku); key != "" {
		if i, ok := c.bySKU[key]; ok {
			return c.match(i, "sku"), true
		}
	}
	if key := textnorm.Normalize(product); key != "" {
		if i, ok := c.byModel[key]; ok {
			return c.match(i, "model"), true
		}
	}
	return Match{}, false
}

// SKUKey normalizes a SKU for lookup. Codes are typed with stray inner spaces
// ("ABC -123"), so all whitespace is dropped after normalization.
func SKUKey(sku string) string {
	return strings.ReplaceAll(textnorm.Normalize(sku), " ", "")
}

func (c *Catalog) match(i int, by string) Match {
	e := c.entries[i]
	return Match{ID: e.ID, Description: e.Description, By: by}
}
