// Package customer looks up the customer a converted order is attached to.
package customer

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ginjaninja78/quote-converter/internal/config"
	"github.com/ginjaninja78/quote-converter/internal/types"
)

// ErrNotFound is returned when no customer matches the selector.
var ErrNotFound = errors.New("customer not found")

// Customer is one directory record.
type Customer struct {
	// ID keeps the source cell so numeric ids are written back as numbers.
	ID   types.Cell
	Name string
}

// Directory is a read-only customer list.
type Directory struct {
	source    string
	hasID     bool
	numericID bool
	customers []Customer
}

// NewDirectory builds a directory from a customer table.
func NewDirectory(table *types.Table, cols config.CustomerSettings, source string) *Directory {
	d := &Directory{
		source:    source,
		hasID:     table.HasColumn(cols.IDColumn),
		numericID: table.IsNumericColumn(cols.IDColumn),
		customers: make([]Customer, 0, len(table.Rows)),
	}
	for _, row := range table.Rows {
		d.customers = append(d.customers, Customer{
			ID:   row.Get(cols.IDColumn),
			Name: strings.TrimSpace(row.Get(cols.NameColumn).String()),
		})
	}
	return d
}

// Lookup returns the first customer whose ID equals selector.
//
// When the ID column is numeric the selector is parsed as a number and
// truncated to an integer before comparing ("17", "17.0" and "17.9" all
// select customer 17). Otherwise the comparison is on the trimmed text.
// A blank selector never matches, and neither does a customer without an id.
func (d *Directory) Lookup(selector string) (Customer, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return Customer{}, fmt.Errorf("%w: empty selector in %s", ErrNotFound, d.source)
	}
	if !d.hasID {
		return Customer{}, fmt.Errorf("%w: %q in %s (no ID column)", ErrNotFound, selector, d.source)
	}

	match := func(c types.Cell) bool { return !c.IsEmpty() && strings.TrimSpace(c.String()) == selector }
	if d.numericID {
		f, ok := types.ParseNumber(selector)
		if !ok {
			return Customer{}, fmt.Errorf("%w: %q in %s (ids are numeric)", ErrNotFound, selector, d.source)
		}
		want := math.Trunc(f)
		match = func(c types.Cell) bool { return c.Kind == types.Number && c.Number == want }
	}

	for _, c := range d.customers {
		if match(c.ID) {
			return c, nil
		}
	}
	return Customer{}, fmt.Errorf("%w: %q in %s", ErrNotFound, selector, d.source)
}

// List returns the customers that have a name, in source order.
func (d *Directory) List() []Customer {
	out := make([]Customer, 0, len(d.customers))
	for _, c := range d.customers {
		if c.Name != "" {
			out = append(out, c)
		}
	}
	return out
}
