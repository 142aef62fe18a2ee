// Package header finds the header row of a quote spreadsheet whose items table
// does not start on the first row.
package header

import (
	"errors"
	"fmt"

	"github.com/ginjaninja78/quote-converter/internal/textnorm"
	"github.com/ginjaninja78/quote-converter/internal/types"
)

// ErrHeaderNotFound is returned when no preview row satisfies the required terms.
var ErrHeaderNotFound = errors.New("header row not found")

// requirement is one required term with its synonyms, already normalized.
type requirement struct {
	term         string
	alternatives []string
}

// pass is one matching policy. Passes are tried in order; the first row that
// satisfies every requirement under a pass wins.
type pass struct {
	name  string
	match func(cell, alternative string) bool
}

var passes = []pass{
	{name: "substring", match: func(cell, alt string) bool { return textnorm.ContainsAny(cell, alt) }},
	{name: "exact", match: func(cell, alt string) bool { return cell == alt }},
}

// FindHeaderRow returns the index of the first preview row that contains every
// required term. Terms may list synonyms separated by "|".
//
// Substring matching is tried over the whole preview first, so "Valor Unitário"
// satisfies "valor". Only if no row qualifies is exact cell matching tried.
func FindHeaderRow(preview types.Grid, terms []string) (int, error) {
	reqs := make([]requirement, 0, len(terms))
	for _, term := range terms {
		alts := textnorm.Alternatives(term)
		if len(alts) == 0 {
			continue
		}
		reqs = append(reqs, requirement{term: term, alternatives: alts})
	}
	if len(reqs) == 0 {
		return -1, fmt.Errorf("%w: no required terms", ErrHeaderNotFound)
	}

	normalized := make([][]string, len(preview))
	for r, row := range preview {
		cells := make([]string, 0, len(row))
		for _, c := range row {
			if s := textnorm.Normalize(c.String()); s != "" {
				cells = append(cells, s)
			}
		}
		normalized[r] = cells
	}

	for _, p := range passes {
		for r, cells := range normalized {
			if satisfied(cells, reqs, p) == len(reqs) {
				return r, nil
			}
		}
	}

	return -1, fmt.Errorf("%w in first %d rows (terms %v)", ErrHeaderNotFound, len(preview), terms)
}

// satisfied counts the requirements met by at least one cell.
func satisfied(cells []string, reqs []requirement, p pass) int {
	hit := 0
	for _, req := range reqs {
	search:
		for _, cell := range cells {
			for _, alt := range req.alternatives {
				if p.match(cell, alt) {
					hit++
					break search
				}
			}
		}
	}
	return hit
}
