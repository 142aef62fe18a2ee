// Package metadata extracts the proposal number and date from the preamble
// rows printed above a quote's items table.
package metadata

import (
	"regexp"
	"strings"
	"time"

	"github.com/ginjaninja78/quote-converter/internal/textnorm"
	"github.com/ginjaninja78/quote-converter/internal/types"
)

// Metadata holds what was found in the preamble. Missing fields stay zero.
type Metadata struct {
	ProposalNumber string
	ProposalDate   time.Time
}

// HasDate reports whether a proposal date was found.
func (m Metadata) HasDate() bool {
	return !m.ProposalDate.IsZero()
}

var (
	proposalKeywords = []string{"proposta", "orçamento", "orcamento"}
	proposalPattern  = regexp.MustCompile(`(?:proposta|orçamento|orcamento)\D*(\d+)`)

	dateKeyword = "data"

	// Day-first layouts, most specific first.
	dateLayouts = []string{
		"02/01/2006 15:04:05",
		"02/01/2006 15:04",
		"2/1/2006",
		"02/01/06",
		"2/1/06",
		"02-01-2006",
		"2-1-2006",
		"02.01.2006",
		"2.1.2006",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
)

// Extract scans every cell of the rows above headerRow, left to right and top
// to bottom. The first proposal number and the first date found win; the scan
// stops early once both are known.
func Extract(preview types.Grid, headerRow int) Metadata {
	var md Metadata
	if headerRow > len(preview) {
		headerRow = len(preview)
	}

	for r := 0; r < headerRow; r++ {
		row := preview[r]
		for c, cell := range row {
			if cell.IsEmpty() {
				continue
			}
			text := textnorm.Normalize(cell.String())

			if md.ProposalNumber == "" && textnorm.ContainsAny(text, proposalKeywords...) {
				md.ProposalNumber = proposalNumber(text, preview.At(r, c+1))
			}
			if !md.HasDate() && strings.Contains(text, dateKeyword) {
				md.ProposalDate = proposalDate(cell, row[c+1:])
			}
			if md.ProposalNumber != "" && md.HasDate() {
				return md
			}
		}
	}
	return md
}

// proposalNumber reads the digits following the keyword, or the right-hand
// cell when it holds nothing but digits.
func proposalNumber(text string, right types.Cell) string {
	if m := proposalPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if s := strings.TrimSpace(right.String()); types.IsDigits(s) {
		return s
	}
	return ""
}

// proposalDate looks for a date in the labelled cell itself ("Data: 15/03/2024"),
// then in the cells to its right.
func proposalDate(label types.Cell, rest []types.Cell) time.Time {
	if label.Kind == types.Text {
		if _, after, ok := strings.Cut(label.Text, ":"); ok {
			if t, ok := ParseDate(after); ok {
				return t
			}
		}
	}
	for _, cell := range rest {
		switch cell.Kind {
		case types.Date:
			return cell.Time
		case types.Text:
			if t, ok := ParseDate(cell.Text); ok {
				return t
			}
		}
	}
	return time.Time{}
}

// ParseDate parses a day-first date string. Trailing text after the date
// ("15/03/2024 (validade 10 dias)") is ignored.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	candidates := []string{s}
	if fields := strings.Fields(s); len(fields) > 1 {
		candidates = append(candidates, fields[0])
	}
	for _, candidate := range candidates {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, candidate); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
