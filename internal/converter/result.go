package converter

import (
	"time"

	"github.com/ginjaninja78/quote-converter/internal/catalog"
	"github.com/ginjaninja78/quote-converter/internal/columns"
	"github.com/ginjaninja78/quote-converter/internal/types"
	"github.com/ginjaninja78/quote-converter/internal/validation"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result is the outcome of one conversion.
type Result struct {
	// Table holds the output rows. Its columns are exactly the template's,
	// in template order. It carries no run-specific values, so converting
	// the same inputs twice gives identical tables.
	Table *types.Table

	// Report describes how the table was built.
	Report Report
}

// Empty reports whether no line item survived filtering. Callers treat an
// empty result as a failed conversion.
func (r *Result) Empty() bool {
	return r == nil || r.Table == nil || len(r.Table.Rows) == 0
}

// Report contains diagnostics about a conversion.
type Report struct {
	// RunID correlates the log lines of one conversion.
	RunID string

	// HeaderRow is the 0-based row of the quote's items header.
	HeaderRow int

	// ProposalNumber and ProposalDate are the values found in the preamble.
	ProposalNumber string
	ProposalDate   time.Time

	// CustomerName is the selected customer's name.
	CustomerName string

	// Mapping records how quote columns were bound.
	Mapping columns.Mapping

	// SkippedTotals counts total/subtotal rows dropped.
	SkippedTotals int

	// SkippedEmpty counts rows without product or SKU.
	SkippedEmpty int

	// Unmapped lists items missing from the catalog, in quote order.
	Unmapped []catalog.Unmapped

	// Warnings holds non-fatal pipeline findings.
	Warnings []string

	// Validation holds the output row checks.
	Validation *validation.Result
}
