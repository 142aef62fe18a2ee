// =============================================================================
// Quote Converter - Output Validation
// =============================================================================
//
// This module checks the assembled order rows before they are handed to the
// downstream platform. Nothing here stops a conversion: quotes are loosely
// typed and the platform accepts partial rows, so every finding is reported
// as a warning for the operator to review.
//
// CHECKS (per output row):
//   - Quantity is present, numeric and positive
//   - Unit value is numeric and not negative
//   - Product id is present (the item was found in the catalog)
//
// Columns the template does not declare are not checked.
//
// =============================================================================

package validation

import (
	"fmt"
	"os"
	"strings"

	"github.com/ginjaninja78/quote-converter/internal/config"
	"github.com/ginjaninja78/quote-converter/internal/types"
)

// =============================================================================
// ISSUE TYPES
// =============================================================================

// Severity levels.
const (
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Issue is one finding on one output row.
type Issue struct {
	// Severity is "warning" or "error".
	Severity string

	// Row is the 1-based output row number.
	Row int

	// Column is the template column that was checked.
	Column string

	// Value is the offending value as text.
	Value string

	// Message is a human-readable explanation.
	Message string
}

// Error implements the error interface.
func (i *Issue) Error() string {
	return fmt.Sprintf("[%s] row %d, column '%s': %s (value: '%s')",
		strings.ToUpper(i.Severity), i.Row, i.Column, i.Message, i.Value)
}

// Result contains the results of validation.
type Result struct {
	// Issues lists every finding in row order.
	Issues []*Issue

	// RowsValidated is the number of rows checked.
	RowsValidated int
}

// WarningCount returns the number of warnings.
func (r *Result) WarningCount() int {
	n := 0
	for _, i := range r.Issues {
		if i.Severity == SeverityWarning {
			n++
		}
	}
	return n
}

// =============================================================================
// VALIDATOR
// =============================================================================

// check validates one cell of a row. It returns "" when the value is acceptable.
type check struct {
	column string
	rule   func(c types.Cell) string
}

// Validate checks every row of the output table.
func Validate(table *types.Table, fields config.FieldColumns) *Result {
	var checks []check
	add := func(column string, rule func(types.Cell) string) {
		if table.HasColumn(column) {
			checks = append(checks, check{column: column, rule: rule})
		}
	}
	add(fields.Quantity, validateQuantity)
	add(fields.UnitValue, validateUnitValue)
	add(fields.ProductID, validateProductID)

	result := &Result{RowsValidated: len(table.Rows)}
	for r, row := range table.Rows {
		for _, ch := range checks {
			cell := row.Get(ch.column)
			if msg := ch.rule(cell); msg != "" {
				result.Issues = append(result.Issues, &Issue{
					Severity: SeverityWarning,
					Row:      r + 1,
					Column:   ch.column,
					Value:    cell.String(),
					Message:  msg,
				})
			}
		}
	}
	return result
}

func validateQuantity(c types.Cell) string {
	switch {
	case c.IsEmpty():
		return "quantity is missing"
	case c.Kind != types.Number:
		return "quantity is not a number"
	case c.Number <= 0:
		return "quantity must be positive"
	}
	return ""
}

func validateUnitValue(c types.Cell) string {
	switch {
	case c.IsEmpty():
		return ""
	case c.Kind != types.Number:
		return "unit value is not a number"
	case c.Number < 0:
		return "unit value is negative"
	}
	return ""
}

func validateProductID(c types.Cell) string {
	if c.IsEmpty() {
		return "product not found in catalog"
	}
	return ""
}

// =============================================================================
// REPORTING
// =============================================================================

// FormatIssues formats issues for display.
func FormatIssues(issues []*Issue) string {
	if len(issues) == 0 {
		return "No validation issues.\n"
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "Validation completed with %d issue(s):\n\n", len(issues))
	for i, issue := range issues {
		fmt.Fprintf(&builder, "%d. %s\n", i+1, issue.Error())
	}
	return builder.String()
}

// WriteReport writes the formatted issues to filePath.
func WriteReport(issues []*Issue, filePath string) error {
	if err := os.WriteFile(filePath, []byte(FormatIssues(issues)), 0o644); err != nil {
		return fmt.Errorf("failed to write validation report: %w", err)
	}
	return nil
}
