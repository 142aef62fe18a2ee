// =============================================================================
// Quote Converter - Main Entry Point
// =============================================================================
//
// This is the main entry point for the quoteconv CLI. It hands control to
// the Cobra commands in the cmd package.
//
// USAGE:
//   quoteconv convert <quote.xlsx>... --customer <id>  - Convert quotes to order files
//   quoteconv customers                                - List the customer directory
//   quoteconv version                                  - Display the application version
//
// ARCHITECTURE:
//   - cmd/        : CLI command definitions (Cobra)
//   - internal/   : Conversion pipeline (sources, header detection, column
//                   mapping, catalog, customers, assembly, validation)
//   - pkg/        : Shared file utilities
//   - templates/  : The Olist order import template
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/quote-converter/cmd"
)

func main() {
	cmd.Execute()
}
