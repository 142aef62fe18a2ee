// =============================================================================
// Quote Converter - Converter Module
// =============================================================================
//
// This module contains the core conversion logic. It turns one quote
// spreadsheet into the rows of the downstream platform's order template.
//
// CONVERSION PIPELINE:
//   1. Read the output template headers
//   2. Load and index the product catalog
//   3. Load the customer directory
//   4. Preview the quote and locate its header row
//   5. Read the items table and map its columns
//   6. Extract the proposal number and date from the preamble
//   7. Attach the selected customer
//   8. Filter rows, resolve products and assemble the output table
//   9. Validate the assembled rows
//
// CONCURRENCY:
//   A Converter holds only configuration. Every Convert call builds its own
//   tables, so one Converter can serve concurrent calls.
//
// =============================================================================

package converter

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ginjaninja78/quote-converter/internal/catalog"
	"github.com/ginjaninja78/quote-converter/internal/columns"
	"github.com/ginjaninja78/quote-converter/internal/config"
	"github.com/ginjaninja78/quote-converter/internal/customer"
	"github.com/ginjaninja78/quote-converter/internal/header"
	"github.com/ginjaninja78/quote-converter/internal/metadata"
	"github.com/ginjaninja78/quote-converter/internal/source"
	"github.com/ginjaninja78/quote-converter/internal/validation"
	"github.com/ginjaninja78/quote-converter/internal/xlsxparser"
	"github.com/google/uuid"
)

var (
	// ErrTemplate wraps failures reading the output template.
	ErrTemplate = errors.New("output template unavailable")

	// ErrSource wraps failures loading the catalog, customer or quote sources.
	ErrSource = errors.New("source unavailable")
)

// =============================================================================
// INPUT
// =============================================================================

// Input holds everything one conversion reads.
type Input struct {
	// Quote is the supplier's quote. Its first sheet is read.
	Quote source.Source

	// Catalog and Customers are the reference tables.
	Catalog   source.Source
	Customers source.Source

	// CustomerID selects the customer the order is attached to.
	CustomerID string

	// TemplatePath is the output template. TemplateHeaders, when set, is used
	// instead and the file is not read.
	TemplatePath    string
	TemplateHeaders []string
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter runs the quote conversion pipeline.
type Converter struct {
	cfg    *config.Config
	loader *source.Loader
	logger Logger
}

// Logger is an interface for logging. *slog.Logger satisfies it; args are
// alternating keys and values.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// New creates a Converter. A nil logger discards output.
func New(cfg *config.Config, logger Logger) *Converter {
	return NewWithClient(cfg, logger, nil)
}

// NewWithClient creates a Converter that downloads remote sheets with client.
func NewWithClient(cfg *config.Config, logger Logger, client *http.Client) *Converter {
	if logger == nil {
		logger = discardLogger{}
	}
	return &Converter{
		cfg:    cfg,
		loader: source.NewLoader(client, cfg.Timeout()).WithRetries(cfg.Retries(), 0),
		logger: logger,
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Convert runs the pipeline for one quote.
//
// RETURNS:
//   - The assembled table and a report of what was skipped or unmapped. A
//     quote whose rows were all filtered out yields an empty, non-nil Result;
//     callers check Result.Empty().
//   - An error for fatal conditions: unreadable template, unreadable source,
//     catalog without its SKU column, undetectable header row or unknown
//     customer.
func (c *Converter) Convert(ctx context.Context, in Input) (*Result, error) {
	refs, err := c.LoadReferences(ctx, in)
	if err != nil {
		return nil, err
	}
	return c.ConvertQuote(ctx, refs, in.Quote, in.CustomerID)
}

// References holds what every quote of a run shares: the template columns,
// the catalog and the customer directory. They are read-only once loaded.
type References struct {
	Template  []string
	Catalog   *catalog.Catalog
	Customers *customer.Directory
}

// LoadReferences reads the output template and loads the catalog and the
// customer directory named by in. in.Quote is not read.
func (c *Converter) LoadReferences(ctx context.Context, in Input) (*References, error) {
	// =========================================================================
	// STEP 1: OUTPUT TEMPLATE
	// =========================================================================

	template := in.TemplateHeaders
	if len(template) == 0 {
		headers, err := xlsxparser.ReadHeaders(in.TemplatePath)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTemplate, err)
		}
		template = headers
	}
	c.logger.Debug("template columns", "columns", template)

	// =========================================================================
	// STEP 2-3: REFERENCE TABLES
	// =========================================================================

	cat, err := c.LoadCatalog(ctx, in.Catalog)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("catalog loaded", "source", cat.Source(), "entries", cat.Len())

	dir, err := c.LoadCustomers(ctx, in.Customers)
	if err != nil {
		return nil, err
	}

	return &References{Template: template, Catalog: cat, Customers: dir}, nil
}

// ConvertQuote runs steps 4 to 9 of the pipeline for one quote against
// already loaded references. It is safe for concurrent use.
func (c *Converter) ConvertQuote(ctx context.Context, refs *References, quoteSrc source.Source, customerID string) (*Result, error) {
	report := Report{RunID: uuid.NewString()}
	log := c.logger

	log.Info("converting quote", "run_id", report.RunID, "quote", quoteSrc.String(), "customer", customerID)

	// =========================================================================
	// STEP 4: LOCATE HEADER
	// =========================================================================

	quote, err := c.loader.Load(ctx, quoteSrc)
	if err != nil {
		return nil, fmt.Errorf("%w: quote: %w", ErrSource, err)
	}

	preview := quote.Preview(c.cfg.Quote.PreviewRows)
	headerRow, err := header.FindHeaderRow(preview, c.cfg.Quote.HeaderTerms)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", quote.Source, err)
	}
	report.HeaderRow = headerRow
	log.Debug("header row found", "run_id", report.RunID, "row", headerRow)

	// =========================================================================
	// STEP 5: ITEMS TABLE
	// =========================================================================

	items, err := quote.ReadTable(headerRow)
	if err != nil {
		return nil, err
	}
	report.Mapping = columns.MapColumns(items)
	if report.Mapping.Degraded {
		report.Warnings = append(report.Warnings, fmt.Sprintf("essential columns not identified (found %v)", items.Columns))
		log.Warn("column mapping degraded", "run_id", report.RunID, "columns", items.Columns)
	}
	if report.Mapping.Fallback != "" {
		log.Info("product column chosen by fallback", "run_id", report.RunID, "column", report.Mapping.Fallback)
	}

	// =========================================================================
	// STEP 6: METADATA
	// =========================================================================

	md := metadata.Extract(preview, headerRow)
	report.ProposalNumber = md.ProposalNumber
	report.ProposalDate = md.ProposalDate
	log.Debug("metadata extracted", "run_id", report.RunID, "proposal", md.ProposalNumber, "date", md.ProposalDate)

	// =========================================================================
	// STEP 7: CUSTOMER
	// =========================================================================

	cust, err := refs.Customers.Lookup(customerID)
	if err != nil {
		return nil, err
	}
	report.CustomerName = cust.Name

	// =========================================================================
	// STEP 8: FILTER AND ASSEMBLE
	// =========================================================================

	kept, skipped := filterLineItems(lineItems(items))
	report.SkippedTotals = skipped.totals
	report.SkippedEmpty = skipped.empty

	asm := newAssembler(refs.Template, c.cfg.Output)
	table, unmapped := asm.assemble(order{metadata: md, customer: cust}, kept, refs.Catalog)
	report.Unmapped = unmapped
	for _, u := range unmapped {
		log.Warn("product not mapped", "run_id", report.RunID, "item", u.String())
		if u.Product == "" {
			report.Warnings = append(report.Warnings, fmt.Sprintf("SKU %q not in catalog; row written without product or status", u.SKU))
		}
	}

	// =========================================================================
	// STEP 9: VALIDATE
	// =========================================================================

	report.Validation = validation.Validate(table, c.cfg.Output.Fields)

	result := &Result{Table: table, Report: report}
	log.Info("conversion finished",
		"run_id", report.RunID,
		"rows", len(table.Rows),
		"skipped_totals", report.SkippedTotals,
		"skipped_empty", report.SkippedEmpty,
		"unmapped", len(report.Unmapped),
		"warnings", report.Validation.WarningCount(),
	)
	if result.Empty() {
		log.Warn("no line items survived filtering", "run_id", report.RunID)
	}
	return result, nil
}

// =============================================================================
// REFERENCE TABLES
// =============================================================================

// LoadCatalog loads and indexes the product catalog.
func (c *Converter) LoadCatalog(ctx context.Context, src source.Source) (*catalog.Catalog, error) {
	sheet, err := c.loader.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("%w: catalog: %w", ErrSource, err)
	}
	table, err := sheet.ReadTable(0)
	if err != nil {
		return nil, fmt.Errorf("%w: catalog: %w", ErrSource, err)
	}
	return catalog.Load(table, c.cfg.Catalog.Columns, sheet.Source)
}

// LoadCustomers loads the customer directory.
func (c *Converter) LoadCustomers(ctx context.Context, src source.Source) (*customer.Directory, error) {
	sheet, err := c.loader.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("%w: customers: %w", ErrSource, err)
	}
	table, err := sheet.ReadTable(0)
	if err != nil {
		return nil, fmt.Errorf("%w: customers: %w", ErrSource, err)
	}
	return customer.NewDirectory(table, c.cfg.Customers, sheet.Source), nil
}

// =============================================================================
// DEFAULT LOGGER
// =============================================================================

type discardLogger struct{}

func (discardLogger) Debug(string, ...any) {}
func (discardLogger) Info(string, ...any)  {}
func (discardLogger) Warn(string, ...any)  {}
func (discardLogger) Error(string, ...any) {}
