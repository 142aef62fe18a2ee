// =============================================================================
// Quote Converter - Convert Command
// =============================================================================
//
// This file defines the 'convert' command, the main command of the tool. It
// converts one or more quote spreadsheets into Olist order files.
//
// COMMAND USAGE:
//   quoteconv convert <quote.xlsx>... --customer <id> [flags]
//
// FLAGS:
//   --customer    : Customer id the order is attached to (required)
//   --catalog     : Catalog path or URL (overrides the config)
//   --customers   : Customer list path or URL (overrides the config)
//   --template    : Output template (overrides the config)
//   --out         : Output directory (overrides the config)
//   --name        : Output file name format (overrides the config)
//   --dry-run     : Print the rows instead of writing files
//   --json        : With --dry-run, print the rows as JSON
//   --summary     : Write a summary file next to each output file
//   --report      : Write a validation report next to each output file
//
// PROCESSING PIPELINE:
//   1. Resolve the sources from flags and configuration
//   2. Load the template, catalog and customer list once
//   3. Convert the quotes concurrently (max_concurrency at a time)
//   4. Write one order file per quote
//   5. Print a summary
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ginjaninja78/quote-converter/internal/config"
	"github.com/ginjaninja78/quote-converter/internal/converter"
	"github.com/ginjaninja78/quote-converter/internal/source"
	"github.com/ginjaninja78/quote-converter/internal/types"
	"github.com/ginjaninja78/quote-converter/internal/validation"
	"github.com/ginjaninja78/quote-converter/internal/xlsxwriter"
	"github.com/ginjaninja78/quote-converter/pkg/utils"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var convertOpts struct {
	customerID   string
	catalog      string
	customers    string
	template     string
	outDir       string
	nameFormat   string
	dryRun       bool
	jsonOutput   bool
	writeSummary bool
	writeReport  bool
}

// quoteExtensions are the accepted local quote files.
var quoteExtensions = []string{".xlsx", ".xlsm"}

// =============================================================================
// CONVERT COMMAND DEFINITION
// =============================================================================

var convertCmd = &cobra.Command{
	Use:   "convert <quote.xlsx>...",
	Short: "Convert quote spreadsheets into Olist order files",
	Long: `The convert command reads each quote spreadsheet, locates its items table,
resolves the products against the catalog and writes an order file with the
columns of the Olist template for the selected customer.

Quotes are converted concurrently. A failing quote does not stop the others;
the command exits with an error when any quote failed.

A quote whose rows are all totals or blank fails with "no data processed".

Sources can be local files or URLs. Google Sheets links are downloaded as
CSV exports of the linked tab.`,

	Args: cobra.MinimumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd.Context(), cmd.OutOrStdout(), args)
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	f := convertCmd.Flags()
	f.StringVarP(&convertOpts.customerID, "customer", "c", "", "Customer id the order is attached to")
	f.StringVar(&convertOpts.catalog, "catalog", "", "Catalog file or URL (default from config)")
	f.StringVar(&convertOpts.customers, "customers", "", "Customer list file or URL (default from config)")
	f.StringVar(&convertOpts.template, "template", "", "Output template (default from config)")
	f.StringVarP(&convertOpts.outDir, "out", "o", "", "Output directory (default from config)")
	f.StringVar(&convertOpts.nameFormat, "name", "", "Output file name format (default from config)")
	f.BoolVar(&convertOpts.dryRun, "dry-run", false, "Print the converted rows instead of writing files")
	f.BoolVar(&convertOpts.jsonOutput, "json", false, "With --dry-run, print rows as JSON")
	f.BoolVar(&convertOpts.writeSummary, "summary", false, "Write a summary file next to each output file")
	f.BoolVar(&convertOpts.writeReport, "report", false, "Write a validation report next to each output file")

	_ = convertCmd.MarkFlagRequired("customer")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runConvert(ctx context.Context, stdout io.Writer, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := appConfig
	startTime := time.Now()

	// =========================================================================
	// STEP 1: RESOLVE SOURCES
	// =========================================================================

	quotes := make([]source.Source, 0, len(args))
	for _, arg := range args {
		q, err := quoteSource(arg)
		if err != nil {
			return err
		}
		quotes = append(quotes, q)
	}

	base := converter.Input{
		Catalog:      referenceSource(convertOpts.catalog, cfg.Catalog.SourceSettings),
		Customers:    referenceSource(convertOpts.customers, cfg.Customers.SourceSettings),
		CustomerID:   convertOpts.customerID,
		TemplatePath: firstNonEmpty(convertOpts.template, cfg.Output.Template),
	}

	// =========================================================================
	// STEP 2-3: CONVERT
	// =========================================================================

	conv := converter.New(cfg, logger)
	outcomes, batchErr := conv.ConvertBatch(ctx, base, quotes, cfg.MaxConcurrency)
	if outcomes == nil {
		return batchErr
	}

	// =========================================================================
	// STEP 4: WRITE OUTPUT
	// =========================================================================

	fm := utils.NewFileManager(firstNonEmpty(convertOpts.outDir, cfg.Output.Dir))
	if !convertOpts.dryRun {
		if err := fm.EnsureDirectories(); err != nil {
			return err
		}
	}

	format := outputNameFormat(firstNonEmpty(convertOpts.nameFormat, cfg.Output.NameFormat), len(quotes))
	writeOpts := xlsxwriter.Options{SheetName: cfg.Output.Sheet}

	var successCount int
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintf(stdout, "  ✗ %s: %v\n", o.Quote.String(), o.Err)
			continue
		}

		if convertOpts.dryRun {
			if err := printRows(stdout, o, convertOpts.jsonOutput); err != nil {
				return err
			}
			successCount++
			continue
		}

		name := utils.GenerateOutputFileName(format, outputParams(o))
		outPath := fm.OutputPath(name)
		if utils.FileExists(outPath) {
			logger.Warn("overwriting existing order file", "output", outPath)
		}
		if err := xlsxwriter.WriteFile(outPath, o.Result.Table, writeOpts); err != nil {
			fmt.Fprintf(stdout, "  ✗ %s: %v\n", o.Quote.String(), err)
			batchErr = multierr.Append(batchErr, err)
			continue
		}
		successCount++
		fmt.Fprintf(stdout, "  ✓ %s -> %s (%d rows, %s)\n", o.Quote.String(), outPath, len(o.Result.Table.Rows), fileSize(outPath))

		if err := writeSidecars(fm, o, outPath, startTime); err != nil {
			logger.Warn("could not write sidecar files", "output", outPath, "error", err)
		}
	}

	// =========================================================================
	// STEP 5: PRINT SUMMARY
	// =========================================================================

	fmt.Fprintln(stdout, "\n=== Conversion Complete ===")
	fmt.Fprintf(stdout, "Total quotes:    %d\n", len(quotes))
	fmt.Fprintf(stdout, "Successful:      %d\n", successCount)
	fmt.Fprintf(stdout, "Errors:          %d\n", len(quotes)-successCount)
	fmt.Fprintf(stdout, "Time elapsed:    %s\n", time.Since(startTime).Round(time.Millisecond))

	return batchErr
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// quoteSource turns a command-line argument into a quote source. Local
// quotes must be OOXML workbooks.
func quoteSource(arg string) (source.Source, error) {
	if isURL(arg) {
		return source.Source{URL: arg}, nil
	}
	ext := strings.ToLower(filepath.Ext(arg))
	for _, allowed := range quoteExtensions {
		if ext == allowed {
			return source.Source{Path: arg}, nil
		}
	}
	return source.Source{}, fmt.Errorf("%s: %w (expected %s)", arg, source.ErrUnsupportedFormat, strings.Join(quoteExtensions, ", "))
}

// referenceSource builds the catalog or customer source. A flag value replaces
// the configured location but keeps the configured sheets and CSV settings.
func referenceSource(flag string, settings config.SourceSettings) source.Source {
	if flag != "" {
		settings.Path, settings.URL = "", ""
		if isURL(flag) {
			settings.URL = flag
		} else {
			settings.Path = flag
		}
	}
	return source.FromSettings(settings)
}

func isURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// outputNameFormat makes sure several quotes never share a file name.
func outputNameFormat(format string, quotes int) string {
	if quotes < 2 || strings.Contains(format, "{quote}") || strings.Contains(format, "{uuid}") {
		return format
	}
	ext := filepath.Ext(format)
	return strings.TrimSuffix(format, ext) + "_{quote}" + ext
}

// outputParams returns the file name placeholders of one converted quote.
func outputParams(o converter.Outcome) map[string]string {
	rep := o.Result.Report
	id := convertOpts.customerID

	proposal := rep.ProposalNumber
	if proposal == "" {
		proposal = "sem_numero"
	}
	quote := filepath.Base(o.Quote.String())
	quote = strings.TrimSuffix(quote, filepath.Ext(quote))

	return map[string]string{
		"customer":    utils.SanitizeFileName(rep.CustomerName, "cliente_"+utils.SanitizeFileName(id, "sem_id")),
		"customer_id": utils.SanitizeFileName(id, "sem_id"),
		"proposal":    utils.SanitizeFileName(proposal, "sem_numero"),
		"quote":       utils.SanitizeFileName(quote, "orcamento"),
	}
}

// writeSidecars writes the optional summary and validation report.
func writeSidecars(fm *utils.FileManager, o converter.Outcome, outPath string, start time.Time) error {
	rep := o.Result.Report

	if convertOpts.writeSummary {
		unmapped := make([]string, 0, len(rep.Unmapped))
		for _, u := range rep.Unmapped {
			unmapped = append(unmapped, u.String())
		}
		warnings := append([]string(nil), rep.Warnings...)
		for _, issue := range rep.Validation.Issues {
			warnings = append(warnings, issue.Error())
		}
		path, err := utils.WriteSummaryLog(utils.ConversionSummary{
			StartTime:      start,
			EndTime:        time.Now(),
			RunID:          rep.RunID,
			QuoteFile:      o.Quote.String(),
			OutputFile:     outPath,
			Customer:       rep.CustomerName,
			ProposalNumber: rep.ProposalNumber,
			Rows:           len(o.Result.Table.Rows),
			SkippedTotals:  rep.SkippedTotals,
			SkippedEmpty:   rep.SkippedEmpty,
			Unmapped:       unmapped,
			Warnings:       warnings,
		}, fm.OutputDir)
		if err != nil {
			return err
		}
		logger.Debug("summary written", "path", path)
	}

	if convertOpts.writeReport {
		path := strings.TrimSuffix(outPath, filepath.Ext(outPath)) + "_validation.txt"
		if err := validation.WriteReport(rep.Validation.Issues, path); err != nil {
			return err
		}
		logger.Debug("validation report written", "path", path)
	}
	return nil
}

// printRows renders a converted table for --dry-run.
func printRows(w io.Writer, o converter.Outcome, asJSON bool) error {
	table := o.Result.Table
	if asJSON {
		rows := make([]map[string]any, 0, len(table.Rows))
		for _, row := range table.Rows {
			m := make(map[string]any, len(table.Columns))
			for _, col := range table.Columns {
				m[col] = jsonValue(row.Get(col))
			}
			rows = append(rows, m)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"quote":    o.Quote.String(),
			"run_id":   o.Result.Report.RunID,
			"columns":  table.Columns,
			"rows":     rows,
			"unmapped": len(o.Result.Report.Unmapped),
		})
	}

	fmt.Fprintf(w, "# %s\n", o.Quote.String())
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(table.Columns, "\t"))
	for _, row := range table.Rows {
		cells := make([]string, len(table.Columns))
		for i, col := range table.Columns {
			cells[i] = row.Get(col).String()
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return nil
}

// jsonValue renders dates as dd/mm/yyyy, the way the output file shows them.
func jsonValue(c types.Cell) any {
	if c.Kind == types.Date {
		return c.Time.Format("02/01/2006")
	}
	return c.Value()
}

func fileSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "?"
	}
	return humanize.Bytes(uint64(info.Size()))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
