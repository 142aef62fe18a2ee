// =============================================================================
// Quote Converter - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the converter, including:
//   - Output directory management
//   - Output file naming (placeholders, sanitized customer names)
//   - Conversion summary files
//
// NAMING STRATEGY:
//   - Output files are named after the customer by default, so repeated
//     conversions for the same customer overwrite the previous order file
//   - {uuid} or {timestamp} can be added to the format to keep every run
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles output file operations for the converter.
type FileManager struct {
	// OutputDir is the directory where converted files are placed.
	OutputDir string
}

// NewFileManager creates a new FileManager for outputDir.
func NewFileManager(outputDir string) *FileManager {
	return &FileManager{OutputDir: outputDir}
}

// EnsureDirectories creates the output directory if it doesn't exist.
func (fm *FileManager) EnsureDirectories() error {
	if err := os.MkdirAll(fm.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fm.OutputDir, err)
	}
	return nil
}

// OutputPath returns the path of fileName inside the output directory.
// Directory components in fileName are discarded.
func (fm *FileManager) OutputPath(fileName string) string {
	return filepath.Join(fm.OutputDir, filepath.Base(fileName))
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName generates the output file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//     Placeholders:
//     {uuid}        - A random UUID
//     {timestamp}   - Current timestamp (YYYYMMDD_HHMMSS)
//     {date}        - Current date (YYYYMMDD)
//     {customer}    - Customer name (pass it through SanitizeFileName)
//     {customer_id} - Customer id
//     {proposal}    - Proposal number
//   - params: A map of placeholder values.
//
// RETURNS:
//   - The generated file name, always ending in ".xlsx".
//
// EXAMPLE:
//
//	format: "orcamento_convertido_olist_{customer}.xlsx"
//	params: {"customer": "LojaNorte"}
//	output: "orcamento_convertido_olist_LojaNorte.xlsx"
func GenerateOutputFileName(format string, params map[string]string) string {
	now := time.Now()

	replacements := map[string]string{
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
	}
	if strings.Contains(format, "{uuid}") {
		replacements["{uuid}"] = uuid.New().String()
	}

	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if !strings.HasSuffix(strings.ToLower(result), ".xlsx") {
		result += ".xlsx"
	}

	return result
}

// SanitizeFileName keeps letters, digits, '-' and '_' and drops everything
// else, including spaces ("Loja Norte/SP" becomes "LojaNorteSP"). An input
// with nothing left yields fallback.
func SanitizeFileName(name, fallback string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return fallback
	}
	return b.String()
}

// =============================================================================
// CONVERSION SUMMARY
// =============================================================================

// ConversionSummary describes one conversion for the summary file.
type ConversionSummary struct {
	StartTime      time.Time
	EndTime        time.Time
	RunID          string
	QuoteFile      string
	OutputFile     string
	Customer       string
	ProposalNumber string
	Rows           int
	SkippedTotals  int
	SkippedEmpty   int
	Unmapped       []string
	Warnings       []string
}

// WriteSummaryLog writes a conversion summary next to the output files.
//
// The file is named after the output file ("<output>_summary.txt") so every
// quote of a batch gets its own summary. Without an output file (dry runs) it
// is named after the start time.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary ConversionSummary, outputDir string) (string, error) {
	summaryFileName := fmt.Sprintf("conversion_summary_%s.txt", summary.StartTime.Format("20060102_150405"))
	if summary.OutputFile != "" {
		base := filepath.Base(summary.OutputFile)
		summaryFileName = strings.TrimSuffix(base, filepath.Ext(base)) + "_summary.txt"
	}
	summaryPath := filepath.Join(outputDir, summaryFileName)

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	proposal := summary.ProposalNumber
	if proposal == "" {
		proposal = "-"
	}
	fmt.Fprintf(writer, "Quote Converter - Conversion Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  Duration:       %s\n"+
		"  Quote:          %s\n"+
		"  Output:         %s\n"+
		"  Customer:       %s\n"+
		"  Proposal:       %s\n\n"+
		"Statistics:\n"+
		"  Rows Written:       %d\n"+
		"  Skipped (totals):   %d\n"+
		"  Skipped (empty):    %d\n"+
		"  Unmapped Products:  %d\n"+
		"  Warnings:           %d\n\n",
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String(),
		summary.QuoteFile,
		summary.OutputFile,
		summary.Customer,
		proposal,
		summary.Rows,
		summary.SkippedTotals,
		summary.SkippedEmpty,
		len(summary.Unmapped),
		len(summary.Warnings))

	writeSection(writer, "Unmapped Products", summary.Unmapped)
	writeSection(writer, "Warnings", summary.Warnings)

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

func writeSection(w *bufio.Writer, title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	w.WriteString(title + ":\n")
	w.WriteString("--------------------------------------------------------------------------------\n")
	for _, line := range lines {
		fmt.Fprintf(w, "  - %s\n", line)
	}
	w.WriteString("\n")
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
