// =============================================================================
// Quote Converter - CSV Reader
// =============================================================================
//
// This module reads CSV data into the generic types.Grid model. CSV shows up
// in two places:
//   - Published spreadsheets fetched over HTTP (CSV export of one sheet)
//   - Local .csv catalog or customer files
//
// FEATURES:
//   - Configurable delimiter (comma, semicolon, tab, pipe)
//   - Configurable encoding (UTF-8, ISO-8859-1, Windows-1252)
//   - UTF-8 byte order mark is stripped
//   - Numeric fields are typed as numbers, everything else as text
//
// The grid is returned without assuming a header row, the same way the XLSX
// reader does, so header handling stays in one place (the source package).
//
// =============================================================================

package csvparser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/quote-converter/internal/config"
	"github.com/ginjaninja78/quote-converter/internal/types"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUnsupportedEncoding is returned for encodings the reader cannot decode.
var ErrUnsupportedEncoding = errors.New("unsupported encoding")

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ParseFile reads the CSV file at filePath.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: Delimiter and encoding settings.
//
// RETURNS:
//   - The typed grid.
//   - An error if the file cannot be read or parsed.
func ParseFile(filePath string, settings config.CSVSettings) (types.Grid, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	grid, err := Parse(file, settings)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return grid, nil
}

// ParseBytes reads CSV data held in memory.
func ParseBytes(data []byte, settings config.CSVSettings) (types.Grid, error) {
	return Parse(bytes.NewReader(data), settings)
}

// Parse reads CSV from r.
//
// PARSING PROCESS:
//  1. Wrap the reader with a decoder for the configured encoding
//  2. Configure the CSV reader with the configured delimiter
//  3. Read every record (ragged rows are allowed)
//  4. Type each field with types.InferCell
func Parse(r io.Reader, settings config.CSVSettings) (types.Grid, error) {
	enc, err := lookupEncoding(settings.Encoding)
	if err != nil {
		return nil, err
	}

	decoded := transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder()))

	csvReader := csv.NewReader(decoded)
	configureReader(csvReader, settings)

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	grid := make(types.Grid, 0, len(records))
	for _, record := range records {
		row := make([]types.Cell, len(record))
		for i, field := range record {
			row[i] = types.InferCell(field)
		}
		grid = append(grid, row)
	}

	return grid, nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	switch settings.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = rune(settings.Delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// Published sheets pad short rows, local exports often don't.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
}

// lookupEncoding maps a configured encoding name to a decoder.
func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "_", "-")) {
	case "", "UTF-8", "UTF8":
		return unicode.UTF8, nil
	case "ISO-8859-1", "LATIN1", "LATIN-1":
		return charmap.ISO8859_1, nil
	case "WINDOWS-1252", "CP1252":
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, name)
	}
}
