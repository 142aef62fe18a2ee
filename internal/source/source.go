// Package source loads tabular inputs (quotes, catalogs, customer lists) from a
// local file, an in-memory buffer or a remote published sheet into a typed grid.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ginjaninja78/quote-converter/internal/config"
	"github.com/ginjaninja78/quote-converter/internal/csvparser"
	"github.com/ginjaninja78/quote-converter/internal/types"
	"github.com/ginjaninja78/quote-converter/internal/xlsxparser"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sethvargo/go-retry"
)

var (
	// ErrNoLocation is returned when a Source has neither Path, Data nor URL.
	ErrNoLocation = errors.New("source has no path, data or url")

	// ErrSheetURL is returned when a Google Sheets link cannot be translated.
	ErrSheetURL = errors.New("cannot build sheet export url")

	// ErrHTTPStatus is returned for non-2xx download responses.
	ErrHTTPStatus = errors.New("unexpected http status")

	// ErrHeaderOutOfRange is returned by ReadTable for a header row past the grid.
	ErrHeaderOutOfRange = errors.New("header row out of range")

	// ErrUnsupportedFormat is returned for content that is neither an OOXML
	// workbook nor delimited text (legacy .xls, PDF, images).
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// Source describes one tabular input. Exactly one of Path, Data or URL is used,
// checked in that order.
type Source struct {
	// Path is a local .xlsx/.xlsm or .csv file.
	Path string

	// Data holds an uploaded file. Name, if set, is used in messages.
	Data []byte
	Name string

	// URL is a remote sheet, fetched over HTTP.
	URL string

	// Sheets are the preferred sheet names for workbooks.
	Sheets []string

	// CSV configures CSV decoding.
	CSV config.CSVSettings
}

// FromSettings builds a Source from its configuration block.
func FromSettings(s config.SourceSettings) Source {
	return Source{Path: s.Path, URL: s.URL, Sheets: s.Sheets, CSV: s.CSV}
}

// String describes the source for logs and error messages.
func (s Source) String() string {
	switch {
	case s.Path != "":
		return s.Path
	case len(s.Data) > 0:
		if s.Name != "" {
			return s.Name
		}
		return "<upload>"
	case s.URL != "":
		return s.URL
	default:
		return "<none>"
	}
}

// Sheet is the selected sheet of a loaded source.
type Sheet struct {
	// Source describes where the sheet came from.
	Source string

	// Name is the sheet name ("" for CSV).
	Name string

	// Grid holds every row of the sheet without assuming a header.
	Grid types.Grid
}

// Loader reads sources with a consistent timeout and retry policy for remote ones.
type Loader struct {
	client  *http.Client
	timeout time.Duration
	retries uint64
	backoff time.Duration
}

// NewLoader creates a Loader. If client is nil, http.DefaultClient is used.
// Remote downloads are attempted once until WithRetries is called.
func NewLoader(client *http.Client, timeout time.Duration) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{client: client, timeout: timeout, backoff: 500 * time.Millisecond}
}

// WithRetries sets how many extra attempts a remote download gets after a
// network error or a 5xx/429 response, and the first backoff delay.
func (l *Loader) WithRetries(retries int, backoff time.Duration) *Loader {
	if retries > 0 {
		l.retries = uint64(retries)
	}
	if backoff > 0 {
		l.backoff = backoff
	}
	return l
}

// Load reads the source's selected sheet.
func (l *Loader) Load(ctx context.Context, src Source) (*Sheet, error) {
	switch {
	case src.Path != "":
		return loadPath(src)
	case len(src.Data) > 0:
		return loadBytes(src.Data, src.String(), src)
	case src.URL != "":
		data, err := l.fetch(ctx, src.URL)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.URL, err)
		}
		return loadBytes(data, src.URL, src)
	default:
		return nil, ErrNoLocation
	}
}

func loadPath(src Source) (*Sheet, error) {
	switch strings.ToLower(filepath.Ext(src.Path)) {
	case ".csv", ".txt", ".tsv":
		grid, err := csvparser.ParseFile(src.Path, src.CSV)
		if err != nil {
			return nil, err
		}
		return &Sheet{Source: src.Path, Grid: grid}, nil
	case ".xlsx", ".xlsm":
		wb, err := xlsxparser.Open(src.Path)
		if err != nil {
			return nil, err
		}
		defer wb.Close()
		return readWorkbook(wb, src)
	default:
		data, err := os.ReadFile(src.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", src.Path, err)
		}
		return loadBytes(data, src.Path, src)
	}
}

func loadBytes(data []byte, name string, src Source) (*Sheet, error) {
	kind, err := DetectFormat(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if kind == FormatCSV {
		grid, err := csvparser.ParseBytes(data, src.CSV)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return &Sheet{Source: name, Grid: grid}, nil
	}
	wb, err := xlsxparser.OpenBytes(data, name)
	if err != nil {
		return nil, err
	}
	defer wb.Close()
	return readWorkbook(wb, src)
}

func readWorkbook(wb *xlsxparser.Workbook, src Source) (*Sheet, error) {
	name, err := wb.SelectSheet(src.Sheets...)
	if err != nil {
		return nil, err
	}
	grid, err := wb.ReadGrid(name, 0)
	if err != nil {
		return nil, err
	}
	return &Sheet{Source: wb.Name(), Name: name, Grid: grid}, nil
}

// =============================================================================
// FORMAT DETECTION
// =============================================================================

// Format is the container format of a source's content.
type Format int

const (
	// FormatCSV is delimited text.
	FormatCSV Format = iota
	// FormatXLSX is an OOXML workbook (.xlsx / .xlsm).
	FormatXLSX
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DetectFormat sniffs content. ZIP containers are treated as workbooks and any
// text is treated as CSV; everything else is rejected with ErrUnsupportedFormat.
func DetectFormat(data []byte) (Format, error) {
	mime := mimetype.Detect(data)
	for m := mime; m != nil; m = m.Parent() {
		switch {
		case m.Is(xlsxMIME), m.Is("application/zip"):
			return FormatXLSX, nil
		case m.Is("text/plain"):
			return FormatCSV, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mime.String())
}

// =============================================================================
// REMOTE SHEETS
// =============================================================================

func (l *Loader) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	target, err := ExportURL(rawURL)
	if err != nil {
		return nil, err
	}

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	backoff := retry.WithMaxRetries(l.retries, retry.NewExponential(l.backoff))

	var body []byte
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		b, err := l.get(ctx, target)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// get performs one download attempt. Transient failures are marked retryable.
func (l *Loader) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", "quoteconv/1.0")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, retry.RetryableError(fmt.Errorf("http get: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("%w %d: %s", ErrHTTPStatus, resp.StatusCode, strings.TrimSpace(string(body)))
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return nil, retry.RetryableError(err)
		}
		return nil, err
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, retry.RetryableError(fmt.Errorf("read body: %w", err))
	}
	return b, nil
}

var (
	spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)
	gidPattern           = regexp.MustCompile(`gid=(\d+)`)
)

// ExportURL translates a Google Sheets link into its CSV export URL for the
// linked tab. Other URLs, and links that already point at an export, are
// returned unchanged.
func ExportURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrSheetURL, rawURL, err)
	}
	if u.Host != "docs.google.com" || !strings.Contains(u.Path, "/spreadsheets/d/") {
		return rawURL, nil
	}
	if strings.HasSuffix(u.Path, "/export") {
		return rawURL, nil
	}

	id := spreadsheetIDPattern.FindStringSubmatch(u.Path)
	if id == nil {
		return "", fmt.Errorf("%w: no spreadsheet id in %s", ErrSheetURL, rawURL)
	}
	gid := gidPattern.FindStringSubmatch(rawURL)
	if gid == nil {
		return "", fmt.Errorf("%w: no gid in %s", ErrSheetURL, rawURL)
	}

	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=csv&gid=%s", id[1], gid[1]), nil
}
