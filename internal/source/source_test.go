package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ginjaninja78/quote-converter/internal/types"
	"github.com/xuri/excelize/v2"
)

func workbookBytes(t *testing.T, sheet string, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", "Capa"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if _, err := f.NewSheet(sheet); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	for r, row := range rows {
		for c, v := range row {
			axis, _ := excelize.CoordinatesToCellName(c+1, r+1)
			if err := f.SetCellValue(sheet, axis, v); err != nil {
				t.Fatalf("set %s: %v", axis, err)
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	return buf.Bytes()
}

func TestExportURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, want string
		wantErr  bool
	}{
		{
			in:   "https://docs.google.com/spreadsheets/d/1qAuw2eb_Wx-9/edit?pli=1&gid=1582301730#gid=1582301730",
			want: "https://docs.google.com/spreadsheets/d/1qAuw2eb_Wx-9/export?format=csv&gid=1582301730",
		},
		{
			in:   "https://docs.google.com/spreadsheets/d/abc/export?format=csv&gid=7",
			want: "https://docs.google.com/spreadsheets/d/abc/export?format=csv&gid=7",
		},
		{in: "https://example.com/clientes.csv", want: "https://example.com/clientes.csv"},
		{in: "https://docs.google.com/spreadsheets/d/abc/edit", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ExportURL(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrSheetURL) {
				t.Fatalf("%s: want ErrSheetURL got %v", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("%s: want=%s got=%s err=%v", tc.in, tc.want, got, err)
		}
	}
}

func TestLoad_RemoteCSV(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/clientes" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("ID,Nome\n17,Loja Centro\n"))
	}))
	defer srv.Close()

	loader := NewLoader(srv.Client(), 5*time.Second)
	sheet, err := loader.Load(context.Background(), Source{URL: srv.URL + "/clientes"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := sheet.Grid.At(1, 1).String(); got != "Loja Centro" {
		t.Fatalf("unexpected cell %q", got)
	}

	_, err = loader.Load(context.Background(), Source{URL: srv.URL + "/missing"})
	if !errors.Is(err, ErrHTTPStatus) {
		t.Fatalf("want ErrHTTPStatus got %v", err)
	}
}

func TestLoad_RemoteWorkbookSelectsSheet(t *testing.T) {
	t.Parallel()

	data := workbookBytes(t, "CATÁLOGO", [][]any{{"SKU", "MODELO"}, {"A-1", "Cadeira"}})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	sheet, err := NewLoader(srv.Client(), time.Second).Load(context.Background(), Source{URL: srv.URL, Sheets: []string{"catálogo"}})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sheet.Name != "CATÁLOGO" {
		t.Fatalf("want sheet CATÁLOGO got %q", sheet.Name)
	}
	if sheet.Grid.At(1, 0).String() != "A-1" {
		t.Fatalf("unexpected grid %+v", sheet.Grid)
	}
}

func TestLoad_DataAndPath(t *testing.T) {
	t.Parallel()

	loader := NewLoader(nil, 0)

	sheet, err := loader.Load(context.Background(), Source{Data: workbookBytes(t, "Itens", [][]any{{"Produto"}}), Name: "upload.xlsx"})
	if err != nil {
		t.Fatalf("load data: %v", err)
	}
	if sheet.Name != "Capa" {
		t.Fatalf("quote sources read the first sheet, got %q", sheet.Name)
	}

	path := filepath.Join(t.TempDir(), "catalogo.csv")
	if err := os.WriteFile(path, []byte("SKU;MODELO\nX;Y\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	src := Source{Path: path}
	src.CSV.Delimiter = ";"
	sheet, err = loader.Load(context.Background(), src)
	if err != nil {
		t.Fatalf("load path: %v", err)
	}
	if sheet.Grid.At(1, 1).String() != "Y" {
		t.Fatalf("unexpected grid %+v", sheet.Grid)
	}

	if _, err := loader.Load(context.Background(), Source{}); !errors.Is(err, ErrNoLocation) {
		t.Fatalf("want ErrNoLocation got %v", err)
	}
}

func TestReadTable(t *testing.T) {
	t.Parallel()

	sheet := &Sheet{Source: "quote.xlsx", Grid: types.Grid{
		{types.TextCell("Proposta 4521")},
		{},
		{types.TextCell("Produto"), types.TextCell("Valor"), types.Cell{}, types.TextCell("Valor")},
		{types.TextCell("Cadeira X"), types.NumberCell(150), types.Cell{}, types.NumberCell(1500), types.TextCell("obs")},
		{},
		{types.TextCell("Mesa")},
	}}

	table, err := sheet.ReadTable(2)
	if err != nil {
		t.Fatalf("read table: %v", err)
	}
	want := []string{"Produto", "Valor", "Unnamed: 2", "Valor.1", "Unnamed: 4"}
	if len(table.Columns) != len(want) {
		t.Fatalf("want columns %v got %v", want, table.Columns)
	}
	for i := range want {
		if table.Columns[i] != want[i] {
			t.Fatalf("want columns %v got %v", want, table.Columns)
		}
	}
	if len(table.Rows) != 2 {
		t.Fatalf("want 2 rows (blank dropped) got %d", len(table.Rows))
	}
	if table.Rows[0].Get("Valor.1").Number != 1500 {
		t.Fatalf("unexpected row %+v", table.Rows[0])
	}

	if _, err := sheet.ReadTable(9); !errors.Is(err, ErrHeaderOutOfRange) {
		t.Fatalf("want ErrHeaderOutOfRange got %v", err)
	}
	if got := len(sheet.Preview(2)); got != 2 {
		t.Fatalf("preview: want 2 got %d", got)
	}
}

func TestLoad_RemoteRetriesTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ID,Nome\n17,Loja Centro\n"))
	}))
	defer srv.Close()

	loader := NewLoader(srv.Client(), 5*time.Second).WithRetries(2, time.Millisecond)
	sheet, err := loader.Load(context.Background(), Source{URL: srv.URL})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("want 3 attempts got %d", calls.Load())
	}
	if sheet.Grid.At(1, 0).String() != "17" {
		t.Fatalf("unexpected grid %+v", sheet.Grid)
	}

	calls.Store(-10)
	_, err = NewLoader(srv.Client(), 5*time.Second).WithRetries(1, time.Millisecond).Load(context.Background(), Source{URL: srv.URL})
	if !errors.Is(err, ErrHTTPStatus) {
		t.Fatalf("want ErrHTTPStatus after retries got %v", err)
	}
}

func TestDetectFormat(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		data    []byte
		want    Format
		wantErr bool
	}{
		{name: "workbook", data: workbookBytes(t, "Itens", [][]any{{"Produto"}}), want: FormatXLSX},
		{name: "csv", data: []byte("SKU,MODELO\nA-1,Cadeira\n"), want: FormatCSV},
		{name: "latin1 csv", data: []byte("SKU;MODELO\nA-1;Reuni\xe3o\n"), want: FormatCSV},
		{name: "pdf", data: []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n"), wantErr: true},
		{name: "legacy xls", data: append([]byte("\xd0\xcf\x11\xe0\xa1\xb1\x1a\xe1"), make([]byte, 512)...), wantErr: true},
	}
	for _, tc := range cases {
		got, err := DetectFormat(tc.data)
		if tc.wantErr {
			if !errors.Is(err, ErrUnsupportedFormat) {
				t.Fatalf("%s: want ErrUnsupportedFormat got %v", tc.name, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("%s: want=%v got=%v err=%v", tc.name, tc.want, got, err)
		}
	}
}
