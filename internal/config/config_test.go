package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Quote.PreviewRows != 20 {
		t.Fatalf("want preview 20 got %d", cfg.Quote.PreviewRows)
	}
	if got := cfg.Output.Fields.Status; got != "Situação" {
		t.Fatalf("unexpected status column %q", got)
	}
	if cfg.Output.Status != "Aguardando" {
		t.Fatalf("unexpected status value %q", cfg.Output.Status)
	}
	if cfg.Catalog.Columns.Description != "MODELO OLIST" {
		t.Fatalf("unexpected description column %q", cfg.Catalog.Columns.Description)
	}
	if cfg.Timeout() != 30*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.Timeout())
	}
	if cfg.Retries() != 2 || cfg.MaxConcurrency != 4 {
		t.Fatalf("unexpected retries/concurrency %d/%d", cfg.Retries(), cfg.MaxConcurrency)
	}
}

func TestParse_OverridesAndInlineSource(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte(`
quote:
  preview_rows: 40
  header_terms: ["produto|item", "qtd"]
catalog:
  path: ./catalogo.csv
  csv:
    delimiter: ";"
  columns:
    sku: CODIGO
customers:
  url: https://example.com/clientes
output:
  status: Pendente
  fields:
    quantity: Qtd
http_timeout: 5s
log_format: JSON
max_concurrency: 8
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Quote.PreviewRows != 40 || len(cfg.Quote.HeaderTerms) != 2 {
		t.Fatalf("quote settings not applied: %+v", cfg.Quote)
	}
	if cfg.Catalog.Path != "./catalogo.csv" || cfg.Catalog.CSV.Delimiter != ";" {
		t.Fatalf("catalog source not applied: %+v", cfg.Catalog)
	}
	if cfg.Catalog.CSV.Encoding != "UTF-8" {
		t.Fatalf("csv encoding default missing: %q", cfg.Catalog.CSV.Encoding)
	}
	if cfg.Catalog.Columns.SKU != "CODIGO" || cfg.Catalog.Columns.Model != "MODELO" {
		t.Fatalf("catalog columns: %+v", cfg.Catalog.Columns)
	}
	if !cfg.Customers.Configured() || cfg.Customers.IDColumn != "ID" {
		t.Fatalf("customers: %+v", cfg.Customers)
	}
	if cfg.Output.Status != "Pendente" || cfg.Output.Fields.Quantity != "Qtd" {
		t.Fatalf("output: %+v", cfg.Output)
	}
	if cfg.Timeout() != 5*time.Second {
		t.Fatalf("timeout: %v", cfg.Timeout())
	}
	if cfg.LogFormat != "json" || cfg.MaxConcurrency != 8 {
		t.Fatalf("logging/concurrency: %q %d", cfg.LogFormat, cfg.MaxConcurrency)
	}
}

func TestParse_ExplicitZeroHTTPSettings(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte("http_timeout: 0s\nhttp_retries: 0\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Timeout() != 0 {
		t.Fatalf("want no timeout got %v", cfg.Timeout())
	}
	if cfg.Retries() != 0 {
		t.Fatalf("want single attempt got %d retries", cfg.Retries())
	}

	cfg, err = Parse([]byte("http_retries: 5\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Retries() != 5 || cfg.Timeout() != 30*time.Second {
		t.Fatalf("want=5/30s got=%d/%v", cfg.Retries(), cfg.Timeout())
	}
}

func TestParse_ExpandsEnvironment(t *testing.T) {
	t.Setenv("QUOTECONV_CATALOG_URL", "https://sheets.example.com/cat")

	cfg, err := Parse([]byte("catalog:\n  url: ${QUOTECONV_CATALOG_URL}\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Catalog.URL != "https://sheets.example.com/cat" {
		t.Fatalf("env not expanded: %q", cfg.Catalog.URL)
	}
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"both catalog locations": "catalog:\n  path: a.xlsx\n  url: https://x\n",
		"negative preview":       "quote:\n  preview_rows: -1\n",
		"empty term":             "quote:\n  header_terms: [\"produto\", \"|\"]\n",
		"log level":              "log_level: loud\n",
		"log format":             "log_format: xml\n",
		"relative url":           "customers:\n  url: clientes.csv\n",
		"too many retries":       "http_retries: 50\n",
		"negative retries":       "http_retries: -1\n",
		"negative timeout":       "http_timeout: -5s\n",
		"negative concurrency":   "max_concurrency: -2\n",
	}
	for name, doc := range cases {
		name, doc := name, doc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if _, err := Parse([]byte(doc)); !errors.Is(err, ErrInvalid) {
				t.Fatalf("want ErrInvalid got %v", err)
			}
		})
	}
}

func TestLoad_UnreadableYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("quote: [unclosed"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
