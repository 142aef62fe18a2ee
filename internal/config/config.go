// =============================================================================
// Quote Converter - Configuration Module
// =============================================================================
//
// This module loads the application configuration from a single YAML file.
// Every setting has a default, so an empty file (or no file at all) gives a
// working setup that follows the downstream platform's conventions.
//
// CONFIGURATION SECTIONS:
//   1. quote      : How quote spreadsheets are scanned (preview size, header terms)
//   2. catalog    : Where the product catalog lives and which columns it uses
//   3. customers  : Where the customer directory lives and which columns it uses
//   4. output     : Template, output directory, file naming and field columns
//   5. logging    : Level, format and optional log file
//
// ENVIRONMENT:
//   ${VAR} references anywhere in the file are expanded from the environment
//   before parsing, so URLs and paths can be kept out of the file.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

const (
	defaultHTTPTimeout = 30 * time.Second
	defaultHTTPRetries = 2
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the whole application configuration.
type Config struct {
	// Quote controls how quote spreadsheets are scanned.
	Quote QuoteSettings `yaml:"quote"`

	// Catalog describes the product catalog source.
	Catalog CatalogSettings `yaml:"catalog"`

	// Customers describes the customer directory source.
	Customers CustomerSettings `yaml:"customers"`

	// Output controls the generated order spreadsheet.
	Output OutputSettings `yaml:"output"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile is an optional file that receives a copy of every log line.
	// Default: "" (stderr only)
	LogFile string `yaml:"log_file"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects the log encoding.
	// Valid values: "text", "json"
	// Default: "text"
	LogFormat string `yaml:"log_format" validate:"oneof=text json"`

	// HTTPTimeout bounds every remote sheet download. An explicit 0 disables
	// the bound. Read it through Timeout.
	// Default: 30s
	HTTPTimeout *time.Duration `yaml:"http_timeout" validate:"omitempty,gte=0"`

	// HTTPRetries is the number of extra attempts for a remote download that
	// failed with a network error or a 5xx/429 response. An explicit 0 makes
	// a single attempt. Read it through Retries.
	// Default: 2
	HTTPRetries *int `yaml:"http_retries" validate:"omitempty,gte=0,lte=10"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency limits how many quotes a batch run converts at once.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency" validate:"gte=1,lte=64"`
}

// =============================================================================
// QUOTE SETTINGS
// =============================================================================

// QuoteSettings controls header detection in quote spreadsheets.
type QuoteSettings struct {
	// PreviewRows is the number of rows scanned for the header and metadata.
	// Default: 20
	PreviewRows int `yaml:"preview_rows" validate:"gte=1"`

	// HeaderTerms are the terms a header row must contain. A term may list
	// synonyms separated by "|".
	// Default: ["produto", "quantidade|qtd|qtde", "valor"]
	//
	// CUSTOMIZATION: Add synonyms used by your suppliers, e.g. "produto|item".
	HeaderTerms []string `yaml:"header_terms" validate:"min=1"`
}

// =============================================================================
// SOURCE SETTINGS
// =============================================================================

// SourceSettings locates one tabular source. Path and URL are exclusive.
type SourceSettings struct {
	// Path is a local .xlsx or .csv file.
	Path string `yaml:"path"`

	// URL is a remote published sheet. Google Sheets edit links are accepted.
	URL string `yaml:"url" validate:"omitempty,http_url,excluded_with=Path"`

	// Sheets are the preferred sheet names, matched case-insensitively.
	// The first sheet is used when none matches.
	Sheets []string `yaml:"sheets"`

	// CSV holds settings used when the source is CSV.
	CSV CSVSettings `yaml:"csv"`
}

// Configured reports whether a path or URL has been set.
func (s SourceSettings) Configured() bool {
	return s.Path != "" || s.URL != ""
}

// CatalogSettings locates the product catalog and names its columns.
type CatalogSettings struct {
	SourceSettings `yaml:",inline"`

	// Columns names the catalog columns.
	Columns CatalogColumns `yaml:"columns"`
}

// CatalogColumns names the catalog columns used for resolution.
type CatalogColumns struct {
	// SKU is required. Default: "SKU"
	SKU string `yaml:"sku"`

	// Model is the model name used as a fallback key. Default: "MODELO"
	Model string `yaml:"model"`

	// ID is the platform product id. Default: "ID"
	ID string `yaml:"id"`

	// Description is the platform product description. Default: "MODELO OLIST"
	Description string `yaml:"description"`
}

// CustomerSettings locates the customer directory and names its columns.
type CustomerSettings struct {
	SourceSettings `yaml:",inline"`

	// IDColumn default: "ID"
	IDColumn string `yaml:"id_column"`

	// NameColumn default: "Nome"
	NameColumn string `yaml:"name_column"`
}

// =============================================================================
// CSV SETTINGS STRUCTURE
// =============================================================================

// CSVSettings contains settings for parsing CSV sources.
type CSVSettings struct {
	// Delimiter is the character used to separate fields.
	// Common values: "," (comma), ";" (semicolon), "|" (pipe), "\t" (tab)
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// Encoding is the character encoding of the data.
	// Supported values: "UTF-8", "ISO-8859-1", "Windows-1252"
	// Default: "UTF-8"
	Encoding string `yaml:"encoding"`
}

// =============================================================================
// OUTPUT SETTINGS
// =============================================================================

// OutputSettings controls the generated spreadsheet.
type OutputSettings struct {
	// Template is the spreadsheet whose first-row headers define the output columns.
	// Default: "./templates/modelo_olist.xlsx"
	Template string `yaml:"template"`

	// Dir is where converted files are written.
	// Default: "./output"
	Dir string `yaml:"dir"`

	// NameFormat defines the output file name.
	// Placeholders:
	//   {customer}    - Customer name, sanitized for file systems
	//   {customer_id} - Customer id
	//   {proposal}    - Proposal number ("sem_numero" when absent)
	//   {uuid}        - A random UUID
	//   {timestamp}   - Current timestamp (YYYYMMDD_HHMMSS)
	// Default: "orcamento_convertido_olist_{customer}.xlsx"
	NameFormat string `yaml:"name_format"`

	// Sheet is the name of the output worksheet.
	// Default: "Sheet1"
	Sheet string `yaml:"sheet"`

	// Status is written to the status column of every emitted product row.
	// Default: "Aguardando"
	Status string `yaml:"status"`

	// Fields maps each computed field to its template column.
	Fields FieldColumns `yaml:"fields"`
}

// FieldColumns maps computed output fields to template column names.
// A field whose column is missing from the template is dropped.
type FieldColumns struct {
	ProposalNumber     string `yaml:"proposal_number"`
	ProposalDate       string `yaml:"proposal_date"`
	CustomerID         string `yaml:"customer_id"`
	CustomerName       string `yaml:"customer_name"`
	ProductID          string `yaml:"product_id"`
	ProductDescription string `yaml:"product_description"`
	Quantity           string `yaml:"quantity"`
	UnitValue          string `yaml:"unit_value"`
	Status             string `yaml:"status"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load loads the configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the configuration file. A missing file is not
//     an error; defaults are used instead.
//
// RETURNS:
//   - A pointer to the Config struct.
//   - An error if the file cannot be read, parsed or validated.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data, expanding ${VAR} references first.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.Quote.PreviewRows == 0 {
		cfg.Quote.PreviewRows = 20
	}
	if len(cfg.Quote.HeaderTerms) == 0 {
		cfg.Quote.HeaderTerms = []string{"produto", "quantidade|qtd|qtde", "valor"}
	}

	if len(cfg.Catalog.Sheets) == 0 {
		cfg.Catalog.Sheets = []string{"CATÁLOGO", "CATALOGO"}
	}
	applyColumnDefault(&cfg.Catalog.Columns.SKU, "SKU")
	applyColumnDefault(&cfg.Catalog.Columns.Model, "MODELO")
	applyColumnDefault(&cfg.Catalog.Columns.ID, "ID")
	applyColumnDefault(&cfg.Catalog.Columns.Description, "MODELO OLIST")

	if len(cfg.Customers.Sheets) == 0 {
		cfg.Customers.Sheets = []string{"clientes"}
	}
	applyColumnDefault(&cfg.Customers.IDColumn, "ID")
	applyColumnDefault(&cfg.Customers.NameColumn, "Nome")

	applyCSVDefaults(&cfg.Catalog.CSV)
	applyCSVDefaults(&cfg.Customers.CSV)

	applyColumnDefault(&cfg.Output.Template, "./templates/modelo_olist.xlsx")
	applyColumnDefault(&cfg.Output.Dir, "./output")
	applyColumnDefault(&cfg.Output.NameFormat, "orcamento_convertido_olist_{customer}.xlsx")
	applyColumnDefault(&cfg.Output.Sheet, "Sheet1")
	applyColumnDefault(&cfg.Output.Status, "Aguardando")

	f := &cfg.Output.Fields
	applyColumnDefault(&f.ProposalNumber, "Número da proposta")
	applyColumnDefault(&f.ProposalDate, "Data")
	applyColumnDefault(&f.CustomerID, "ID contato")
	applyColumnDefault(&f.CustomerName, "Nome do contato")
	applyColumnDefault(&f.ProductID, "ID produto")
	applyColumnDefault(&f.ProductDescription, "Descrição")
	applyColumnDefault(&f.Quantity, "Quantidade")
	applyColumnDefault(&f.UnitValue, "Valor unitário")
	applyColumnDefault(&f.Status, "Situação")

	applyColumnDefault(&cfg.LogLevel, "info")
	applyColumnDefault(&cfg.LogFormat, "text")
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.HTTPTimeout == nil {
		timeout := defaultHTTPTimeout
		cfg.HTTPTimeout = &timeout
	}
	if cfg.HTTPRetries == nil {
		retries := defaultHTTPRetries
		cfg.HTTPRetries = &retries
	}
	if cfg.MaxConcurrency == 0 {
		cfg.MaxConcurrency = 4
	}
}

// Timeout returns the remote download bound; 0 means none.
func (c *Config) Timeout() time.Duration {
	if c.HTTPTimeout == nil {
		return defaultHTTPTimeout
	}
	return *c.HTTPTimeout
}

// Retries returns the number of extra remote download attempts.
func (c *Config) Retries() int {
	if c.HTTPRetries == nil {
		return defaultHTTPRetries
	}
	return *c.HTTPRetries
}

func applyColumnDefault(field *string, value string) {
	if strings.TrimSpace(*field) == "" {
		*field = value
	}
}

func applyCSVDefaults(s *CSVSettings) {
	if s.Delimiter == "" {
		s.Delimiter = ","
	}
	if s.Encoding == "" {
		s.Encoding = "UTF-8"
	}
}

// validate is shared; validator caches struct metadata per type.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration for contradictory or unusable values.
//
// Field-level rules live in the struct tags above. Rules that the tags cannot
// express (empty "|" synonym lists) are checked here.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("%w: %s", ErrInvalid, describe(verrs))
		}
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	for _, term := range c.Quote.HeaderTerms {
		if strings.Trim(term, "| \t") == "" {
			return fmt.Errorf("%w: quote.header_terms contains an empty term", ErrInvalid)
		}
	}
	return nil
}

// describe renders validation errors as "Field: rule value" pairs.
func describe(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, fmt.Sprintf("%s fails %s (got %v)", fe.Namespace(), rule, fe.Value()))
	}
	return strings.Join(parts, "; ")
}
