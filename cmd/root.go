// =============================================================================
// Quote Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every subcommand is
// attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (quoteconv)
//   ├── convertCmd   (quoteconv convert)
//   ├── customersCmd (quoteconv customers)
//   └── versionCmd   (quoteconv version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command:
//   1. Loads a .env file if present (variables referenced by the YAML config)
//   2. Loads the YAML configuration (--config)
//   3. Sets up structured logging (log/slog)
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/ginjaninja78/quote-converter/internal/config"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// envFile holds the path to the optional .env file.
var envFile string

// verbose forces debug logging.
var verbose bool

// appConfig and logger are set by the root command before a subcommand runs.
var (
	appConfig *config.Config
	logger    *slog.Logger
	logCloser io.Closer
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "quoteconv",
	Short: "Quote Converter - turn supplier quote spreadsheets into Olist order rows",
	Long: `Quote Converter reads a supplier's quote spreadsheet, finds its items
table, resolves every product against the catalog and writes the rows of the
Olist order import template for the selected customer.

Key Features:
  - Header row detection in free-form quote spreadsheets
  - Column identification by name (product, SKU, quantity, unit value)
  - Catalog resolution by SKU or model name
  - Catalog and customer lists from local files or published Google Sheets
  - Concurrent conversion of several quotes

Example Usage:
  quoteconv convert orcamento.xlsx --customer 17
  quoteconv convert q1.xlsx q2.xlsx --customer 17 --out ./pedidos
  quoteconv customers --json`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initialize()
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the CLI. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file (defaults apply when it does not exist)",
	)

	rootCmd.PersistentFlags().StringVar(
		&envFile,
		"env-file",
		".env",
		"Path to an optional .env file loaded before the configuration",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// initialize loads the environment and configuration and builds the logger.
func initialize() error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	appConfig = cfg

	l, closer, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	logger, logCloser = l, closer
	slog.SetDefault(logger)
	return nil
}

// =============================================================================
// LOGGING
// =============================================================================

// newLogger builds the application logger.
//
// PARAMETERS:
//   - cfg: Level, format and optional log file.
//   - console: Where log lines are written (normally stderr).
//
// RETURNS:
//   - The logger.
//   - A closer for the log file, or nil when no file is configured.
//   - An error if the log file cannot be opened.
//
// An interactive terminal gets the text handler even when log_format is json,
// unless a log file is configured.
func newLogger(cfg *config.Config, console *os.File) (*slog.Logger, io.Closer, error) {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}

	var out io.Writer = console
	var closer io.Closer
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = io.MultiWriter(console, f)
		closer = f
	}

	format := cfg.LogFormat
	if format == "json" && cfg.LogFile == "" && isatty.IsTerminal(console.Fd()) {
		format = "text"
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler), closer, nil
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
