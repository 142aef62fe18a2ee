// =============================================================================
// Quote Converter - Customers Command
// =============================================================================
//
// This file defines the 'customers' command, which lists the customer
// directory so the right id can be passed to 'convert --customer'.
//
// COMMAND USAGE:
//   quoteconv customers [--source <path|url>] [--json]
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ginjaninja78/quote-converter/internal/converter"
	"github.com/ginjaninja78/quote-converter/internal/customer"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var customersOpts struct {
	source     string
	jsonOutput bool
}

var customersCmd = &cobra.Command{
	Use:   "customers",
	Short: "List the customers available for conversion",
	Long: `The customers command loads the configured customer list (or the one given
with --source) and prints every customer that has a name, in source order.`,

	Args: cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runCustomers(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(customersCmd)

	customersCmd.Flags().StringVar(&customersOpts.source, "source", "", "Customer list file or URL (default from config)")
	customersCmd.Flags().BoolVar(&customersOpts.jsonOutput, "json", false, "Print the list as JSON")
}

func runCustomers(ctx context.Context, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	src := referenceSource(customersOpts.source, appConfig.Customers.SourceSettings)
	dir, err := converter.New(appConfig, logger).LoadCustomers(ctx, src)
	if err != nil {
		return err
	}
	return printCustomers(stdout, dir.List(), customersOpts.jsonOutput)
}

type customerView struct {
	ID   any    `json:"id"`
	Name string `json:"name"`
}

func printCustomers(w io.Writer, list []customer.Customer, asJSON bool) error {
	if asJSON {
		views := make([]customerView, 0, len(list))
		for _, c := range list {
			views = append(views, customerView{ID: c.ID.Value(), Name: c.Name})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNOME")
	for _, c := range list {
		fmt.Fprintf(tw, "%s\t%s\n", c.ID.String(), c.Name)
	}
	return tw.Flush()
}
