// Command medicines-report prints the dataset analysis report to stdout.
package main

import (
	"fmt"
	"os"

	"github.com/giygas/medicines-api/config"
	"github.com/giygas/medicines-api/dataset"
	"github.com/giygas/medicines-api/query"
	"github.com/spf13/cobra"
)

var args struct {
	data    string
	format  string
	company string
}

// Cmd is the root command; without a sub-command it prints every section
var Cmd = &cobra.Command{
	Use:           "medicines-report",
	Short:         "Print the medicines dataset analysis report",
	Long:          "Load the medicines CSV once and print manufacturer, price, therapeutic, composition and summary sections.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          section(buildFull),
}

func init() {
	Cmd.PersistentFlags().StringVar(&args.data, "data", config.DefaultDataFile, "path of the medicines CSV")
	Cmd.PersistentFlags().StringVar(&args.format, "format", formatText, "output format: text, json or yaml")
	Cmd.PersistentFlags().StringVar(&args.company, "company", "Cipla", "manufacturer whose portfolio is reported")

	Cmd.AddCommand(
		&cobra.Command{Use: "summary", Short: "Dataset totals and price range", Args: cobra.NoArgs, RunE: section(buildSummary)},
		&cobra.Command{Use: "manufacturers", Short: "Top manufacturers, paracetamol prices and a company portfolio", Args: cobra.NoArgs, RunE: section(buildManufacturers)},
		&cobra.Command{Use: "prices", Short: "Price extremes and blood pressure price statistics", Args: cobra.NoArgs, RunE: section(buildPrices)},
		&cobra.Command{Use: "therapeutic", Short: "Diabetes medicines and composition complexity", Args: cobra.NoArgs, RunE: section(buildTherapeutic)},
		&cobra.Command{Use: "compositions", Short: "Most common compositions and diclofenac medicines", Args: cobra.NoArgs, RunE: section(buildCompositions)},
		&cobra.Command{Use: "all", Short: "Every section", Args: cobra.NoArgs, RunE: section(buildFull)},
	)
}

func main() {
	if err := Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// section loads the dataset, builds one report and renders it
func section(build func(*query.Engine, string) report) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		format, err := parseFormat(args.format)
		if err != nil {
			return err
		}

		ds, err := dataset.Load(args.data)
		if err != nil {
			return err
		}

		return render(cmd.OutOrStdout(), format, build(query.New(ds), args.company))
	}
}
