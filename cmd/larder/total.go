package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/larder"
	"github.com/aretw0/larder/pkg/format"
)

var (
	totalJSON   bool
	totalMarkup bool
)

var totalCmd = &cobra.Command{
	Use:   "total [id]",
	Short: "Total the food entries of a note",
	Long: `Total the food entries of a note by its ID. With "-" the note is read from stdin.
Prints the status line by default, the HTML summary with --markup, or the full report with --json.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService()
		defer svc.Close()
		ctx := context.Background()

		var (
			report larder.Report
			ok     bool
		)
		if args[0] == "-" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				fatal("Error reading stdin", err)
			}
			report, ok = svc.Compute(ctx, string(data))
		} else {
			var err error
			report, ok, err = svc.ComputeNote(ctx, args[0])
			if err != nil {
				fatal("Error reading note", err)
			}
		}

		if totalJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(report); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}

		if !ok {
			fmt.Fprintln(os.Stderr, "No food entries found.")
			return
		}

		if totalMarkup {
			html, err := format.Markup(report.Summary)
			if err != nil {
				fatal("Error rendering summary", err)
			}
			fmt.Println(html)
			return
		}
		fmt.Println(format.Text(report.Summary))
	},
}

func init() {
	rootCmd.AddCommand(totalCmd)
	totalCmd.Flags().BoolVar(&totalJSON, "json", false, "Output the full report in JSON format")
	totalCmd.Flags().BoolVar(&totalMarkup, "markup", false, "Output the summary as HTML")
}
