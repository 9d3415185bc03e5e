package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var highlightJSON bool

var highlightCmd = &cobra.Command{
	Use:   "highlight [id]",
	Short: "Print the highlighted value ranges of a note",
	Long:  `Print the byte ranges an editor would decorate: nutrient values of inline entries and amounts of linked entries.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService()
		defer svc.Close()

		doc, err := svc.Document(context.Background(), args[0])
		if err != nil {
			fatal("Error reading note", err)
		}
		ranges := svc.Highlights(doc.Content)

		if highlightJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(ranges); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}
		for _, r := range ranges {
			fmt.Printf("%d-%d\t%s\t%s\n", r.Start, r.End, r.Kind, doc.Content[r.Start:r.End])
		}
	},
}

func init() {
	rootCmd.AddCommand(highlightCmd)
	highlightCmd.Flags().BoolVar(&highlightJSON, "json", false, "Output in JSON format")
}
