package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var namesCmd = &cobra.Command{
	Use:   "names",
	Short: "List the nutrient names known to the vault",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService()
		defer svc.Close()

		for _, name := range svc.Names() {
			fmt.Println(name)
		}
	},
}

func init() {
	rootCmd.AddCommand(namesCmd)
}
