package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/larder"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of larder",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("larder version %s\n", strings.TrimSpace(larder.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
