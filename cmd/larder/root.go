package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/larder"
)

var (
	verbose   bool
	vaultFlag string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "larder",
	Short: "Nutrition totals for Markdown notes",
	Long: `Larder reads tagged food entries from your notes and totals them
against nutrient notes kept in the same vault.

  #food [[Oats]] 80g
  #food Snack 120kcal 5fat`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&vaultFlag, "vault", "", "Vault directory (default: nearest vault root above the working directory)")
}

// vaultPath resolves --vault, falling back to the nearest vault root and then
// the working directory.
func vaultPath() string {
	if vaultFlag != "" {
		return vaultFlag
	}
	wd, err := os.Getwd()
	if err != nil {
		fatal("Failed to get CWD", err)
	}
	root, err := larder.FindVaultRoot(wd)
	if err != nil {
		slog.Debug("no vault root found, using working directory", "path", wd)
		return wd
	}
	return root
}

// openService opens the vault read-only with the default logger.
func openService(opts ...larder.Option) *larder.Service {
	base := []larder.Option{
		larder.WithMustExist(true),
		larder.WithReadOnly(true),
		larder.WithLogger(slog.Default()),
	}
	svc, err := larder.New(vaultPath(), append(base, opts...)...)
	if err != nil {
		fatal("Error opening vault", err)
	}
	return svc
}
