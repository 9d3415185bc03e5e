package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/larder"
	"github.com/aretw0/larder/pkg/settings"
)

var initTag string

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a larder vault",
	Long:  `Initialize a Larder vault in the current directory (or --vault) by writing a default ` + settings.FileName + `.`,
	Run: func(cmd *cobra.Command, args []string) {
		path := vaultFlag
		if path == "" {
			cwd, err := os.Getwd()
			if err != nil {
				fatal("Failed to get CWD", err)
			}
			path = cwd
		}

		if _, err := larder.Init(path, larder.WithLogger(slog.Default())); err != nil {
			fatal("Failed to initialize vault", err)
		}

		file := filepath.Join(path, settings.FileName)
		if _, err := os.Stat(file); err == nil {
			fatal("Failed to initialize vault", errors.New(settings.FileName+" already exists"))
		}

		s := settings.Default()
		if initTag != "" {
			s.Tag = initTag
		}
		if err := s.Validate(); err != nil {
			fatal("Invalid settings", err)
		}
		if err := s.Save(file); err != nil {
			fatal("Failed to write settings", err)
		}

		fmt.Println("Initialized empty Larder vault in", path)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initTag, "tag", "", "Entry tag (default \"food\")")
}
