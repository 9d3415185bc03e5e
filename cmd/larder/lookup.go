package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/aretw0/larder"
	"github.com/aretw0/larder/pkg/format"
	"github.com/aretw0/larder/pkg/lookup"
)

var (
	lookupLimit int
	lookupCache bool
	lookupSave  int
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [query]",
	Short: "Search Open Food Facts for nutrient values",
	Long: `Search Open Food Facts and print per-100g values for each match.
With --save N the Nth result is written as a nutrient note.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := vaultPath()
		query := strings.Join(args, " ")

		var opts []larder.Option
		opts = append(opts, larder.WithLogger(slog.Default()))
		if lookupCache {
			opts = append(opts, larder.WithLookupCache(""))
		}
		searcher, closeFn, err := larder.OpenLookup(path, opts...)
		if err != nil {
			fatal("Error opening lookup", err)
		}
		defer func() {
			if err := closeFn(); err != nil {
				slog.Warn("failed to close lookup cache", "error", err)
			}
		}()

		ctx := context.Background()
		foods, err := searcher.Search(ctx, query, lookupLimit)
		if errors.Is(err, lookup.ErrNoResults) {
			fmt.Printf("No results for %q.\n", query)
			return
		}
		if err != nil {
			fatal("Error searching", err)
		}

		for i, food := range foods {
			summary, _ := format.Format(food.Values, nil)
			fmt.Printf("%2d. %s\n    %s\n", i+1, food.DisplayName(), format.Text(summary))
		}

		if lookupSave <= 0 {
			return
		}
		if lookupSave > len(foods) {
			fatal("Error saving", fmt.Errorf("result %d out of range (1-%d)", lookupSave, len(foods)))
		}
		saveFood(ctx, path, foods[lookupSave-1])
	},
}

// saveFood writes food under the static prefix of the nutrient pattern.
func saveFood(ctx context.Context, path string, food lookup.Food) {
	s, err := larder.LoadSettings(path)
	if err != nil {
		fatal("Error loading settings", err)
	}
	dir, _ := doublestar.SplitPattern(s.Nutrients)
	if dir == "." {
		dir = ""
	}

	repo, err := larder.Init(path, larder.WithMustExist(true), larder.WithLogger(slog.Default()))
	if err != nil {
		fatal("Error opening vault", err)
	}
	doc := food.Document(dir)
	if err := repo.Save(ctx, doc); err != nil {
		fatal("Error saving nutrient note", err)
	}
	fmt.Println("Saved", doc.ID)
}

func init() {
	rootCmd.AddCommand(lookupCmd)
	lookupCmd.Flags().IntVar(&lookupLimit, "limit", lookup.DefaultLimit, "Maximum number of results")
	lookupCmd.Flags().BoolVar(&lookupCache, "cache", true, "Cache results in the vault's system directory")
	lookupCmd.Flags().IntVar(&lookupSave, "save", 0, "Save the Nth result as a nutrient note")
}
