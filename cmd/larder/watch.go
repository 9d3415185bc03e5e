package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/larder"
	"github.com/aretw0/larder/pkg/core"
	"github.com/aretw0/larder/pkg/format"
)

var watchCmd = &cobra.Command{
	Use:   "watch [id]",
	Short: "Keep a note's totals current while the vault changes",
	Long:  `Watch the vault and print the totals of a note every time it, or any nutrient note, changes. Stops on Ctrl+C.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := args[0]
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var svc *larder.Service
		show := func() {
			report, ok, err := svc.ComputeNote(ctx, id)
			switch {
			case errors.Is(err, core.ErrNotFound):
				fmt.Println("(note removed)")
			case err != nil:
				slog.Warn("failed to total note", "id", id, "error", err)
			case !ok:
				fmt.Println("(no data)")
			default:
				fmt.Println(format.Text(report.Summary))
			}
		}

		svc = openService(larder.WithOnApply(func(e core.Event) {
			slog.Debug("vault changed", "event", e.String())
			if e.ID == id || svc.Settings().MatchesNutrient(e.ID) {
				show()
			}
		}))
		defer svc.Close()

		show()
		if err := svc.Run(ctx); err != nil {
			fatal("Error watching vault", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
