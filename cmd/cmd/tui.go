package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/recoengine/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive pattern/Q-table browser",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runWithDeps(func(ctx context.Context, deps *appDeps) error {
			if err := tui.StartTUI(deps.store, deps.learn); err != nil {
				return fmt.Errorf("tui: %w", err)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
