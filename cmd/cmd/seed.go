package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the pattern registry with the five starter strategies",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runWithDeps(func(ctx context.Context, deps *appDeps) error {
			if err := deps.patterns.SeedDefaults(ctx); err != nil {
				return fmt.Errorf("seed defaults: %w", err)
			}
			fmt.Println("seeded default patterns")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
