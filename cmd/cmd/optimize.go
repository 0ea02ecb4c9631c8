package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Run one optimization cycle synchronously and print the result",
	Long: `optimize runs the same eight-step cycle the scheduled cron job runs
(learning enablement, which is a no-op, cluster discovery, pattern synthesis, reward aggregation, embedding drift,
exploration decay, quality measurement, sync_status persistence), guarded by
the same Postgres advisory lock, so this is safe to invoke even while the
scheduler is running.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runWithDeps(func(ctx context.Context, deps *appDeps) error {
			result, err := deps.cycle.Run(ctx)
			if err != nil {
				return fmt.Errorf("run optimization cycle: %w", err)
			}
			fmt.Printf("optimized=%d clusters=%d patternsUpdated=%d quality=%.4f (%+.4f) bestStrategy=%s explorationRate=%.4f\n",
				result.TotalOptimized, result.ClustersIdentified, result.PatternsUpdated,
				result.QualityScore, result.QualityImprovement, result.BestStrategy, result.ExplorationRate)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(optimizeCmd)
}
