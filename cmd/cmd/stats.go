package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statsTaskType string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the learned pattern table and the most recent optimization cycle outcome",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runWithDeps(func(ctx context.Context, deps *appDeps) error {
			patterns, err := deps.store.ListPatterns(ctx, statsTaskType)
			if err != nil {
				return fmt.Errorf("list patterns: %w", err)
			}
			fmt.Printf("%d patterns\n", len(patterns))
			for _, p := range patterns {
				fmt.Printf("  #%-4d %-16s %-20s uses=%-6d successRate=%.3f avgReward=%.3f\n",
					p.ID, p.TaskType, p.Approach, p.TotalUses, p.SuccessRate, p.AvgReward)
			}

			status, err := deps.store.LatestSyncStatus(ctx, "learning_state")
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("load sync status: %w", err)
			}
			if status == nil {
				fmt.Println("no optimization cycle has completed yet")
				return nil
			}
			fmt.Printf("last cycle: episode=%d totalReward=%.3f explorationRate=%.4f bestStrategy=%s qualityScore=%.4f completedAt=%s\n",
				status.Episode, status.TotalReward, status.ExplorationRate, status.BestStrategy, status.QualityScore, status.CompletedAt.Format("2006-01-02T15:04:05Z07:00"))
			return nil
		})
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsTaskType, "task-type", "", "filter patterns to this task type")
	rootCmd.AddCommand(statsCmd)
}
