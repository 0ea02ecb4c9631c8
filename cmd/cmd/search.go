package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search stored catalog content by title and overview",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		query := args[0]
		runWithDeps(func(ctx context.Context, deps *appDeps) error {
			results, err := deps.store.SearchContentText(ctx, query, searchLimit)
			if err != nil {
				return fmt.Errorf("search content: %w", err)
			}
			if len(results) == 0 {
				fmt.Println("no matches")
				return nil
			}
			for _, c := range results {
				fmt.Printf("%-12s %-6s %-40s %v\n", c.ID, c.Kind, c.Title, c.Genres)
			}
			return nil
		})
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "maximum results to return")
	rootCmd.AddCommand(searchCmd)
}
