package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rcliao/recoengine/internal/store"
)

var similarCmd = &cobra.Command{
	Use:   "similar <contentId> [limit]",
	Short: "Find content embedding-similar to a given item via pgvector ANN search",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		contentID := args[0]
		limit := 10
		if len(args) == 2 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				fmt.Fprintf(os.Stderr, "invalid limit %q: %v\n", args[1], err)
				os.Exit(exitUsage)
			}
			limit = n
		}

		runWithDeps(func(ctx context.Context, deps *appDeps) error {
			content, err := deps.store.GetContent(ctx, contentID)
			if err != nil {
				return fmt.Errorf("load content %s: %w", contentID, err)
			}
			if len(content.Embedding) == 0 {
				return fmt.Errorf("content %s has no embedding yet; run ingest or wait for the optimization cycle", contentID)
			}

			matches, err := deps.store.VectorSearch(ctx, content.Embedding, store.VectorSearchOptions{
				Table:      "content",
				Column:     "embedding",
				IDColumn:   "id",
				K:          limit,
				ExcludeIDs: []string{contentID},
			})
			if err != nil {
				return fmt.Errorf("vector search: %w", err)
			}
			if len(matches) == 0 {
				fmt.Println("no similar content found")
				return nil
			}
			for i, m := range matches {
				fmt.Printf("%2d. %-12s similarity=%.4f\n", i+1, m.ID, m.Similarity)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(similarCmd)
}
