package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rcliao/recoengine/internal/core"
	"github.com/rcliao/recoengine/internal/recommend"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <userId> [limit]",
	Short: "Run the Recommendation Engine for a user and print the ranked list",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		userID := args[0]
		limit := recommend.DefaultLimit
		if len(args) == 2 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				fmt.Fprintf(os.Stderr, "invalid limit %q: %v\n", args[1], err)
				os.Exit(exitUsage)
			}
			limit = n
		}

		runWithDeps(func(ctx context.Context, deps *appDeps) error {
			pref, err := deps.store.GetUserPreference(ctx, userID)
			if err != nil {
				if !isNotFoundErr(err) {
					return fmt.Errorf("load user preference: %w", err)
				}
				pref = &core.UserPreference{UserID: userID}
			}

			content, err := deps.store.ListCandidatePool(ctx, defaultCLIPoolSize)
			if err != nil {
				return fmt.Errorf("list candidate pool: %w", err)
			}
			pool := make([]recommend.Candidate, len(content))
			for i, item := range content {
				pool[i] = candidateFromContent(item)
			}

			resp, err := deps.rec.GetRecommendations(ctx, recommend.Request{UserID: userID, Limit: limit}, *pref, pool)
			if err != nil {
				return fmt.Errorf("get recommendations: %w", err)
			}
			if len(resp.Results) == 0 {
				fmt.Println("no recommendations")
				return nil
			}
			fmt.Printf("taskType=%s\n", resp.TaskType)
			for _, r := range resp.Results {
				fmt.Printf("%2d. %-12s score=%.4f %s\n", r.Position, r.ContentID, r.Score, r.Reason)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)
}

const defaultCLIPoolSize = 500

// candidateFromContent mirrors internal/httpapi's candidateFrom; the CLI and
// the HTTP API both need to turn a stored core.Content into a
// recommend.Candidate, but the CLI has no gin.Context to share it through.
func candidateFromContent(c core.Content) recommend.Candidate {
	return recommend.Candidate{
		ContentID: c.ID,
		Kind:      c.Kind,
		Title:     c.Title,
		Overview:  c.Overview,
		Genres:    c.Genres,
		Rating:    c.Rating,
		Network:   c.NetworkName,
		Embedding: c.Embedding,
	}
}

func isNotFoundErr(err error) bool {
	var nf *core.NotFoundError
	return errors.As(err, &nf)
}
