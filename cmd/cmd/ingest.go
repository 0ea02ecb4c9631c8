package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rcliao/recoengine/internal/core"
	"github.com/rcliao/recoengine/internal/logger"
	"github.com/rcliao/recoengine/internal/metadatasource"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <query> [limit]",
	Short: "Search the external catalog and upsert results into the store",
	Long: `ingest delegates discovery to the external catalog API (spec §6):
it never runs inside the core's request path, only from this CLI verb. It
requires CATALOG_BASE_URL and CATALOG_API_KEY (CATALOG_PIN optional).`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		query := args[0]
		limit := 20
		if len(args) == 2 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				fmt.Fprintf(os.Stderr, "invalid limit %q: %v\n", args[1], err)
				os.Exit(exitUsage)
			}
			limit = n
		}

		runWithDeps(func(ctx context.Context, deps *appDeps) error {
			baseURL := os.Getenv("CATALOG_BASE_URL")
			apiKey := os.Getenv("CATALOG_API_KEY")
			if baseURL == "" || apiKey == "" {
				return fmt.Errorf("CATALOG_BASE_URL and CATALOG_API_KEY must be set")
			}
			client := metadatasource.NewHTTPClient(baseURL, apiKey, os.Getenv("CATALOG_PIN"))

			hits, err := client.Search(ctx, query)
			if err != nil {
				return fmt.Errorf("catalog search: %w", err)
			}
			if len(hits) > limit {
				hits = hits[:limit]
			}

			items := make([]core.Content, 0, len(hits))
			for _, raw := range hits {
				c := contentFromRaw(raw)
				vec, err := deps.embedder.Embed(ctx, c.Title+". "+c.Overview)
				if err != nil {
					logger.Warn("embedding failed for ingested item, storing without one", "contentId", c.ID, "error", err)
				} else {
					c.Embedding = vec
				}
				items = append(items, c)
			}
			if len(items) == 0 {
				fmt.Println("no catalog results")
				return nil
			}

			if err := deps.store.UpsertContent(ctx, items); err != nil {
				return fmt.Errorf("upsert content: %w", err)
			}
			fmt.Printf("ingested %d items\n", len(items))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

// contentFromRaw maps a catalog search hit into core.Content. The catalog's
// exact field names are ingestion's problem to know (spec §1 Non-goals); this
// reads the handful of shapes a TV/film catalog search result plausibly uses
// and leaves the rest at zero value rather than failing the whole batch over
// one odd record.
func contentFromRaw(raw metadatasource.Raw) core.Content {
	c := core.Content{
		ID:       rawString(raw, "id"),
		Title:    firstNonEmpty(rawString(raw, "name"), rawString(raw, "title")),
		Overview: rawString(raw, "overview"),
		Kind:     core.ContentSeries,
	}
	if _, isMovie := raw["release_date"]; isMovie {
		c.Kind = core.ContentMovie
	}
	if genres, ok := raw["genres"].([]interface{}); ok {
		for _, g := range genres {
			switch v := g.(type) {
			case string:
				c.Genres = append(c.Genres, v)
			case map[string]interface{}:
				if name, ok := v["name"].(string); ok {
					c.Genres = append(c.Genres, name)
				}
			}
		}
	}
	if rating, ok := raw["score"].(float64); ok {
		c.Rating = &rating
	}
	c.NetworkName = rawString(raw, "network")
	c.ImageURL = rawString(raw, "image")
	c.ThumbnailURL = rawString(raw, "thumbnail")
	return c
}

func rawString(raw metadatasource.Raw, key string) string {
	if v, ok := raw[key].(string); ok {
		return v
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
