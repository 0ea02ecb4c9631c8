/*
Copyright © 2025 Your Name

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/recoengine/internal/config"
	"github.com/rcliao/recoengine/internal/embedding"
	"github.com/rcliao/recoengine/internal/learning"
	"github.com/rcliao/recoengine/internal/logger"
	"github.com/rcliao/recoengine/internal/optimize"
	"github.com/rcliao/recoengine/internal/patterns"
	"github.com/rcliao/recoengine/internal/recommend"
	"github.com/rcliao/recoengine/internal/reflexion"
	"github.com/rcliao/recoengine/internal/store"
)

// exit codes, per spec §6: 0 success, 1 usage error, 2 runtime failure.
const (
	exitOK        = 0
	exitUsage     = 1
	exitRuntime   = 2
	connectTimeout = 10 * time.Second
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "recoengine",
	Short: "recoengine is the CLI surface over the self-learning recommendation engine.",
	Long: `recoengine drives the Recommendation Engine, Learning Engine, and
Optimization Cycle from the command line: search and ingest catalog content,
pull recommendations, record feedback indirectly through the HTTP API, and
run or inspect the background optimization cycle.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./recoengine.yaml)")
}

// appDeps bundles the collaborators every data-touching command needs.
// Built fresh per command invocation; closed by the caller when done.
type appDeps struct {
	cfg      *config.Config
	store    *store.Store
	embedder embedding.Embedder
	patterns *patterns.Registry
	rec      *recommend.Engine
	learn    *learning.Engine
	cycle    *optimize.Cycle
	reflex   *reflexion.Memory
}

func (d *appDeps) Close() {
	if d.store != nil {
		_ = d.store.Close()
	}
}

// buildDeps loads configuration, opens the store, and wires every engine a
// CLI command might need. Embedding-model credentials come from the
// GEMINI_API_KEY environment variable, per spec §6; a command that needs
// embeddings fails at construction time rather than degrading silently.
func buildDeps(ctx context.Context) (*appDeps, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	opts := store.DefaultOptions()
	opts.MaxOpenConns = cfg.Database.MaxOpenConns
	opts.MaxIdleConns = cfg.Database.MaxIdleConns
	opts.ConnMaxLifetime = cfg.Database.ConnMaxLifetime

	st, err := store.Open(cfg.Database.URL, opts)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		st.Close()
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	gemini, err := embedding.NewGeminiEmbedder(ctx, apiKey, cfg.Embedding.Model)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("construct embedder: %w", err)
	}
	embedder := embedding.NewCachedEmbedder(gemini, time.Hour, 1000)

	reg := patterns.New(st, embedder)
	recEngine := recommend.New(st, reg, cfg.Rec.DiversityFactor)
	learnEngine := learning.NewEngine(st, reg)
	if err := learnEngine.Bootstrap(ctx); err != nil {
		logger.Warn("learning engine bootstrap failed, starting cold", "error", err)
	}
	cycle := optimize.New(st, embedder, learnEngine.Selector())
	reflex := reflexion.New(st, embedder)

	return &appDeps{
		cfg:      cfg,
		store:    st,
		embedder: embedder,
		patterns: reg,
		rec:      recEngine,
		learn:    learnEngine,
		cycle:    cycle,
		reflex:   reflex,
	}, nil
}

// runWithDeps builds dependencies, runs fn, always closes the store, and
// translates fn's error into the process exit code: usage errors (bad
// flags/args, caught before fn even runs) exit 1, everything fn itself
// reports exits 2, matching spec §6's three-way exit code contract.
func runWithDeps(fn func(ctx context.Context, deps *appDeps) error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	deps, err := buildDeps(ctx)
	if err != nil {
		logger.Error("failed to initialize", err)
		os.Exit(exitRuntime)
	}
	defer deps.Close()

	if err := fn(context.Background(), deps); err != nil {
		logger.Error("command failed", err)
		os.Exit(exitRuntime)
	}
}
