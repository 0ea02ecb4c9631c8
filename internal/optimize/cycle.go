package optimize

import (
	"context"
	"time"

	"github.com/rcliao/recoengine/internal/core"
	"github.com/rcliao/recoengine/internal/embedding"
	"github.com/rcliao/recoengine/internal/learning"
	"github.com/rcliao/recoengine/internal/logger"
	"github.com/rcliao/recoengine/internal/metrics"
	"github.com/rcliao/recoengine/internal/store"
)

// advisoryLockName is the key the cycle's singleton guard is taken under,
// per spec §4.6 "Scheduling model".
const advisoryLockName = "optimization_cycle"

// clusterSampleSize bounds the content sample cluster discovery runs over.
// The spec caps the pair count at 500, not the sample itself; this keeps
// the O(n^2) pair scan affordable ahead of that cap.
const clusterSampleSize = 400

// qualitySampleSize is the fixed 100-row sample for quality measurement,
// per spec §4.6 step 7.
const qualitySampleSize = 100

// Result summarizes one completed cycle, the metrics spec §4.6 names.
type Result struct {
	TotalOptimized      int
	ClustersIdentified  int
	PatternsUpdated     int
	QualityScore        float64
	QualityImprovement  float64
	BestStrategy        string
	ExplorationRate     float64
}

// Cycle runs the Optimization Cycle: cluster discovery, pattern synthesis,
// reward aggregation, embedding drift, exploration decay, quality
// measurement, and state persistence (spec §4.6).
type Cycle struct {
	store    *store.Store
	embedder embedding.Embedder
	selector *learning.EpsilonGreedySelector

	lastQuality float64
}

func New(st *store.Store, emb embedding.Embedder, selector *learning.EpsilonGreedySelector) *Cycle {
	return &Cycle{store: st, embedder: emb, selector: selector}
}

// Run executes one full cycle under the database advisory lock. If the
// lock is already held by another process, Run returns immediately with a
// nil error and a zero Result: this is the expected outcome when a replica
// loses the race, not a failure.
func (c *Cycle) Run(ctx context.Context) (*Result, error) {
	release, acquired, err := c.store.AdvisoryLock(ctx, advisoryLockName)
	if err != nil {
		return nil, &core.OptimizationError{Step: "acquire_lock", Err: err}
	}
	if !acquired {
		logger.Info("optimization cycle skipped: lock held by another process")
		return &Result{}, nil
	}
	defer release()

	started := time.Now()
	defer func() {
		metrics.OptimizationCycleDuration.Observe(time.Since(started).Seconds())
	}()

	// Step 1: enable learning on the content table is a no-op hint in this
	// implementation; the store never restricts embedding mutation to a
	// flagged subset, so there is nothing to toggle.

	// Step 2: cluster discovery.
	sample, err := c.store.SampleContentEmbeddings(ctx, clusterSampleSize)
	if err != nil {
		return nil, &core.OptimizationError{Step: "cluster_discovery", Err: err}
	}
	clusters := discoverClusters(sample)

	// Step 3: pattern synthesis.
	patternsWritten, err := synthesizePatterns(ctx, c.store, c.embedder, clusters)
	if err != nil {
		return nil, &core.OptimizationError{Step: "pattern_synthesis", Err: err}
	}

	// Step 4: reward aggregation.
	bestGenre, perGenre, err := aggregateRewardByGenre(ctx, c.store)
	if err != nil {
		return nil, &core.OptimizationError{Step: "reward_aggregation", Err: err}
	}
	bestStrategy := ""
	var totalReward float64
	if bestGenre != "" {
		bestStrategy = "genre_" + bestGenre
		totalReward = perGenre[bestGenre].sum
	}

	// Step 5: embedding drift, atomic.
	if err := applyEmbeddingDrift(ctx, c.store, sample, bestGenre); err != nil {
		return nil, &core.OptimizationError{Step: "embedding_drift", Err: err}
	}

	// Step 6: exploration decay, per-cycle rate (spec §4.6 step 6), distinct
	// from the per-feedback rate the Learning Engine applies on its own.
	if c.selector != nil {
		c.selector.DecayEpsilonForCycle()
	}
	var explorationRate float64
	if c.selector != nil {
		explorationRate = c.selector.Epsilon()
	}

	// Step 7: quality measurement.
	qualitySample, err := c.store.SampleContentEmbeddings(ctx, qualitySampleSize)
	if err != nil {
		return nil, &core.OptimizationError{Step: "quality_measurement", Err: err}
	}
	quality := measureQuality(qualitySample)
	improvement := quality - c.lastQuality
	c.lastQuality = quality

	// Step 8: state persistence.
	status := core.SyncStatus{
		SyncType:        "learning_state",
		TotalReward:     totalReward,
		ExplorationRate: explorationRate,
		BestStrategy:    bestStrategy,
		QualityScore:    quality,
		CompletedAt:     time.Now(),
	}
	if err := c.store.WriteSyncStatus(ctx, status); err != nil {
		return nil, &core.OptimizationError{Step: "state_persistence", Err: err}
	}

	result := &Result{
		TotalOptimized:     len(sample),
		ClustersIdentified: len(clusters),
		PatternsUpdated:    patternsWritten,
		QualityScore:       quality,
		QualityImprovement: improvement,
		BestStrategy:       bestStrategy,
		ExplorationRate:    explorationRate,
	}
	logger.Info("optimization cycle completed",
		"clusters", result.ClustersIdentified,
		"patternsUpdated", result.PatternsUpdated,
		"qualityScore", result.QualityScore,
		"bestStrategy", result.BestStrategy,
	)
	return result, nil
}
