package recommend

import (
	"context"
	"errors"
	"time"

	"github.com/rcliao/recoengine/internal/core"
	"github.com/rcliao/recoengine/internal/logger"
	"github.com/rcliao/recoengine/internal/metrics"
	"github.com/rcliao/recoengine/internal/patterns"
	"github.com/rcliao/recoengine/internal/store"
)

// DefaultDeadline is the default recommendation request timeout, per spec §5.
const DefaultDeadline = 250 * time.Millisecond

// Engine is the Recommendation Engine: it resolves context, selects a
// pattern, dispatches to a strategy, diversifies, filters, and assembles a
// positioned response.
type Engine struct {
	store           *store.Store
	patterns        *patterns.Registry
	diversityFactor float64
}

func New(st *store.Store, reg *patterns.Registry, diversityFactor float64) *Engine {
	if diversityFactor <= 0 {
		diversityFactor = DefaultDiversityFactor
	}
	return &Engine{store: st, patterns: reg, diversityFactor: diversityFactor}
}

// GetRecommendations is the public operation described in spec §4.4.
func (e *Engine) GetRecommendations(ctx context.Context, req Request, pref core.UserPreference, pool []Candidate) (*Response, error) {
	started := time.Now()
	defer func() {
		metrics.RecommendationLatency.Observe(time.Since(started).Seconds())
	}()

	if req.Limit <= 0 {
		req.Limit = DefaultLimit
	}
	if req.Limit > MaxLimit {
		return nil, &core.InputError{Field: "limit", Reason: "exceeds max limit of 100"}
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultDeadline)
		defer cancel()
	}

	pool = filterAudience(pool, req.Audience)

	pc := resolveContext(req, pref, time.Now())
	segment := pc.UserSegment

	var patternID *int64
	var taskType core.TaskType
	strategy := coldStartStrategy

	if segment != core.SegmentNew {
		p, err := e.patterns.FindBest(ctx, pc, inferTaskType(req), summarizePreference(pref))
		switch {
		case err == nil && p != nil:
			id := p.ID
			patternID = &id
			taskType = p.TaskType
			strategy = strategyFor(p.TaskType)
		case isNotFound(err):
			taskType = core.TaskColdStart
		default:
			logger.Warn("pattern selection failed, falling back to cold start", "error", err)
			taskType = core.TaskColdStart
		}
	} else {
		taskType = core.TaskColdStart
	}

	deps := strategyDeps{store: e.store, candidates: pool, pref: pref, pc: pc, genres: req.Genres, limit: req.Limit}

	ranked, err := strategy(ctx, deps)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			ranked, err = coldStartStrategy(ctx, deps)
			taskType = core.TaskColdStart
			patternID = nil
		}
		if err != nil {
			var embErr *core.EmbeddingError
			if errors.As(err, &embErr) {
				ranked, err = coldStartStrategy(ctx, deps)
				taskType = core.TaskColdStart
				patternID = nil
			}
		}
		if err != nil {
			return nil, err
		}
	}

	diversified := diversify(ranked, e.diversityFactor)

	if req.ExcludeWatched {
		diversified = excludeWatched(diversified, pref)
	}

	limit := req.Limit
	if limit > len(diversified) {
		limit = len(diversified)
	}

	byID := make(map[string]Candidate, len(pool))
	for _, c := range pool {
		byID[c.ContentID] = c
	}

	results := make([]Result, limit)
	for i := 0; i < limit; i++ {
		results[i] = Result{
			ContentID: diversified[i].candidate.ContentID,
			Position:  i + 1,
			Score:     diversified[i].score,
			Reason:    diversified[i].reason,
		}
	}

	if violatesAudience(results, byID, req.Audience) {
		metrics.SafetyViolations.WithLabelValues(string(req.Audience)).Inc()
		logger.Error("safety violation detected at response assembly", "userId", req.UserID, "audience", string(req.Audience))
		return &Response{Results: nil, TaskType: taskType, GeneratedAt: time.Now(), SafetyViolation: true}, nil
	}

	metrics.RecommendationRequests.WithLabelValues(string(taskType)).Inc()

	return &Response{
		Results:     results,
		PatternID:   patternID,
		TaskType:    taskType,
		GeneratedAt: time.Now(),
	}, nil
}

func excludeWatched(cands []scoredCandidate, pref core.UserPreference) []scoredCandidate {
	out := make([]scoredCandidate, 0, len(cands))
	for _, c := range cands {
		if !pref.HasWatched(c.candidate.ContentID) {
			out = append(out, c)
		}
	}
	return out
}

func inferTaskType(req Request) core.TaskType {
	return "" // empty means "any task type" to the Pattern Registry
}

func summarizePreference(pref core.UserPreference) string {
	if pref.IsColdStart() {
		return "unknown"
	}
	return "established"
}

func isNotFound(err error) bool {
	var nf *core.NotFoundError
	return errors.As(err, &nf)
}
