// Package reflexion implements the self-critique episode memory described
// in spec §4.7: appending episodes with a derived embedding, retrieving the
// k nearest past attempts for a task (post-filtered by caller predicates),
// pruning with a per-task retention floor, and an optional skills catalog
// the Optimization Cycle may consult as side information.
package reflexion

import (
	"context"
	"time"

	"github.com/rcliao/recoengine/internal/core"
	"github.com/rcliao/recoengine/internal/embedding"
	"github.com/rcliao/recoengine/internal/store"
)

// Store is the subset of *store.Store this package depends on, narrowed to
// an interface so it can be faked in tests without a database.
type Store interface {
	StoreEpisode(ctx context.Context, ep core.ReflexionEpisode) (int64, error)
	RetrieveRelevant(ctx context.Context, task string, embedding []float32, k int) ([]store.VectorMatch, error)
	GetEpisode(ctx context.Context, id int64) (*core.ReflexionEpisode, error)
	PruneEpisodes(ctx context.Context, ttl time.Duration, keepMinPerTask int) (int64, error)
	UpsertSkill(ctx context.Context, sk core.Skill) error
	ListSkills(ctx context.Context) ([]core.Skill, error)
}

// Memory is the reflexion episode store's orchestration layer.
type Memory struct {
	store    Store
	embedder embedding.Embedder
}

func New(st Store, emb embedding.Embedder) *Memory {
	return &Memory{store: st, embedder: emb}
}

// StoreEpisodeInput is the caller-supplied shape for recording an episode,
// per spec §4.7.
type StoreEpisodeInput struct {
	SessionID string
	Task      string
	Action    string
	Reward    float64
	Success   bool
	Critique  string
	Learnings []string
}

// StoreEpisode derives the episode's embedding from
// "task + action + (success ? ok : fail)" and appends it.
func (m *Memory) StoreEpisode(ctx context.Context, in StoreEpisodeInput) (int64, error) {
	outcome := "fail"
	if in.Success {
		outcome = "ok"
	}
	sentence := in.Task + " " + in.Action + " " + outcome

	vec, err := m.embedder.Embed(ctx, sentence)
	if err != nil {
		return 0, embedding.EmbeddingError("reflexion_episode", err)
	}

	ep := core.ReflexionEpisode{
		SessionID: in.SessionID,
		Task:      in.Task,
		Action:    in.Action,
		Reward:    in.Reward,
		Success:   in.Success,
		Critique:  in.Critique,
		Learnings: in.Learnings,
		Embedding: embedding.Normalize(vec),
	}
	return m.store.StoreEpisode(ctx, ep)
}

// RetrieveQuery narrows RetrieveRelevant's k-nearest-neighbor results by the
// optional predicates spec §4.7 names.
type RetrieveQuery struct {
	Task      string
	K         int
	OnlySuccess bool
	MinReward *float64
	MaxReward *float64
	SessionID string
}

// RetrieveRelevant finds the k nearest episodes for query.Task by embedding
// similarity, then applies every supplied predicate as a post-filter.
func (m *Memory) RetrieveRelevant(ctx context.Context, query RetrieveQuery) ([]core.ReflexionEpisode, error) {
	vec, err := m.embedder.Embed(ctx, query.Task)
	if err != nil {
		return nil, embedding.EmbeddingError("reflexion_retrieve", err)
	}

	k := query.K
	if k <= 0 {
		k = 5
	}
	// Over-fetch since post-filtering may drop matches; the store layer
	// does not know about the predicates below.
	matches, err := m.store.RetrieveRelevant(ctx, query.Task, vec, k*3)
	if err != nil {
		return nil, err
	}

	var out []core.ReflexionEpisode
	for _, match := range matches {
		id, err := parseEpisodeID(match.ID)
		if err != nil {
			continue
		}
		ep, err := m.store.GetEpisode(ctx, id)
		if err != nil {
			continue
		}
		if !passesFilters(*ep, query) {
			continue
		}
		out = append(out, *ep)
		if len(out) >= k {
			break
		}
	}
	return out, nil
}

func passesFilters(ep core.ReflexionEpisode, query RetrieveQuery) bool {
	if query.OnlySuccess && !ep.Success {
		return false
	}
	if query.MinReward != nil && ep.Reward < *query.MinReward {
		return false
	}
	if query.MaxReward != nil && ep.Reward > *query.MaxReward {
		return false
	}
	if query.SessionID != "" && ep.SessionID != query.SessionID {
		return false
	}
	return true
}

// PruneOptions configures PruneEpisodes, per spec §4.7's pruning policy.
type PruneOptions struct {
	MaxAge         time.Duration
	KeepMinPerTask int
}

// PruneEpisodes deletes episodes older than MaxAge, preserving at least
// KeepMinPerTask of the most recent rows per distinct task.
func (m *Memory) PruneEpisodes(ctx context.Context, opts PruneOptions) (int64, error) {
	keepMin := opts.KeepMinPerTask
	if keepMin < 0 {
		keepMin = 0
	}
	return m.store.PruneEpisodes(ctx, opts.MaxAge, keepMin)
}

// UpsertSkill records or refreshes a distilled skill.
func (m *Memory) UpsertSkill(ctx context.Context, sk core.Skill) error {
	return m.store.UpsertSkill(ctx, sk)
}

// ListSkills returns every distilled skill, newest first.
func (m *Memory) ListSkills(ctx context.Context) ([]core.Skill, error) {
	return m.store.ListSkills(ctx)
}
