package reflexion

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/rcliao/recoengine/internal/core"
	"github.com/rcliao/recoengine/internal/store"
)

type fakeStore struct {
	episodes   map[int64]core.ReflexionEpisode
	nextID     int64
	searchHits []store.VectorMatch
	pruned     int64
	skills     []core.Skill
}

func newFakeStore() *fakeStore {
	return &fakeStore{episodes: make(map[int64]core.ReflexionEpisode)}
}

func (f *fakeStore) StoreEpisode(ctx context.Context, ep core.ReflexionEpisode) (int64, error) {
	f.nextID++
	ep.ID = f.nextID
	f.episodes[f.nextID] = ep
	return f.nextID, nil
}

func (f *fakeStore) RetrieveRelevant(ctx context.Context, task string, embedding []float32, k int) ([]store.VectorMatch, error) {
	return f.searchHits, nil
}

func (f *fakeStore) GetEpisode(ctx context.Context, id int64) (*core.ReflexionEpisode, error) {
	ep, ok := f.episodes[id]
	if !ok {
		return nil, &core.NotFoundError{Entity: "reflexion_episode", ID: strconv.FormatInt(id, 10)}
	}
	return &ep, nil
}

func (f *fakeStore) PruneEpisodes(ctx context.Context, ttl time.Duration, keepMinPerTask int) (int64, error) {
	return f.pruned, nil
}

func (f *fakeStore) UpsertSkill(ctx context.Context, sk core.Skill) error {
	f.skills = append(f.skills, sk)
	return nil
}

func (f *fakeStore) ListSkills(ctx context.Context) ([]core.Skill, error) {
	return f.skills, nil
}

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func TestStoreEpisodeDerivesSentenceAndNormalizes(t *testing.T) {
	fs := newFakeStore()
	m := New(fs, fakeEmbedder{})
	id, err := m.StoreEpisode(context.Background(), StoreEpisodeInput{
		SessionID: "s1", Task: "recommend", Action: "cold_start", Success: true, Reward: 0.8,
	})
	if err != nil {
		t.Fatalf("StoreEpisode() error = %v", err)
	}
	ep := fs.episodes[id]
	if ep.Task != "recommend" || ep.Action != "cold_start" {
		t.Fatalf("episode fields not preserved: %+v", ep)
	}
}

func TestRetrieveRelevantFiltersBySuccess(t *testing.T) {
	fs := newFakeStore()
	fs.episodes[1] = core.ReflexionEpisode{ID: 1, Task: "recommend", Success: true, Reward: 0.5}
	fs.episodes[2] = core.ReflexionEpisode{ID: 2, Task: "recommend", Success: false, Reward: -0.2}
	fs.searchHits = []store.VectorMatch{{ID: "1", Similarity: 0.9}, {ID: "2", Similarity: 0.8}}

	m := New(fs, fakeEmbedder{})
	out, err := m.RetrieveRelevant(context.Background(), RetrieveQuery{Task: "recommend", K: 5, OnlySuccess: true})
	if err != nil {
		t.Fatalf("RetrieveRelevant() error = %v", err)
	}
	if len(out) != 1 || out[0].ID != 1 {
		t.Fatalf("expected only episode 1 to survive the OnlySuccess filter, got %+v", out)
	}
}

func TestRetrieveRelevantRespectsMinReward(t *testing.T) {
	fs := newFakeStore()
	fs.episodes[1] = core.ReflexionEpisode{ID: 1, Task: "recommend", Reward: 0.1}
	fs.episodes[2] = core.ReflexionEpisode{ID: 2, Task: "recommend", Reward: 0.9}
	fs.searchHits = []store.VectorMatch{{ID: "1"}, {ID: "2"}}

	min := 0.5
	m := New(fs, fakeEmbedder{})
	out, err := m.RetrieveRelevant(context.Background(), RetrieveQuery{Task: "recommend", K: 5, MinReward: &min})
	if err != nil {
		t.Fatalf("RetrieveRelevant() error = %v", err)
	}
	if len(out) != 1 || out[0].ID != 2 {
		t.Fatalf("expected only episode 2 to clear MinReward, got %+v", out)
	}
}

func TestPruneEpisodesPassesThrough(t *testing.T) {
	fs := newFakeStore()
	fs.pruned = 7
	m := New(fs, fakeEmbedder{})
	n, err := m.PruneEpisodes(context.Background(), PruneOptions{MaxAge: 30 * 24 * time.Hour, KeepMinPerTask: 5})
	if err != nil {
		t.Fatalf("PruneEpisodes() error = %v", err)
	}
	if n != 7 {
		t.Fatalf("PruneEpisodes() = %d, want 7", n)
	}
}
