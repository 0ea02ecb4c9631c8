package learning

import (
	"math"
	"math/rand"
	"sync"

	"github.com/rcliao/recoengine/internal/core"
)

const (
	replayCapacity  = 10000
	replayAlpha     = 0.6
	replayEpsilon   = 0.01
	replayBatchSize = 32
	betaInitial     = 0.4
	betaIncrement   = 0.001
)

// replayItem is one buffered experience with its sampling priority.
type replayItem struct {
	exp      core.ReplayExperience
	priority float64
}

// ReplayBuffer is a bounded, FIFO-eviction prioritized experience replay
// buffer (spec §4.5 "Prioritized experience replay").
type ReplayBuffer struct {
	mu       sync.Mutex
	items    []replayItem
	capacity int
	beta     float64
}

func NewReplayBuffer() *ReplayBuffer {
	return &ReplayBuffer{capacity: replayCapacity, beta: betaInitial}
}

// Insert appends an experience, computing its initial priority from the TD
// error, and evicts the oldest entry once at capacity.
func (b *ReplayBuffer) Insert(exp core.ReplayExperience, tdError float64) {
	priority := math.Pow(math.Abs(tdError)+replayEpsilon, replayAlpha)
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.items) >= b.capacity {
		b.items = b.items[1:]
	}
	b.items = append(b.items, replayItem{exp: exp, priority: priority})
}

// Len reports the current buffer size.
func (b *ReplayBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Sample draws replayBatchSize experiences proportional to priority and
// returns their importance-sampling weights (normalized by the batch max)
// alongside the buffer indices sampled, so the caller can re-score
// priorities from the post-replay TD error via UpdatePriority.
func (b *ReplayBuffer) Sample() ([]core.ReplayExperience, []float64, []int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.items)
	if n == 0 {
		return nil, nil, nil
	}
	batchSize := replayBatchSize
	if batchSize > n {
		batchSize = n
	}

	total := 0.0
	for _, it := range b.items {
		total += it.priority
	}

	indices := make([]int, batchSize)
	for i := 0; i < batchSize; i++ {
		indices[i] = weightedPick(b.items, total)
	}

	weights := make([]float64, batchSize)
	maxW := 0.0
	for i, idx := range indices {
		p := b.items[idx].priority / total
		w := math.Pow(float64(n)*p, -b.beta)
		weights[i] = w
		if w > maxW {
			maxW = w
		}
	}
	if maxW > 0 {
		for i := range weights {
			weights[i] /= maxW
		}
	}

	out := make([]core.ReplayExperience, batchSize)
	for i, idx := range indices {
		out[i] = b.items[idx].exp
	}

	b.beta = math.Min(1, b.beta+betaIncrement)
	return out, weights, indices
}

// UpdatePriority re-scores a buffered item's priority from a fresh TD error,
// per spec §4.5 "after update, re-score priorities using the new TD error".
// idx is a buffer index as returned by Sample; stale indices (evicted since
// sampling) are ignored rather than treated as an error, since eviction is
// expected to race with a long-running replay batch under concurrent Insert.
func (b *ReplayBuffer) UpdatePriority(idx int, tdError float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if idx < 0 || idx >= len(b.items) {
		return
	}
	b.items[idx].priority = math.Pow(math.Abs(tdError)+replayEpsilon, replayAlpha)
}

func weightedPick(items []replayItem, total float64) int {
	if total <= 0 {
		return rand.Intn(len(items))
	}
	r := rand.Float64() * total
	acc := 0.0
	for i, it := range items {
		acc += it.priority
		if r <= acc {
			return i
		}
	}
	return len(items) - 1
}

// Tail returns the most recent n experiences, for the "tail of the replay
// buffer (last 100)" persistence described in spec §4.5 step 5.
func (b *ReplayBuffer) Tail(n int) []core.ReplayExperience {
	b.mu.Lock()
	defer b.mu.Unlock()
	start := len(b.items) - n
	if start < 0 {
		start = 0
	}
	out := make([]core.ReplayExperience, len(b.items)-start)
	for i, it := range b.items[start:] {
		out[i] = it.exp
	}
	return out
}
