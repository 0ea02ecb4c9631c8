package learning

import (
	"context"
	"sync"
	"time"

	"github.com/rcliao/recoengine/internal/core"
	"github.com/rcliao/recoengine/internal/logger"
	"github.com/rcliao/recoengine/internal/patterns"
	"github.com/rcliao/recoengine/internal/store"
)

// persistEvery is the episode cadence at which the Q-table snapshot and the
// replay tail are flushed to the store (spec §4.5 step 5). Pattern stats are
// not part of this flush: RecordFeedback writes them on every feedback that
// carries a PatternID.
const persistEvery = 50

// Feedback is the raw input to RecordFeedback, gathered by the caller (the
// HTTP API's POST /feedback handler) before any reward mapping happens.
type Feedback struct {
	UserID            string
	ContentID         string
	PatternID         *int64
	Action            core.UserAction
	CompletionPercent float64
	Rating            float64
	Position          int
	Context           FeedbackContext
	Features          []float64 // optional 10-dim LinUCB context vector
	NextState         string    // optional; defaults to the current state when empty
}

// Engine is the Learning Engine: it turns raw feedback into reward-bearing
// transitions, updates the Q-table and bandit ensemble, buffers experiences
// for prioritized replay, and periodically flushes learned state to the
// store (spec §4.5).
type Engine struct {
	mu       sync.Mutex
	store    *store.Store
	patterns *patterns.Registry
	q        *QTable
	ensemble *Ensemble
	replay   *ReplayBuffer
	episodes int64
}

func NewEngine(st *store.Store, reg *patterns.Registry) *Engine {
	q := NewQTable()
	return &Engine{
		store:    st,
		patterns: reg,
		q:        q,
		ensemble: NewEnsemble(q),
		replay:   NewReplayBuffer(),
	}
}

// Bootstrap loads persisted Q-table entries and the replay tail, for warm
// restart after a process restart.
func (e *Engine) Bootstrap(ctx context.Context) error {
	entries, err := e.store.LoadQTable(ctx)
	if err != nil {
		return err
	}
	for _, en := range entries {
		e.q.Load(en.State, en.Action, en.Value, en.Updates)
	}

	experiences, err := e.store.LoadReplayBuffer(ctx, 100)
	if err != nil {
		return err
	}
	for _, ex := range experiences {
		e.replay.Insert(ex, 0)
	}
	return nil
}

// SelectAction runs the ensemble vote for the given context, recording a
// visit against the resulting state.
func (e *Engine) SelectAction(fc FeedbackContext) string {
	state := StateFor(fc)
	e.q.RecordVisit(state)
	return e.ensemble.Select(state, fc.Features)
}

// QSnapshot exposes the current Q-table for read-only inspection (the `tui`
// command's bandit-state view; spec §13's "pattern/Q-table live browser").
func (e *Engine) QSnapshot() []Entry {
	return e.q.Snapshot()
}

// Epsilon returns the ε-greedy selector's current exploration rate.
func (e *Engine) Epsilon() float64 {
	return e.ensemble.EpsilonGreedy.Epsilon()
}

// Selector exposes the ε-greedy selector so the Optimization Cycle can
// decay it directly (spec §4.6 step 6), without the cycle needing its own
// copy of the Learning Engine's exploration state.
func (e *Engine) Selector() *EpsilonGreedySelector {
	return e.ensemble.EpsilonGreedy
}

// RecordFeedback ingests one user interaction end to end, per spec §4.5
// steps 1-5: map to reward, build the transition, update every learner,
// buffer it for replay, replay a batch if one is due, and periodically
// persist.
func (e *Engine) RecordFeedback(ctx context.Context, action string, fb Feedback) error {
	reward := RewardForAction(fb.Action, fb.CompletionPercent, fb.Rating)
	state := StateFor(fb.Context)
	nextState := fb.NextState
	if nextState == "" {
		nextState = state
	}
	done := fb.NextState == ""

	e.q.Update(state, action, reward, nextState, done, Actions)

	e.ensemble.Thompson.Update(action, reward)
	e.ensemble.UCB1.Update(action, reward)
	e.ensemble.EpsilonGreedy.DecayEpsilon()
	if len(fb.Features) == linUCBDim {
		e.ensemble.LinUCB.Update(action, fb.Features, reward)
	}

	tdError := reward - e.q.Mean(state, action)
	experience := core.ReplayExperience{
		State:     state,
		Action:    action,
		Reward:    reward,
		NextState: nextState,
		Done:      done,
		Context: core.ReplayContext{
			UserID:    fb.UserID,
			ContentID: fb.ContentID,
			Timestamp: 0,
			Genres:    fb.Context.Genres,
		},
		Priority: tdError,
	}
	e.replay.Insert(experience, tdError)

	if e.replay.Len() >= replayBatchSize {
		e.replayBatch(ctx)
	}

	if fb.PatternID != nil {
		success := reward > 0
		if err := e.patterns.RecordOutcome(ctx, *fb.PatternID, success, reward); err != nil {
			logger.Warn("pattern outcome update failed", "patternId", *fb.PatternID, "error", err)
		}
	}

	e.mu.Lock()
	e.episodes++
	due := e.episodes%persistEvery == 0
	e.mu.Unlock()

	if due {
		e.persist(ctx)
	}
	return nil
}

// replayBatch draws a prioritized batch, replays Double-Q updates scaled by
// importance-sampling weight, and re-scores each sampled item's priority
// from the TD error the update produced, per spec §4.5 step 5.
func (e *Engine) replayBatch(ctx context.Context) {
	batch, weights, indices := e.replay.Sample()
	for i, exp := range batch {
		scaledReward := exp.Reward * weights[i]
		e.q.Update(exp.State, exp.Action, scaledReward, exp.NextState, exp.Done, Actions)

		tdError := exp.Reward - e.q.Mean(exp.State, exp.Action)
		e.replay.UpdatePriority(indices[i], tdError)
	}
}

// persist flushes the Q-table snapshot and the replay tail (last 100
// experiences) to the store.
func (e *Engine) persist(ctx context.Context) {
	now := time.Now()
	for _, entry := range e.q.Snapshot() {
		qe := core.QEntry{
			State:       entry.State,
			Action:      entry.Action,
			Value:       entry.Value,
			Updates:     entry.Updates,
			LastUpdated: now,
		}
		if err := e.store.PersistQEntry(ctx, qe); err != nil {
			logger.Warn("q-table persist failed", "state", entry.State, "action", entry.Action, "error", err)
		}
	}

	for _, exp := range e.replay.Tail(100) {
		if err := e.store.PersistReplay(ctx, exp); err != nil {
			logger.Warn("replay persist failed", "error", err)
		}
	}
}
