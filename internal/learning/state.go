// Package learning implements the Learning Engine: Double Q-learning over
// two Q-tables, an action-selection ensemble (ε-greedy+UCB bonus, Thompson
// sampling, UCB1, LinUCB), prioritized experience replay, and the feedback
// ingestion pipeline that ties them together.
package learning

import (
	"sort"
	"strings"

	"github.com/rcliao/recoengine/internal/core"
)

// Actions is the fixed action vocabulary every selector chooses from, per
// spec §4.5.
var Actions = []string{
	"content_based", "collaborative", "genre_weighted", "recency_boosted",
	"popularity_boosted", "diversity_enhanced", "mood_matched",
	"binge_optimized", "discovery_mode", "trending_focus",
}

// defaultMood and defaultContentType fill the state string's mood/type
// components when the caller has no opinion, so StateFor stays total.
const (
	defaultMood        = "neutral"
	defaultContentType = "all"

	// stateVersion prefixes every state string. Per spec §9 Design Notes,
	// the state summary is lossy by design and must never change shape
	// without a versioned prefix, so legacy entries are treated as a
	// separate action space until re-learned instead of silently aliasing
	// onto the new schema.
	stateVersion = "v2"
)

// FeedbackContext is the caller-supplied context a state string and, when
// available, a 10-dim LinUCB feature vector are derived from.
type FeedbackContext struct {
	UserSegment core.Segment
	TimeOfDay   core.TimeOfDay // request-time context; not part of the Q-table state
	Genres      []string       // candidate genres; the top 2, sorted, form the state's genre component
	Mood        string         // optional; defaults to "neutral" when empty
	ContentType string         // optional; defaults to "all" when empty
	Features    []float64      // optional, len==10 for LinUCB; nil if unavailable
}

// StateFor builds the QEntry state string from a feedback context, per
// spec §3's `"<sorted-top-2-genres>|mood:<m>|seg:<s>|type:<t>"` format.
func StateFor(c FeedbackContext) string {
	genres := topTwoGenres(c.Genres)

	mood := c.Mood
	if mood == "" {
		mood = defaultMood
	}
	contentType := c.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	return stateVersion + "|" + genres +
		"|mood:" + mood +
		"|seg:" + string(c.UserSegment) +
		"|type:" + contentType
}

// topTwoGenres returns up to the first two of genres, sorted alphabetically
// and comma-joined, so the state string is deterministic regardless of the
// caller's original ordering.
func topTwoGenres(genres []string) string {
	n := len(genres)
	if n > 2 {
		n = 2
	}
	top := append([]string(nil), genres[:n]...)
	sort.Strings(top)
	return strings.Join(top, ",")
}
