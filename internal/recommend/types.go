// Package recommend implements the Recommendation Engine: context
// resolution, pattern selection, per-strategy candidate scoring, greedy
// diversification, audience-safety filtering, and position assignment.
package recommend

import (
	"time"

	"github.com/rcliao/recoengine/internal/core"
)

// ContentType is the request-level content filter, a superset of
// core.ContentKind that also allows "all".
type ContentType string

const (
	ContentTypeSeries ContentType = "series"
	ContentTypeMovie  ContentType = "movie"
	ContentTypeAll    ContentType = "all"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Request is the single public input to GetRecommendations.
type Request struct {
	UserID         string
	ContentType    ContentType
	Limit          int
	ExcludeWatched bool
	Genres         []string
	TimeOfDay      core.TimeOfDay // empty -> resolved from local clock
	DayOfWeek      string         // empty -> resolved from local clock
	Platform       core.Platform  // empty -> core.PlatformWeb
	Audience       core.Audience
}

// Candidate is one item in the pool passed to GetRecommendations, carrying
// enough of core.Content to score and filter against.
type Candidate struct {
	ContentID   string
	Kind        core.ContentKind
	Title       string
	Overview    string
	Genres      []string
	Rating      *float64
	Network     string
	Embedding   []float32
}

// Result is one ranked, positioned recommendation.
type Result struct {
	ContentID string
	Position  int
	Score     float64
	Reason    string
}

// Response is the full output of GetRecommendations, always a (possibly
// empty) array plus a correlation handle for later feedback (spec §4.4
// step 7, §7 "recommendation responses always return an array").
type Response struct {
	Results          []Result
	PatternID        *int64
	TaskType         core.TaskType
	GeneratedAt      time.Time
	SafetyViolation  bool
}
