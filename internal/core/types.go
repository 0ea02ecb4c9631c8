// Package core holds the domain types shared across the recommendation
// engine, the learning engine, and the optimization cycle.
package core

import "time"

// EmbeddingDim is the fixed width of every stored vector in the system.
const EmbeddingDim = 384

// ContentKind distinguishes a series from a movie.
type ContentKind string

const (
	ContentSeries ContentKind = "series"
	ContentMovie  ContentKind = "movie"
)

// Content is a single catalog entry (series or movie).
type Content struct {
	ID           string      `json:"id"`
	Kind         ContentKind `json:"kind"`
	Title        string      `json:"title"`
	Year         int         `json:"year,omitempty"`
	Overview     string      `json:"overview"`
	Genres       []string    `json:"genres"`
	Language     string      `json:"language,omitempty"`
	Country      string      `json:"country,omitempty"`
	Rating       *float64    `json:"rating,omitempty"`
	NetworkName  string      `json:"networkName,omitempty"`
	FirstAired   *time.Time  `json:"firstAired,omitempty"`
	ImageURL     string      `json:"imageUrl,omitempty"`
	ThumbnailURL string      `json:"thumbnailUrl,omitempty"`
	Embedding    []float32   `json:"embedding,omitempty"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// PrimaryGenre returns genres[0], or "" when genres is empty.
func (c Content) PrimaryGenre() string {
	if len(c.Genres) == 0 {
		return ""
	}
	return c.Genres[0]
}

// WatchEvent is one entry of a user's bounded watch history.
type WatchEvent struct {
	ContentID         string    `json:"contentId"`
	Timestamp         time.Time `json:"timestamp"`
	DurationSeconds   int       `json:"durationSeconds"`
	CompletionPercent float64   `json:"completionPercent"`
}

// MaxWatchHistory is the number of most-recent watch events retained per user.
const MaxWatchHistory = 100

// UserPreference is the one-per-user taste profile.
type UserPreference struct {
	UserID          string             `json:"userId"`
	PreferenceVec   []float32          `json:"preferenceVector"`
	GenreWeights    map[string]float64 `json:"genreWeights"`
	NetworkWeights  map[string]float64 `json:"networkWeights"`
	WatchHistory    []WatchEvent       `json:"watchHistory"` // most-recent-first, trimmed to MaxWatchHistory
	Ratings         map[string]float64 `json:"ratings"`      // contentId -> 0..10
	UpdatedAt       time.Time          `json:"updatedAt"`
}

// HasWatched reports whether contentID appears in the watch history.
func (p UserPreference) HasWatched(contentID string) bool {
	for _, w := range p.WatchHistory {
		if w.ContentID == contentID {
			return true
		}
	}
	return false
}

// IsColdStart reports whether the preference vector carries no signal yet.
func (p UserPreference) IsColdStart() bool {
	for _, v := range p.PreferenceVec {
		if v != 0 {
			return false
		}
	}
	return true
}

// Segment buckets a user by engagement depth, per spec §4.4 step 1.
type Segment string

const (
	SegmentNew     Segment = "new"
	SegmentCasual  Segment = "casual"
	SegmentRegular Segment = "regular"
	SegmentPower   Segment = "power"
)

// SegmentFor classifies a user by the length of their watch history.
func SegmentFor(historyLen int) Segment {
	switch {
	case historyLen == 0:
		return SegmentNew
	case historyLen <= 4:
		return SegmentCasual
	case historyLen <= 19:
		return SegmentRegular
	default:
		return SegmentPower
	}
}

// TimeOfDay and related context enums, per spec §3 PatternContext.
type TimeOfDay string

const (
	TimeMorning   TimeOfDay = "morning"
	TimeAfternoon TimeOfDay = "afternoon"
	TimeEvening   TimeOfDay = "evening"
	TimeNight     TimeOfDay = "night"
	TimeAny       TimeOfDay = "any"
)

// TimeOfDayFor buckets an hour-of-day (0-23) into a TimeOfDay.
func TimeOfDayFor(hour int) TimeOfDay {
	switch {
	case hour >= 5 && hour < 12:
		return TimeMorning
	case hour >= 12 && hour < 17:
		return TimeAfternoon
	case hour >= 17 && hour < 22:
		return TimeEvening
	default:
		return TimeNight
	}
}

type Platform string

const (
	PlatformWeb    Platform = "web"
	PlatformMobile Platform = "mobile"
	PlatformTV     Platform = "tv"
	PlatformAny    Platform = "any"
)

type ContentTypePreference string

const (
	ContentPrefSeries ContentTypePreference = "series"
	ContentPrefMovie  ContentTypePreference = "movie"
	ContentPrefBoth   ContentTypePreference = "both"
)

// Audience gates the candidate pool for age-appropriateness, per spec §4.4.
type Audience string

const (
	AudienceGeneral Audience = ""
	AudienceKids    Audience = "kids"
	AudienceFamily  Audience = "family"
	AudienceTeens   Audience = "teens"
)

// PatternContext is the request-context shape a RecommendationPattern was learned for.
type PatternContext struct {
	UserSegment           Segment               `json:"userSegment"`
	TimeOfDay             TimeOfDay             `json:"timeOfDay"`
	DayOfWeek             string                `json:"dayOfWeek"`
	Platform              Platform              `json:"platform"`
	ContentTypePreference ContentTypePreference `json:"contentTypePreference"`
	TopGenres             []string              `json:"topGenres"` // up to 3
}

// TaskType is the strategy family a pattern belongs to.
type TaskType string

const (
	TaskColdStart       TaskType = "cold_start"
	TaskGenreMatch      TaskType = "genre_match"
	TaskSimilarContent  TaskType = "similar_content"
	TaskTimeBased       TaskType = "time_based"
	TaskNetworkBased    TaskType = "network_based"
	TaskCustom          TaskType = "custom"
)

// Pattern is one learned or seeded recommendation strategy instance.
type Pattern struct {
	ID          int64          `json:"id"`
	TaskType    TaskType       `json:"taskType"`
	Approach    string         `json:"approach"`
	SuccessRate float64        `json:"successRate"` // running mean in [0,1]
	TotalUses   int64          `json:"totalUses"`
	AvgReward   float64        `json:"avgReward"` // running mean in [-1,1]
	Context     PatternContext `json:"context"`
	Embedding   []float32      `json:"embedding"` // unit-norm, derived from context text
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	LastUsedAt  *time.Time     `json:"lastUsedAt,omitempty"`
}

// ContextSentence renders the canonical text a pattern's context embedding is derived from.
// The wording and field order are part of the contract: two PatternContext values
// that render to the same sentence must embed identically.
func (c PatternContext) ContextSentence(preference string) string {
	genres := "none"
	if len(c.TopGenres) > 0 {
		genres = joinComma(c.TopGenres)
	}
	return "User segment: " + string(c.UserSegment) +
		" Time: " + string(c.TimeOfDay) +
		" Day: " + c.DayOfWeek +
		" Platform: " + string(c.Platform) +
		" Preference: " + preference +
		" Top genres: " + genres
}

func joinComma(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}

// UserAction is the set of interaction kinds a LearningFeedback can carry.
type UserAction string

const (
	ActionWatched        UserAction = "watched"
	ActionSkipped        UserAction = "skipped"
	ActionRated          UserAction = "rated"
	ActionAddedWatchlist UserAction = "added_watchlist"
	ActionDismissed      UserAction = "dismissed"
	ActionClicked        UserAction = "clicked"
	ActionCompleted      UserAction = "completed"
)

// LearningFeedback is an append-only record of a single user interaction.
type LearningFeedback struct {
	ID                    string     `json:"id"`
	UserID                string     `json:"userId"`
	ContentID             string     `json:"contentId"`
	PatternID             *int64     `json:"patternId,omitempty"`
	WasSuccessful         bool       `json:"wasSuccessful"`
	Reward                float64    `json:"reward"` // in [-1,1]
	UserAction            UserAction `json:"userAction"`
	RecommendationPosition int       `json:"recommendationPosition,omitempty"` // 1-indexed
	CreatedAt             time.Time  `json:"createdAt"`
}

// ReflexionEpisode is an append-only self-critique record.
type ReflexionEpisode struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"sessionId"`
	Task      string    `json:"task"`
	Action    string    `json:"action"`
	Reward    float64   `json:"reward"`
	Success   bool      `json:"success"`
	Critique  string    `json:"critique"`
	Learnings []string  `json:"learnings"`
	Embedding []float32 `json:"embedding"`
	CreatedAt time.Time `json:"createdAt"`
}

// Skill is a reusable artifact distilled from high-reward episodes.
type Skill struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	Signature          string    `json:"signature"`
	Code               string    `json:"code"`
	Domain             string    `json:"domain"`
	SuccessRate        float64   `json:"successRate"`
	UsageCount         int64     `json:"usageCount"`
	AvgExecutionTimeMs float64   `json:"avgExecutionTimeMs"`
	CreatedAt          time.Time `json:"createdAt"`
}

// QEntry is one (state, action) cell of the Q-table.
type QEntry struct {
	State       string    `json:"state"`
	Action      string    `json:"action"`
	Value       float64   `json:"value"`
	Updates     int64     `json:"updates"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// ReplayContext carries the contextual features attached to a replay Experience.
type ReplayContext struct {
	UserID    string   `json:"userId,omitempty"`
	ContentID string   `json:"contentId"`
	Timestamp int64    `json:"timestamp"`
	Mood      string   `json:"mood,omitempty"`
	Genres    []string `json:"genres,omitempty"`
}

// ReplayExperience is one transition recorded for prioritized experience replay.
type ReplayExperience struct {
	ID        int64         `json:"id"`
	State     string        `json:"state"`
	Action    string        `json:"action"`
	Reward    float64       `json:"reward"`
	NextState string        `json:"nextState"`
	Done      bool          `json:"done"`
	Context   ReplayContext `json:"context"`
	Priority  float64       `json:"priority"`
	CreatedAt time.Time     `json:"createdAt"`
}

// SyncStatus is a row recording the outcome of a background cycle, per spec §4.6 step 8.
type SyncStatus struct {
	ID               int64     `json:"id"`
	SyncType         string    `json:"syncType"`
	Episode          int64     `json:"episode"`
	TotalReward      float64   `json:"totalReward"`
	ExplorationRate  float64   `json:"explorationRate"`
	BestStrategy     string    `json:"bestStrategy"`
	QualityScore     float64   `json:"qualityScore"`
	CompletedAt      time.Time `json:"completedAt"`
}
