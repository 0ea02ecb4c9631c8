package httpapi

import (
	"database/sql"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rcliao/recoengine/internal/core"
	"github.com/rcliao/recoengine/internal/learning"
	"github.com/rcliao/recoengine/internal/logger"
	"github.com/rcliao/recoengine/internal/recommend"
	"github.com/rcliao/recoengine/internal/reflexion"
)

const defaultPoolSize = 500

// recommendationsResponse wraps recommend.Response with the bandit action
// the Learning Engine selected for this request, so a client can round-trip
// it back on POST /feedback without the server keeping per-request state.
type recommendationsResponse struct {
	Results         []recommend.Result `json:"results"`
	PatternID       *int64             `json:"patternId,omitempty"`
	TaskType        core.TaskType      `json:"taskType"`
	GeneratedAt     time.Time          `json:"generatedAt"`
	SafetyViolation bool               `json:"safetyViolation"`
	Action          string             `json:"action"`
	Context         feedbackContextDTO `json:"context"`
}

// feedbackContextDTO is the minimal slice of learning.FeedbackContext a
// client needs to echo back; Features is omitted from the wire shape since
// the LinUCB arm is optional and the client has no principled way to supply
// one itself.
type feedbackContextDTO struct {
	UserSegment core.Segment   `json:"userSegment"`
	TimeOfDay   core.TimeOfDay `json:"timeOfDay"`
	Genres      []string       `json:"genres,omitempty"`
	Mood        string         `json:"mood,omitempty"`
	ContentType string         `json:"contentType,omitempty"`
}

func (s *Server) handleRecommendations(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.Query("userId")
	if userID == "" {
		writeError(c, &core.InputError{Field: "userId", Reason: "required"})
		return
	}

	req := recommend.Request{
		UserID:         userID,
		ContentType:    recommend.ContentType(defaultString(c.Query("contentType"), string(recommend.ContentTypeAll))),
		ExcludeWatched: c.Query("excludeWatched") == "true",
		Platform:       core.Platform(c.Query("platform")),
		TimeOfDay:      core.TimeOfDay(c.Query("timeOfDay")),
		DayOfWeek:      c.Query("dayOfWeek"),
		Audience:       core.Audience(c.Query("audience")),
	}
	if genres := c.Query("genres"); genres != "" {
		req.Genres = strings.Split(genres, ",")
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			writeError(c, &core.InputError{Field: "limit", Reason: "must be an integer"})
			return
		}
		req.Limit = limit
	}

	pref, err := s.store.GetUserPreference(ctx, userID)
	if err != nil {
		if !isNotFound(err) {
			writeError(c, err)
			return
		}
		pref = &core.UserPreference{UserID: userID}
	}

	poolSize := s.poolSize
	if poolSize <= 0 {
		poolSize = defaultPoolSize
	}
	content, err := s.store.ListCandidatePool(ctx, poolSize)
	if err != nil {
		writeError(c, err)
		return
	}
	pool := make([]recommend.Candidate, len(content))
	for i, item := range content {
		pool[i] = candidateFrom(item)
	}

	resp, err := s.rec.GetRecommendations(ctx, req, *pref, pool)
	if err != nil {
		writeError(c, err)
		return
	}

	fc := feedbackContextFor(req, *pref)
	action := s.learn.SelectAction(fc)

	c.JSON(http.StatusOK, recommendationsResponse{
		Results:         resp.Results,
		PatternID:       resp.PatternID,
		TaskType:        resp.TaskType,
		GeneratedAt:     resp.GeneratedAt,
		SafetyViolation: resp.SafetyViolation,
		Action:          action,
		Context: feedbackContextDTO{
			UserSegment: fc.UserSegment,
			TimeOfDay:   fc.TimeOfDay,
			Genres:      fc.Genres,
			Mood:        fc.Mood,
			ContentType: fc.ContentType,
		},
	})
}

func candidateFrom(c core.Content) recommend.Candidate {
	return recommend.Candidate{
		ContentID: c.ID,
		Kind:      c.Kind,
		Title:     c.Title,
		Overview:  c.Overview,
		Genres:    c.Genres,
		Rating:    c.Rating,
		Network:   c.NetworkName,
		Embedding: c.Embedding,
	}
}

// feedbackContextFor derives the same (segment, timeOfDay, genres, contentType)
// tuple the Recommendation Engine's own context resolution uses, so the
// bandit's state lines up with what the recommendations were actually drawn
// for. Mood has no request-time source and is left for the caller to supply
// on POST /feedback, defaulting to "neutral" in learning.StateFor.
func feedbackContextFor(req recommend.Request, pref core.UserPreference) learning.FeedbackContext {
	timeOfDay := req.TimeOfDay
	if timeOfDay == "" {
		timeOfDay = core.TimeOfDayFor(time.Now().Hour())
	}
	genres := req.Genres
	if len(genres) == 0 {
		genres = topWeightedGenres(pref.GenreWeights, 2)
	}
	return learning.FeedbackContext{
		UserSegment: core.SegmentFor(len(pref.WatchHistory)),
		TimeOfDay:   timeOfDay,
		Genres:      genres,
		ContentType: string(req.ContentType),
	}
}

// topWeightedGenres returns up to n genre keys from weights, ordered by
// descending weight, for use as the genre component of a Q-table state when
// the request itself didn't name any.
func topWeightedGenres(weights map[string]float64, n int) []string {
	type genreWeight struct {
		genre  string
		weight float64
	}
	ranked := make([]genreWeight, 0, len(weights))
	for genre, w := range weights {
		ranked = append(ranked, genreWeight{genre, w})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].weight != ranked[j].weight {
			return ranked[i].weight > ranked[j].weight
		}
		return ranked[i].genre < ranked[j].genre
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.genre
	}
	return out
}

// feedbackRequest is the POST /feedback body: the raw interaction plus the
// (action, context) pair the preceding GET /recommendations returned.
type feedbackRequest struct {
	UserID            string              `json:"userId"`
	ContentID         string              `json:"contentId"`
	PatternID         *int64              `json:"patternId,omitempty"`
	Action            string              `json:"action"`
	UserAction        core.UserAction     `json:"userAction"`
	CompletionPercent float64             `json:"completionPercent"`
	Rating            float64             `json:"rating"`
	Position          int                 `json:"position"`
	Context           feedbackContextDTO  `json:"context"`
	Features          []float64           `json:"features,omitempty"`
	NextState         string              `json:"nextState,omitempty"`
}

func (s *Server) handleFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, &core.InputError{Field: "body", Reason: err.Error()})
		return
	}
	if req.UserID == "" || req.ContentID == "" || req.Action == "" {
		writeError(c, &core.InputError{Field: "userId/contentId/action", Reason: "all required"})
		return
	}

	fb := learning.Feedback{
		UserID:            req.UserID,
		ContentID:         req.ContentID,
		PatternID:         req.PatternID,
		Action:            req.UserAction,
		CompletionPercent: req.CompletionPercent,
		Rating:            req.Rating,
		Position:          req.Position,
		Context: learning.FeedbackContext{
			UserSegment: req.Context.UserSegment,
			TimeOfDay:   req.Context.TimeOfDay,
			Genres:      req.Context.Genres,
			Mood:        req.Context.Mood,
			ContentType: req.Context.ContentType,
		},
		Features:  req.Features,
		NextState: req.NextState,
	}

	if err := s.learn.RecordFeedback(c.Request.Context(), req.Action, fb); err != nil {
		writeError(c, err)
		return
	}

	if s.reflex != nil {
		reward := learning.RewardForAction(req.UserAction, req.CompletionPercent, req.Rating)
		_, err := s.reflex.StoreEpisode(c.Request.Context(), reflexion.StoreEpisodeInput{
			SessionID: req.UserID,
			Task:      learning.StateFor(fb.Context),
			Action:    req.Action,
			Reward:    reward,
			Success:   reward > 0,
		})
		if err != nil {
			logger.Warn("reflexion episode store failed", "userId", req.UserID, "error", err)
		}
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "recorded"})
}

// statsResponse summarizes the learned state for operators: the pattern
// table and the most recent optimization cycle's outcome, per spec §4.6
// step 8's sync_status row.
type statsResponse struct {
	Patterns   []core.Pattern  `json:"patterns"`
	SyncStatus *core.SyncStatus `json:"syncStatus,omitempty"`
}

func (s *Server) handleStats(c *gin.Context) {
	ctx := c.Request.Context()
	taskType := c.Query("taskType")

	patterns, err := s.store.ListPatterns(ctx, taskType)
	if err != nil {
		writeError(c, err)
		return
	}

	status, err := s.store.LatestSyncStatus(ctx, "learning_state")
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		writeError(c, err)
		return
	}
	if err != nil {
		status = nil
	}

	c.JSON(http.StatusOK, statsResponse{Patterns: patterns, SyncStatus: status})
}

// handleOptimize triggers one optimization cycle synchronously. It is
// expected to be called rarely and from an operator context (or the
// `optimize` CLI command), not on the request hot path; the scheduled
// cron job (internal/optimize.Scheduler) is the normal trigger.
func (s *Server) handleOptimize(c *gin.Context) {
	result, err := s.cycle.Run(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func isNotFound(err error) bool {
	var nf *core.NotFoundError
	return errors.As(err, &nf)
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
