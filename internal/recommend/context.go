package recommend

import (
	"sort"
	"time"

	"github.com/rcliao/recoengine/internal/core"
)

// resolveContext fills in time-of-day, day-of-week, and platform from the
// request, falling back to the local clock and web, per spec §4.4 step 2.
func resolveContext(req Request, pref core.UserPreference, now time.Time) core.PatternContext {
	timeOfDay := req.TimeOfDay
	if timeOfDay == "" {
		timeOfDay = core.TimeOfDayFor(now.Hour())
	}
	dayOfWeek := req.DayOfWeek
	if dayOfWeek == "" {
		dayOfWeek = now.Weekday().String()
	}
	platform := req.Platform
	if platform == "" {
		platform = core.PlatformWeb
	}

	contentPref := core.ContentPrefBoth
	switch req.ContentType {
	case ContentTypeSeries:
		contentPref = core.ContentPrefSeries
	case ContentTypeMovie:
		contentPref = core.ContentPrefMovie
	}

	return core.PatternContext{
		UserSegment:           core.SegmentFor(len(pref.WatchHistory)),
		TimeOfDay:             timeOfDay,
		DayOfWeek:             dayOfWeek,
		Platform:              platform,
		ContentTypePreference: contentPref,
		TopGenres:             topGenres(pref.GenreWeights, 3),
	}
}

// topGenres returns the n highest-weighted genres, descending, stable on ties
// by genre name so ContextSentence stays deterministic.
func topGenres(weights map[string]float64, n int) []string {
	type kv struct {
		genre  string
		weight float64
	}
	kvs := make([]kv, 0, len(weights))
	for g, w := range weights {
		kvs = append(kvs, kv{g, w})
	}
	sort.Slice(kvs, func(i, j int) bool {
		if kvs[i].weight != kvs[j].weight {
			return kvs[i].weight > kvs[j].weight
		}
		return kvs[i].genre < kvs[j].genre
	})
	if n > len(kvs) {
		n = len(kvs)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = kvs[i].genre
	}
	return out
}
