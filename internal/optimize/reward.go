package optimize

import (
	"context"
	"time"

	"github.com/rcliao/recoengine/internal/store"
)

const feedbackWindow = 7 * 24 * time.Hour

// genreReward accumulates the running (sum, count) for one genre's reward.
type genreReward struct {
	sum   float64
	count int
}

// aggregateRewardByGenre reads the last 7 days of feedback, groups it by
// each referenced content's primary genre, and returns the best-performing
// genre plus the full per-genre map, per spec §4.6 step 4.
func aggregateRewardByGenre(ctx context.Context, st *store.Store) (bestGenre string, perGenre map[string]genreReward, err error) {
	feedback, err := st.ReadFeedbackWindow(ctx, feedbackWindow)
	if err != nil {
		return "", nil, err
	}
	if len(feedback) == 0 {
		return "", nil, nil
	}

	ids := make([]string, 0, len(feedback))
	seen := make(map[string]bool)
	for _, f := range feedback {
		if !seen[f.ContentID] {
			seen[f.ContentID] = true
			ids = append(ids, f.ContentID)
		}
	}

	genresByContent, err := st.ContentGenres(ctx, ids)
	if err != nil {
		return "", nil, err
	}

	perGenre = make(map[string]genreReward)
	for _, f := range feedback {
		genres := genresByContent[f.ContentID]
		if len(genres) == 0 {
			continue
		}
		primary := genres[0]
		gr := perGenre[primary]
		gr.sum += f.Reward
		gr.count++
		perGenre[primary] = gr
	}

	bestAvg := -2.0
	for genre, gr := range perGenre {
		if gr.count == 0 {
			continue
		}
		avg := gr.sum / float64(gr.count)
		if avg > bestAvg || (avg == bestAvg && genre < bestGenre) {
			bestAvg = avg
			bestGenre = genre
		}
	}
	return bestGenre, perGenre, nil
}
