package store

import (
	"context"
	"time"

	"github.com/rcliao/recoengine/internal/core"
)

// InsertFeedback appends a single learning-feedback row, the entry point of
// the closed recommend -> feedback -> learn loop (spec §2).
func (s *Store) InsertFeedback(ctx context.Context, f core.LearningFeedback) error {
	_, execErr := s.db.ExecContext(ctx, `
		INSERT INTO learning_feedback
			(user_id, content_id, pattern_id, was_successful, reward, user_action, recommendation_position, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,now())
	`, f.UserID, f.ContentID, f.PatternID, f.WasSuccessful, f.Reward, string(f.UserAction), nullableInt(f.RecommendationPosition))
	return wrap("insert_feedback", execErr)
}

func nullableInt(v int) interface{} {
	if v == 0 {
		return nil
	}
	return v
}

// ReadFeedbackWindow returns feedback rows created within the last `window`,
// used by the optimization cycle's reward-by-genre aggregation (spec
// §4.4(b)).
func (s *Store) ReadFeedbackWindow(ctx context.Context, window time.Duration) ([]core.LearningFeedback, error) {
	since := time.Now().Add(-window)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, content_id, pattern_id, was_successful, reward, user_action, recommendation_position, created_at
		FROM learning_feedback WHERE created_at >= $1
		ORDER BY created_at
	`, since)
	if err != nil {
		return nil, wrap("read_feedback_window", err)
	}
	defer rows.Close()

	var out []core.LearningFeedback
	for rows.Next() {
		var f core.LearningFeedback
		var id int64
		var action string
		var position *int
		if err := rows.Scan(&id, &f.UserID, &f.ContentID, &f.PatternID, &f.WasSuccessful, &f.Reward, &action, &position, &f.CreatedAt); err != nil {
			return nil, wrap("read_feedback_window_scan", err)
		}
		f.UserAction = core.UserAction(action)
		if position != nil {
			f.RecommendationPosition = *position
		}
		out = append(out, f)
	}
	return out, wrap("read_feedback_window_rows", rows.Err())
}
