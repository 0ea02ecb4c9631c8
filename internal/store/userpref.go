package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/rcliao/recoengine/internal/core"
)

// WriteUserPreference upserts a user's preference vector and derived weights.
func (s *Store) WriteUserPreference(ctx context.Context, p core.UserPreference) error {
	genreWeights, err := json.Marshal(p.GenreWeights)
	if err != nil {
		return wrap("write_user_preference_marshal_genres", err)
	}
	networkWeights, err := json.Marshal(p.NetworkWeights)
	if err != nil {
		return wrap("write_user_preference_marshal_networks", err)
	}
	history, err := json.Marshal(p.WatchHistory)
	if err != nil {
		return wrap("write_user_preference_marshal_history", err)
	}
	ratings, err := json.Marshal(p.Ratings)
	if err != nil {
		return wrap("write_user_preference_marshal_ratings", err)
	}

	var vecArg interface{}
	if len(p.PreferenceVec) > 0 {
		vecArg = formatVector(p.PreferenceVec)
	}

	_, execErr := s.db.ExecContext(ctx, `
		INSERT INTO user_preferences (user_id, preference_vec, genre_weights, network_weights, watch_history, ratings, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,now())
		ON CONFLICT (user_id) DO UPDATE SET
			preference_vec = COALESCE(EXCLUDED.preference_vec, user_preferences.preference_vec),
			genre_weights = EXCLUDED.genre_weights,
			network_weights = EXCLUDED.network_weights,
			watch_history = EXCLUDED.watch_history,
			ratings = EXCLUDED.ratings,
			updated_at = now()
	`, p.UserID, vecArg, genreWeights, networkWeights, history, ratings)
	return wrap("write_user_preference", execErr)
}

// GetUserPreference loads a user's preference state, per spec §4.1's
// "resolve pattern context from watch history and declared preferences".
func (s *Store) GetUserPreference(ctx context.Context, userID string) (*core.UserPreference, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, genre_weights, network_weights, watch_history, ratings, updated_at
		FROM user_preferences WHERE user_id = $1
	`, userID)

	var p core.UserPreference
	var genreWeights, networkWeights, history, ratings []byte
	if err := row.Scan(&p.UserID, &genreWeights, &networkWeights, &history, &ratings, &p.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, &core.NotFoundError{Entity: "user_preference", ID: userID}
		}
		return nil, wrap("get_user_preference", err)
	}

	if err := json.Unmarshal(genreWeights, &p.GenreWeights); err != nil {
		return nil, wrap("get_user_preference_unmarshal_genres", err)
	}
	if err := json.Unmarshal(networkWeights, &p.NetworkWeights); err != nil {
		return nil, wrap("get_user_preference_unmarshal_networks", err)
	}
	if err := json.Unmarshal(history, &p.WatchHistory); err != nil {
		return nil, wrap("get_user_preference_unmarshal_history", err)
	}
	if err := json.Unmarshal(ratings, &p.Ratings); err != nil {
		return nil, wrap("get_user_preference_unmarshal_ratings", err)
	}
	return &p, nil
}
