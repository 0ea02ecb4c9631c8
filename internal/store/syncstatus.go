package store

import (
	"context"

	"github.com/rcliao/recoengine/internal/core"
)

// WriteSyncStatus records the outcome of a completed background cycle
// (learning consolidation or optimization), the checkpoint referenced by
// spec §4.6 step 8.
func (s *Store) WriteSyncStatus(ctx context.Context, st core.SyncStatus) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_status (sync_type, episode, total_reward, exploration_rate, best_strategy, quality_score, completed_at)
		VALUES ($1,$2,$3,$4,$5,$6,now())
	`, st.SyncType, st.Episode, st.TotalReward, st.ExplorationRate, st.BestStrategy, st.QualityScore)
	return wrap("write_sync_status", err)
}

// LatestSyncStatus returns the most recent status row for a sync type, used
// to resume ε and episode count after a restart.
func (s *Store) LatestSyncStatus(ctx context.Context, syncType string) (*core.SyncStatus, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, sync_type, episode, total_reward, exploration_rate, best_strategy, quality_score, completed_at
		FROM sync_status WHERE sync_type = $1
		ORDER BY completed_at DESC LIMIT 1
	`, syncType)
	var st core.SyncStatus
	if err := row.Scan(&st.ID, &st.SyncType, &st.Episode, &st.TotalReward, &st.ExplorationRate, &st.BestStrategy, &st.QualityScore, &st.CompletedAt); err != nil {
		return nil, wrap("latest_sync_status", err)
	}
	return &st, nil
}
