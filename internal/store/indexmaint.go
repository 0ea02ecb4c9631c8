package store

import (
	"context"
	"fmt"
)

// hnswIndexes names the HNSW indexes schema.go creates, for use by
// IndexMaintenance's REINDEX pass.
var hnswIndexes = []string{
	"content_embedding_hnsw_idx",
	"patterns_embedding_hnsw_idx",
	"reflexion_embedding_hnsw_idx",
}

// IndexMaintenance rebuilds the HNSW indexes backing vector search, for use
// once embedding drift has shifted enough vectors that recall degrades. No
// code in this module calls it; the optimization cycle does not.
func (s *Store) IndexMaintenance(ctx context.Context) error {
	for _, idx := range hnswIndexes {
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf("REINDEX INDEX CONCURRENTLY %s", idx)); err != nil {
			return wrap("index_maintenance:"+idx, err)
		}
	}
	return nil
}
