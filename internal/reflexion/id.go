package reflexion

import "strconv"

// parseEpisodeID converts the string-typed VectorMatch.ID the generic
// vector search layer returns back into the BIGSERIAL id reflexion_episodes
// actually uses.
func parseEpisodeID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
