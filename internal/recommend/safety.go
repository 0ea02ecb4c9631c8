package recommend

import (
	"strings"

	"github.com/rcliao/recoengine/internal/core"
)

// matureGenres excludes candidates entirely for kid audiences, per spec
// §4.4 "Audience safety": Horror, Adult, Crime, Thriller, War.
var matureGenres = map[string]bool{
	"Horror": true, "Adult": true, "Crime": true, "Thriller": true, "War": true,
}

// familyExcludedGenres is the narrower exclusion set for a family audience.
var familyExcludedGenres = map[string]bool{"Horror": true, "Adult": true}

// teensExcludedGenres is the narrowest exclusion set, for teens.
var teensExcludedGenres = map[string]bool{"Adult": true}

// matureTokens is a configured blocklist of tokens that mark a title or
// overview as mature regardless of genre tagging.
var matureTokens = []string{"explicit", "graphic violence", "nc-17"}

func excludedGenresFor(audience core.Audience) map[string]bool {
	switch audience {
	case core.AudienceKids:
		return matureGenres
	case core.AudienceFamily:
		return familyExcludedGenres
	case core.AudienceTeens:
		return teensExcludedGenres
	default:
		return nil
	}
}

// isMature reports whether a candidate violates the exclusion set for the
// given audience, either by genre or by a blocklisted token in title/overview.
func isMature(c Candidate, audience core.Audience) bool {
	excluded := excludedGenresFor(audience)
	if excluded == nil {
		return false
	}
	for _, g := range c.Genres {
		if excluded[g] {
			return true
		}
	}
	lowerTitle := strings.ToLower(c.Title)
	lowerOverview := strings.ToLower(c.Overview)
	for _, tok := range matureTokens {
		if strings.Contains(lowerTitle, tok) || strings.Contains(lowerOverview, tok) {
			return true
		}
	}
	return false
}

// filterAudience pre-filters the candidate pool per spec §4.4 "candidatePool
// MUST be pre-filtered to exclude mature content".
func filterAudience(candidates []Candidate, audience core.Audience) []Candidate {
	if audience == core.AudienceGeneral {
		return candidates
	}
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if !isMature(c, audience) {
			out = append(out, c)
		}
	}
	return out
}

// violatesAudience re-checks the final result set at response assembly time,
// the last line of defense the spec requires (§4.4, edge case 6: "the engine
// must detect the violation at response assembly" even if an upstream
// pre-filter forgot an item).
func violatesAudience(results []Result, byID map[string]Candidate, audience core.Audience) bool {
	if audience == core.AudienceGeneral {
		return false
	}
	for _, r := range results {
		if c, ok := byID[r.ContentID]; ok && isMature(c, audience) {
			return true
		}
	}
	return false
}
