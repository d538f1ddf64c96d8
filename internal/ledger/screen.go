package ledger

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// nameMatchRatio is the normalized edit-distance threshold below which two
// member names are considered near-duplicates.
const nameMatchRatio = 0.4

// SimilarMember screens a candidate name against the existing members and
// returns the closest near-duplicate, if any. It is a warning aid for the
// registration flow, never a hard block: spelling variants of the same woman
// show up constantly in hand-kept registers.
func SimilarMember(members []Member, name string) (Member, bool) {
	candidate := strings.ToUpper(strings.TrimSpace(name))
	if candidate == "" {
		return Member{}, false
	}

	best := Member{}
	bestRatio := nameMatchRatio
	for _, m := range members {
		existing := strings.ToUpper(strings.TrimSpace(m.Name))
		dist := levenshtein.ComputeDistance(candidate, existing)
		maxlen := len(candidate)
		if len(existing) > maxlen {
			maxlen = len(existing)
		}
		if maxlen == 0 {
			continue
		}
		ratio := float64(dist) / float64(maxlen)
		if ratio < bestRatio {
			best = m
			bestRatio = ratio
		}
	}
	return best, best.ID != ""
}
