package vtubers

import "sort"

// Aggregate flattens the per-stage accepted lists for one platform into
// the final envelope. Duplicated platform IDs keep the entry with the
// higher score; on a tie the earlier stage's entry survives. Ordering is
// score descending, then confidence descending, then discovery order
// (stable sort over the flattened list). The envelope is capped at
// limit entries and flagged when anything was cut.
func Aggregate(platform Platform, perStage [][]ScoredCandidate, limit int) ResultEnvelope {
	var flat []ScoredCandidate
	for _, stage := range perStage {
		flat = append(flat, stage...)
	}

	best := make(map[string]int, len(flat))
	deduped := flat[:0]
	for _, sc := range flat {
		idx, ok := best[sc.ID]
		if !ok {
			best[sc.ID] = len(deduped)
			deduped = append(deduped, sc)
			continue
		}
		if sc.Score > deduped[idx].Score {
			deduped[idx] = sc
		}
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		if deduped[i].Score != deduped[j].Score {
			return deduped[i].Score > deduped[j].Score
		}
		return deduped[i].Confidence > deduped[j].Confidence
	})

	env := ResultEnvelope{Platform: platform, Results: deduped}
	if limit > 0 && len(deduped) > limit {
		env.Results = deduped[:limit]
		env.Truncated = true
	}
	return env
}
