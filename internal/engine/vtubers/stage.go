package vtubers

import (
	"context"
	"log/slog"
	"strings"
)

// Runner executes the three search stages for one platform. Each Runner
// owns its candidate lists and collector; nothing is shared across
// platforms.
type Runner struct {
	Platform Platform
	Cap      Capability
	Scorer   *Scorer
	Cfg      Config
	Diag     *Collector
}

// Run executes the stages in their fixed order and returns the accepted
// candidates grouped per stage. Capability failures absorb to an empty
// stage plus a diagnostic; Run itself never fails.
//
// Stage "tags" short-circuits the rest once it accepts at least
// Cfg.TargetMin candidates; "fuzzy" and "content" only run while the
// combined accepted count is still below that target. An identifier
// accepted by an earlier stage is never re-scored by a later one.
func (r *Runner) Run(ctx context.Context, query string) [][]ScoredCandidate {
	threshold := r.Scorer.Threshold(r.Platform)
	taken := make(map[string]bool)

	r.Diag.BeginStage(StageTags)
	var tagRaw []Candidate
	for _, tag := range r.Cfg.Keywords.SearchTags {
		batch, err := r.Cap.ByTag(ctx, tag, r.Cfg.StageLimit)
		if err != nil {
			r.Diag.Failure(err)
			slog.Warn("tag search failed",
				slog.String("platform", string(r.Platform)),
				slog.String("tag", tag),
				slog.Any("error", err))
			continue
		}
		tagRaw = append(tagRaw, batch...)
	}
	tagHits := r.filterStage(StageTags, query, tagRaw, taken, threshold, false)
	if len(tagHits) >= r.Cfg.TargetMin {
		slog.Debug("tag stage filled target, skipping remaining stages",
			slog.String("platform", string(r.Platform)),
			slog.Int("accepted", len(tagHits)))
		return [][]ScoredCandidate{tagHits}
	}

	r.Diag.BeginStage(StageFuzzy)
	var fuzzyHits []ScoredCandidate
	fuzzyRaw, err := r.Cap.ByName(ctx, query, r.Cfg.StageLimit)
	if err != nil {
		r.Diag.Failure(err)
		slog.Warn("name search failed",
			slog.String("platform", string(r.Platform)),
			slog.Any("error", err))
	} else {
		fuzzyHits = r.filterStage(StageFuzzy, query, fuzzyRaw, taken, threshold, false)
	}
	if len(tagHits)+len(fuzzyHits) >= r.Cfg.TargetMin {
		return [][]ScoredCandidate{tagHits, fuzzyHits}
	}

	r.Diag.BeginStage(StageContent)
	var contentHits []ScoredCandidate
	contentRaw, err := r.Cap.ByKeyword(ctx, contentQuery(query), r.Cfg.StageLimit)
	if err != nil {
		r.Diag.Failure(err)
		slog.Warn("keyword search failed",
			slog.String("platform", string(r.Platform)),
			slog.Any("error", err))
	} else {
		contentHits = r.filterStage(StageContent, query, contentRaw, taken, threshold, true)
	}

	return [][]ScoredCandidate{tagHits, fuzzyHits, contentHits}
}

// filterStage applies name matching and scoring to one stage's raw
// candidates. When allowUnmatched is set (content stage) a candidate
// whose name did not match at all is still accepted if its score clears
// the content multiplier's higher bar.
func (r *Runner) filterStage(stage Stage, query string, raw []Candidate, taken map[string]bool, threshold float64, allowUnmatched bool) []ScoredCandidate {
	r.Diag.Raw(len(raw))

	var accepted []ScoredCandidate
	for _, c := range raw {
		if c.ID == "" || taken[c.ID] {
			continue
		}

		conf, kind := MatchName(query, c.DisplayName)
		need := threshold
		if kind == MatchNone {
			if !allowUnmatched {
				r.Diag.RejectedName()
				continue
			}
			need = threshold * r.Cfg.ContentMultiplier
		}

		score := r.Scorer.Score(r.Platform, c)
		if score < need {
			r.Diag.RejectedScore()
			continue
		}

		taken[c.ID] = true
		r.Diag.Accepted()
		accepted = append(accepted, ScoredCandidate{
			Candidate:  c,
			Score:      score,
			Confidence: conf,
			MatchKind:  kind,
			Stage:      stage,
		})
	}
	return accepted
}

// contentQuery widens the query for the content stage so the platform
// surfaces channels whose descriptions, not names, carry the evidence.
func contentQuery(query string) string {
	q := strings.TrimSpace(query)
	if strings.Contains(strings.ToLower(q), "vtuber") {
		return q
	}
	return q + " vtuber"
}
