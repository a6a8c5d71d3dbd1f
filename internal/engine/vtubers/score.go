package vtubers

import (
	"strings"
	"time"
)

// Scorer computes the VTuber-likelihood score for candidates.
// It is pure and total: unknown metadata contributes nothing, and no
// input can make it fail.
type Scorer struct {
	kw      Keywords
	w       Weights
	rules   map[Platform]PlatformRules
	recency time.Duration

	// now is swappable for tests; defaults to time.Now.
	now func() time.Time
}

// NewScorer builds a scorer from the pipeline config.
func NewScorer(cfg Config) *Scorer {
	return &Scorer{
		kw:      cfg.Keywords,
		w:       cfg.Weights,
		rules:   cfg.Rules,
		recency: cfg.RecencyWindow,
		now:     time.Now,
	}
}

// Score returns the additive VTuber-likelihood score for a candidate.
// Keyword tiers are scanned over name, then title, then description,
// then tags; each tier contributes at most once per field and a keyword
// that already contributed in an earlier field is not counted again.
// Platform bonuses are independently additive. The result is clamped
// at zero so the negative-keyword penalty cannot push it below the
// documented non-negative scale.
func (s *Scorer) Score(platform Platform, c Candidate) float64 {
	fields := []string{
		strings.ToLower(c.DisplayName),
		strings.ToLower(c.Title),
		strings.ToLower(c.Description),
		strings.ToLower(strings.Join(c.Tags, " ")),
	}

	score := s.tierScore(fields, s.kw.High, s.w.High)
	score += s.tierScore(fields, s.kw.Medium, s.w.Medium)
	score += s.tierScore(fields, s.kw.Agencies, s.w.Agency)

	if containsAny(fields, s.kw.Negative) {
		score -= s.w.Negative
	}

	rules := s.rules[platform]
	if c.Live {
		score += s.w.Live
	}
	if c.Verified {
		score += s.w.Verified
	}
	if rules.TrafficMin > 0 && c.Viewers > rules.TrafficMin {
		score += s.w.Traffic
	}
	if rules.SubscriberMin > 0 && c.Subscribers > rules.SubscriberMin {
		score += s.w.Subscriber
	}
	if !c.LastActive.IsZero() && s.now().Sub(c.LastActive) < s.recency {
		score += s.w.Recency
	}

	if score < 0 {
		return 0
	}
	return score
}

// Threshold returns the stage acceptance threshold for a platform.
func (s *Scorer) Threshold(platform Platform) float64 {
	return s.rules[platform].Threshold
}

// tierScore adds weight once per field that contains at least one term
// of the tier not already seen in an earlier field.
func (s *Scorer) tierScore(fields, terms []string, weight float64) float64 {
	seen := make(map[string]bool, len(terms))
	var total float64
	for _, f := range fields {
		if f == "" {
			continue
		}
		hit := false
		for _, t := range terms {
			if seen[t] || !strings.Contains(f, t) {
				continue
			}
			seen[t] = true
			hit = true
		}
		if hit {
			total += weight
		}
	}
	return total
}

func containsAny(fields, terms []string) bool {
	for _, f := range fields {
		if f == "" {
			continue
		}
		for _, t := range terms {
			if strings.Contains(f, t) {
				return true
			}
		}
	}
	return false
}
