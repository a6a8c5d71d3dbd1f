package vtubers

import "time"

// Keywords holds the tiered keyword lists the scorer scans for.
// Lists are loaded once and treated as immutable for the lifetime of
// a search; all entries must be lowercase.
type Keywords struct {
	// High-confidence VTuber vocabulary.
	High []string
	// Medium-confidence adjacent vocabulary.
	Medium []string
	// Known VTuber agencies and groups.
	Agencies []string
	// Terms that actively argue against a virtual persona.
	Negative []string
	// Tags issued to the tag-scoped search stage.
	SearchTags []string
}

// Weights holds the additive contribution of each scoring signal.
type Weights struct {
	High       float64
	Medium     float64
	Agency     float64
	Negative   float64 // subtracted once if any negative term is present
	Live       float64
	Verified   float64
	Traffic    float64
	Subscriber float64
	Recency    float64
}

// PlatformRules holds the per-platform acceptance threshold and the
// metadata cutoffs for the dynamic bonuses.
type PlatformRules struct {
	// Threshold is the minimum vtuber score for the tags and fuzzy stages.
	Threshold float64
	// TrafficMin is the viewer/view count above which the traffic bonus applies.
	TrafficMin int64
	// SubscriberMin is the subscriber count above which the subscriber bonus applies.
	SubscriberMin int64
}

// Config bundles every tunable of the pipeline. Values are heuristics
// tuned against the raw score scale, not contracts; see DefaultConfig.
type Config struct {
	Keywords Keywords
	Weights  Weights
	Rules    map[Platform]PlatformRules

	// ContentMultiplier raises the bar for content-stage candidates whose
	// name did not match at all: accept only when
	// score >= ContentMultiplier * Threshold.
	ContentMultiplier float64

	// TargetMin is the accepted-candidate count at which the tag stage
	// short-circuits the remaining stages.
	TargetMin int

	// StageLimit caps how many raw candidates each capability call may return.
	StageLimit int

	// ResultCap caps each platform's final envelope.
	ResultCap int

	// RecencyWindow is how recent LastActive must be for the recency bonus.
	RecencyWindow time.Duration

	// Timeout bounds one whole orchestrated search.
	Timeout time.Duration
}

// DefaultConfig returns the tuned defaults. The keyword lists follow the
// Italian and English VTuber markets the service was built for.
func DefaultConfig() Config {
	return Config{
		Keywords: Keywords{
			High: []string{
				"vtuber", "virtual youtuber", "virtual streamer", "vtubing",
				"live2d", "anime avatar", "virtual avatar", "virtual idol",
				"virtual personality", "virtual character",
				"vtuber italiana", "streamer virtuale", "avatar virtuale",
				"personaggio virtuale", "idol virtuale",
			},
			Medium: []string{
				"anime", "kawaii", "moe", "otaku", "weeb", "avatar",
				"rigging", "model debut", "character design",
				"anime italiano", "otaku italiano",
			},
			Agencies: []string{
				"hololive", "nijisanji", "vshojo", "vspo", "anycolor",
				"774inc", "reality", "neo-porte", "v4mirai", "kamitsubaki",
				"noripro", "prism project", "vtuber italia",
			},
			Negative: []string{
				"irl", "face cam", "facecam", "real person", "no avatar",
				"non-vtuber", "persona reale", "faccia vera", "senza avatar",
				"streamer umano",
			},
			SearchTags: []string{"vtuber", "virtual youtuber", "envtuber"},
		},
		Weights: Weights{
			High:       3.0,
			Medium:     1.0,
			Agency:     2.5,
			Negative:   2.5,
			Live:       1.0,
			Verified:   2.0,
			Traffic:    1.0,
			Subscriber: 1.0,
			Recency:    0.5,
		},
		Rules: map[Platform]PlatformRules{
			// YouTube's broader content mix needs the stricter bar.
			PlatformTwitch:  {Threshold: 2.0, TrafficMin: 100, SubscriberMin: 1000},
			PlatformYouTube: {Threshold: 2.5, TrafficMin: 10000, SubscriberMin: 1000},
		},
		ContentMultiplier: 1.5,
		TargetMin:         3,
		StageLimit:        50,
		ResultCap:         25,
		RecencyWindow:     7 * 24 * time.Hour,
		Timeout:           25 * time.Second,
	}
}
