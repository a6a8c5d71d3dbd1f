// Package vtubers implements the VTuber discovery pipeline: fuzzy name
// matching, keyword-based likelihood scoring, staged platform searches,
// and cross-stage result aggregation.
//
// The package is pure domain logic. Platform API access is injected via
// the Capability interface; see internal/engine/platforms for the Twitch
// and YouTube implementations.
package vtubers

import (
	"context"
	"errors"
	"time"
)

// Platform identifies one of the two supported platforms.
type Platform string

const (
	PlatformTwitch  Platform = "twitch"
	PlatformYouTube Platform = "youtube"
)

// Stage identifies which search pass produced a candidate.
// Stages run in a fixed order of increasing recall and decreasing precision.
type Stage string

const (
	StageTags    Stage = "tags"
	StageFuzzy   Stage = "fuzzy"
	StageContent Stage = "content"
)

// MatchKind classifies how a candidate's name relates to the query.
type MatchKind string

const (
	MatchExact       MatchKind = "exact"
	MatchContains    MatchKind = "contains"
	MatchWord        MatchKind = "word"
	MatchPartialWord MatchKind = "partial_word"
	MatchPrefix      MatchKind = "prefix"
	MatchNone        MatchKind = "none"
)

// Candidate is a raw, unscored search hit as returned by a platform
// capability. Zero values mean "unknown" for the metadata fields.
type Candidate struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"name"`
	Title       string    `json:"title,omitempty"` // stream title (twitch only)
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	URL         string    `json:"url,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Language    string    `json:"language,omitempty"`
	Live        bool      `json:"is_live"`
	Verified    bool      `json:"verified"`
	Viewers     int64     `json:"viewers,omitempty"`     // live viewers (twitch) or total views (youtube)
	Subscribers int64     `json:"subscribers,omitempty"` // 0 = unknown
	LastActive  time.Time `json:"last_active,omitzero"`
}

// ScoredCandidate is a Candidate that passed a search stage.
// Score and Confidence are independent axes: a channel can match the
// query name exactly yet look nothing like a VTuber, and vice versa.
type ScoredCandidate struct {
	Candidate
	Score      float64   `json:"vtuber_score"`
	Confidence float64   `json:"match_confidence"`
	MatchKind  MatchKind `json:"match_kind"`
	Stage      Stage     `json:"search_stage"`
}

// ResultEnvelope is the final deduplicated, ranked, capped result list
// for one platform. Within an envelope candidate IDs are unique.
type ResultEnvelope struct {
	Platform  Platform          `json:"platform"`
	Results   []ScoredCandidate `json:"results"`
	Truncated bool              `json:"truncated"`
}

// SearchResponse is the combined result of one orchestrated search.
type SearchResponse struct {
	Twitch      ResultEnvelope `json:"twitch"`
	YouTube     ResultEnvelope `json:"youtube"`
	Total       int            `json:"total_results"`
	Elapsed     time.Duration  `json:"-"`
	Diagnostics *Diagnostics   `json:"diagnostics,omitempty"`
}

// Capability is an injected platform search backend. Implementations
// own auth, transport, retries, and rate limiting; the pipeline only
// sees candidates or an error.
type Capability interface {
	// ByTag returns candidates carrying the given tag (or, on platforms
	// without native tags, candidates whose text mentions it).
	ByTag(ctx context.Context, tag string, limit int) ([]Candidate, error)

	// ByName returns candidates matching a plain name search.
	ByName(ctx context.Context, query string, limit int) ([]Candidate, error)

	// ByKeyword returns candidates from a broader content search.
	ByKeyword(ctx context.Context, keyword string, limit int) ([]Candidate, error)
}

// Capabilities bundles the per-platform backends for the orchestrator.
// A nil entry disables that platform for the search.
type Capabilities struct {
	Twitch  Capability
	YouTube Capability
}

// Sentinel errors for the capability failure taxonomy. Capability
// implementations wrap these; the pipeline absorbs both identically
// (zero candidates plus a diagnostic) but they are kept distinct so
// diagnostics can tell rate limits from bad credentials.
var (
	// ErrTransient marks network, rate-limit, and quota failures.
	ErrTransient = errors.New("transient platform error")

	// ErrAuth marks credential failures.
	ErrAuth = errors.New("platform auth error")

	// ErrEmptyQuery is returned for an empty or whitespace-only query.
	// It is the only error Search surfaces to the caller.
	ErrEmptyQuery = errors.New("query must not be empty")
)
