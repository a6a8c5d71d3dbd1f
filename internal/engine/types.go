package engine

import "github.com/anatolykoptev/go_vtuber/internal/engine/vtubers"

// --- Tool input types ---

type VTuberSearchInput struct {
	Query    string `json:"query" jsonschema:"Channel name or topic to search for"`
	Platform string `json:"platform,omitempty" jsonschema:"Restrict to one platform: twitch or youtube (default: both)"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Max results per platform, 1-25 (default: 25)"`
	Debug    bool   `json:"debug,omitempty" jsonschema:"Attach per-stage pipeline diagnostics"`
}

// --- Output types (JSON responses) ---

type VTuberSearchOutput struct {
	Query       string                 `json:"query"`
	Twitch      vtubers.ResultEnvelope `json:"twitch"`
	YouTube     vtubers.ResultEnvelope `json:"youtube"`
	Total       int                    `json:"total_results"`
	ElapsedMS   int64                  `json:"elapsed_ms"`
	Diagnostics *vtubers.Diagnostics   `json:"diagnostics,omitempty"`
}
