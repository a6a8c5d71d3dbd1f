package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	SearchRequests        atomic.Int64
	TwitchAPIRequests     atomic.Int64
	TwitchAPIErrors       atomic.Int64
	TwitchTokenRefreshes  atomic.Int64
	YouTubeAPIRequests    atomic.Int64
	YouTubeAPIErrors      atomic.Int64
	YouTubeKeyFallbacks   atomic.Int64
	YouTubeScrapeRequests atomic.Int64
}

// GetMetrics returns a snapshot of all metrics.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"search_requests":         metrics.SearchRequests.Load(),
		"twitch_api_requests":     metrics.TwitchAPIRequests.Load(),
		"twitch_api_errors":       metrics.TwitchAPIErrors.Load(),
		"twitch_token_refreshes":  metrics.TwitchTokenRefreshes.Load(),
		"youtube_api_requests":    metrics.YouTubeAPIRequests.Load(),
		"youtube_api_errors":      metrics.YouTubeAPIErrors.Load(),
		"youtube_key_fallbacks":   metrics.YouTubeKeyFallbacks.Load(),
		"youtube_scrape_requests": metrics.YouTubeScrapeRequests.Load(),
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"search_requests",
		"twitch_api_requests", "twitch_api_errors", "twitch_token_refreshes",
		"youtube_api_requests", "youtube_api_errors",
		"youtube_key_fallbacks", "youtube_scrape_requests",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// IncrSearchRequests increments the top-level search counter.
func IncrSearchRequests() { metrics.SearchRequests.Add(1) }

// Incrementors for the platforms/ sub-package.
func IncrTwitchAPIRequests()     { metrics.TwitchAPIRequests.Add(1) }
func IncrTwitchAPIErrors()       { metrics.TwitchAPIErrors.Add(1) }
func IncrTwitchTokenRefreshes()  { metrics.TwitchTokenRefreshes.Add(1) }
func IncrYouTubeAPIRequests()    { metrics.YouTubeAPIRequests.Add(1) }
func IncrYouTubeAPIErrors()      { metrics.YouTubeAPIErrors.Add(1) }
func IncrYouTubeKeyFallbacks()   { metrics.YouTubeKeyFallbacks.Add(1) }
func IncrYouTubeScrapeRequests() { metrics.YouTubeScrapeRequests.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
