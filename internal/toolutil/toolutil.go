// Package toolutil provides shared helper functions for go_vtuber MCP tools.
package toolutil

import (
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_vtuber/internal/engine/vtubers"
)

// NormPlatform normalises a platform filter: empty or "all" means both
// platforms (returned as ""), anything else must name a known platform.
func NormPlatform(platform string) (vtubers.Platform, error) {
	switch strings.ToLower(strings.TrimSpace(platform)) {
	case "", "all":
		return "", nil
	case "twitch":
		return vtubers.PlatformTwitch, nil
	case "youtube":
		return vtubers.PlatformYouTube, nil
	default:
		return "", fmt.Errorf("unknown platform %q (want twitch or youtube)", platform)
	}
}

// ClampLimit bounds a per-platform result limit: zero means the
// default, anything above max is capped.
func ClampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
