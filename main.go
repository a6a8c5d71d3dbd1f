// go_vtuber — VTuber Channel Discovery MCP server.
//
// Exposes the vtuber_search MCP tool: a staged search-and-score
// pipeline over the Twitch Helix and YouTube Data APIs.
// Runs as HTTP MCP server or stdio transport.
package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/anatolykoptev/go_vtuber/internal/engine"
	"github.com/anatolykoptev/go_vtuber/internal/engine/platforms"
	"github.com/anatolykoptev/go_vtuber/internal/engine/vtubers"
	"github.com/anatolykoptev/go_vtuber/internal/vtserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8894")
)

func main() {
	c := initEngine()

	slog.Info("starting go_vtuber",
		slog.String("port", mcpPort),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_vtuber",
		Version: version,
	}, nil)

	vtserver.RegisterTools(server, buildOrchestrator(c))
	slog.Info("tools registered", slog.Int("count", 1))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_vtuber",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 60 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() engine.Config {
	c := engine.Config{
		TwitchClientID:        env.Str("TWITCH_CLIENT_ID", ""),
		TwitchClientSecret:    env.Str("TWITCH_CLIENT_SECRET", ""),
		YouTubeAPIKey:         env.Str("YOUTUBE_API_KEY", ""),
		YouTubeAPIKeyFallback: env.Str("YOUTUBE_API_KEY_FALLBACK", ""),
		SearchTimeout:         env.Duration("SEARCH_TIMEOUT", 25*time.Second),
		StageLimit:            env.Int("STAGE_LIMIT", 50),
		ResultCap:             env.Int("RESULT_CAP", 25),
		TargetMin:             env.Int("STAGE_TARGET_MIN", 3),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	bc, err := engine.NewBrowserClient()
	if err != nil {
		slog.Warn("browser client init failed, keyless youtube fallback disabled", slog.Any("error", err))
	} else {
		c.BrowserClient = bc
		slog.Info("browser client initialized")
	}

	engine.Init(c)
	return c
}

func buildOrchestrator(c engine.Config) *vtubers.Orchestrator {
	cfg := vtubers.DefaultConfig()
	cfg.Timeout = c.SearchTimeout
	cfg.StageLimit = c.StageLimit
	cfg.ResultCap = c.ResultCap
	cfg.TargetMin = c.TargetMin

	var caps vtubers.Capabilities
	if c.TwitchClientID != "" && c.TwitchClientSecret != "" {
		caps.Twitch = platforms.NewTwitch(c.TwitchClientID, c.TwitchClientSecret, c.HTTPClient)
	} else {
		slog.Warn("twitch credentials missing, twitch search disabled")
	}
	if c.YouTubeAPIKey == "" {
		slog.Warn("no youtube API key, relying on keyless fallback")
	}
	caps.YouTube = platforms.NewYouTube(c.YouTubeAPIKey, c.YouTubeAPIKeyFallback, c.HTTPClient, c.BrowserClient)

	return vtubers.NewOrchestrator(cfg, caps)
}
