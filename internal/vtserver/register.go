// Package vtserver registers the VTuber discovery tools on an MCP server.
package vtserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/anatolykoptev/go_vtuber/internal/engine"
	"github.com/anatolykoptev/go_vtuber/internal/engine/vtubers"
	"github.com/anatolykoptev/go_vtuber/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterTools registers the channel discovery tools on the given MCP
// server: vtuber_search.
func RegisterTools(server *mcp.Server, orch *vtubers.Orchestrator) {
	registerVTuberSearch(server, orch)
}

func registerVTuberSearch(server *mcp.Server, orch *vtubers.Orchestrator) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "vtuber_search",
		Description: "Search Twitch and YouTube for VTuber channels matching a name or topic. Runs a staged pipeline (tag search, fuzzy name search, content search) and scores each candidate for VTuber likelihood. Returns ranked per-platform results with scores, match confidence, and channel metadata. Supports restricting to one platform and attaching pipeline diagnostics.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.VTuberSearchInput) (*mcp.CallToolResult, engine.VTuberSearchOutput, error) {
		if input.Query == "" {
			return nil, engine.VTuberSearchOutput{}, fmt.Errorf("query is required")
		}
		only, err := toolutil.NormPlatform(input.Platform)
		if err != nil {
			return nil, engine.VTuberSearchOutput{}, err
		}

		engine.IncrSearchRequests()

		cfg := orch.Cfg
		cfg.ResultCap = toolutil.ClampLimit(input.Limit, cfg.ResultCap, cfg.ResultCap)

		caps := orch.Caps
		switch only {
		case vtubers.PlatformTwitch:
			caps.YouTube = nil
		case vtubers.PlatformYouTube:
			caps.Twitch = nil
		}

		var resp vtubers.SearchResponse
		err = engine.TrackOperation(ctx, "vtuber_search", func(ctx context.Context) error {
			var searchErr error
			resp, searchErr = vtubers.NewOrchestrator(cfg, caps).Search(ctx, input.Query, vtubers.Options{Debug: input.Debug})
			return searchErr
		})
		if err != nil {
			if errors.Is(err, vtubers.ErrEmptyQuery) {
				return nil, engine.VTuberSearchOutput{}, fmt.Errorf("query is required")
			}
			slog.Error("vtuber_search failed", slog.String("query", input.Query), slog.Any("error", err))
			return nil, engine.VTuberSearchOutput{}, err
		}

		return nil, engine.VTuberSearchOutput{
			Query:       input.Query,
			Twitch:      resp.Twitch,
			YouTube:     resp.YouTube,
			Total:       resp.Total,
			ElapsedMS:   resp.Elapsed.Milliseconds(),
			Diagnostics: resp.Diagnostics,
		}, nil
	})
}
