package vtubers

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Orchestrator runs the full discovery pipeline across both platforms.
type Orchestrator struct {
	Cfg  Config
	Caps Capabilities
}

// Options tunes one Search call.
type Options struct {
	// Debug attaches the per-stage diagnostics to the response.
	Debug bool
}

// NewOrchestrator wires the pipeline config to the platform backends.
func NewOrchestrator(cfg Config, caps Capabilities) *Orchestrator {
	return &Orchestrator{Cfg: cfg, Caps: caps}
}

type platformResult struct {
	env  ResultEnvelope
	diag PlatformDiag
}

// abortDisabled marks a platform that was never attempted, as opposed
// to one abandoned mid-flight.
const abortDisabled = "platform disabled"

// emptyFromFailure reports whether a platform came back empty because
// something actually failed, as opposed to finding nothing or being
// deliberately disabled.
func emptyFromFailure(r platformResult) bool {
	if len(r.env.Results) > 0 {
		return false
	}
	if r.diag.Aborted != "" && r.diag.Aborted != abortDisabled {
		return true
	}
	for _, st := range r.diag.Stages {
		if len(st.Failures) > 0 {
			return true
		}
	}
	return false
}

// Search runs both platform pipelines concurrently and merges their
// envelopes. Platform failures never fail the search: a platform that
// errors out or runs past the deadline contributes an empty envelope
// and a diagnostic. The only hard error is ErrEmptyQuery.
func (o *Orchestrator) Search(ctx context.Context, query string, opts Options) (SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchResponse{}, ErrEmptyQuery
	}

	started := time.Now()
	ctx, cancel := context.WithTimeout(ctx, o.Cfg.Timeout)
	defer cancel()

	twitchCh := o.launch(ctx, PlatformTwitch, o.Caps.Twitch, query)
	youtubeCh := o.launch(ctx, PlatformYouTube, o.Caps.YouTube, query)
	twitch := <-twitchCh
	youtube := <-youtubeCh

	resp := SearchResponse{
		Twitch:  twitch.env,
		YouTube: youtube.env,
		Total:   len(twitch.env.Results) + len(youtube.env.Results),
		Elapsed: time.Since(started),
	}
	if opts.Debug {
		resp.Diagnostics = &Diagnostics{Twitch: twitch.diag, YouTube: youtube.diag}
	}

	if empty, other := emptyFromFailure(twitch), len(youtube.env.Results); empty && other > 0 {
		slog.Warn("partial results", slog.String("failed_platform", string(PlatformTwitch)), slog.String("query", query))
	} else if empty, other := emptyFromFailure(youtube), len(twitch.env.Results); empty && other > 0 {
		slog.Warn("partial results", slog.String("failed_platform", string(PlatformYouTube)), slog.String("query", query))
	}

	slog.Info("vtuber search done",
		slog.String("query", query),
		slog.Int("twitch", len(twitch.env.Results)),
		slog.Int("youtube", len(youtube.env.Results)),
		slog.Duration("elapsed", resp.Elapsed))
	return resp, nil
}

// launch starts one platform pipeline. The returned channel always
// delivers exactly one result, even when the platform is disabled or
// the context expires before the pipeline finishes.
func (o *Orchestrator) launch(ctx context.Context, platform Platform, cap Capability, query string) <-chan platformResult {
	out := make(chan platformResult, 1)

	diag := NewCollector(platform)
	if cap == nil {
		diag.Abort(abortDisabled)
		out <- platformResult{
			env:  ResultEnvelope{Platform: platform},
			diag: diag.Result(),
		}
		return out
	}

	done := make(chan platformResult, 1)
	go func() {
		runner := &Runner{
			Platform: platform,
			Cap:      cap,
			Scorer:   NewScorer(o.Cfg),
			Cfg:      o.Cfg,
			Diag:     diag,
		}
		stages := runner.Run(ctx, query)
		done <- platformResult{
			env:  Aggregate(platform, stages, o.Cfg.ResultCap),
			diag: diag.Result(),
		}
	}()

	go func() {
		select {
		case res := <-done:
			out <- res
		case <-ctx.Done():
			// The runner goroutine is abandoned; its capability calls see
			// the same cancelled context and return promptly. Reading the
			// collector here would race, so the abort gets a fresh one.
			slog.Warn("platform search timed out",
				slog.String("platform", string(platform)),
				slog.String("query", query))
			aborted := NewCollector(platform)
			aborted.Abort(ctx.Err().Error())
			out <- platformResult{
				env:  ResultEnvelope{Platform: platform},
				diag: aborted.Result(),
			}
		}
	}()
	return out
}
