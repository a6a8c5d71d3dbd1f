package vtubers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchConfig() Config {
	cfg := stageConfig()
	cfg.Timeout = 5 * time.Second
	return cfg
}

func TestSearchEmptyQuery(t *testing.T) {
	orch := NewOrchestrator(searchConfig(), Capabilities{})
	for _, q := range []string{"", "   ", "\t\n"} {
		_, err := orch.Search(context.Background(), q, Options{})
		assert.ErrorIs(t, err, ErrEmptyQuery, "query %q", q)
	}
}

func TestSearchMergesBothPlatforms(t *testing.T) {
	twitch := &stubCap{tag: []Candidate{vt("t1", "gura one"), vt("t2", "gura two"), vt("t3", "gura three")}}
	youtube := &stubCap{tag: []Candidate{vt("y1", "gura four"), vt("y2", "gura five"), vt("y3", "gura six")}}
	orch := NewOrchestrator(searchConfig(), Capabilities{Twitch: twitch, YouTube: youtube})

	resp, err := orch.Search(context.Background(), "gura", Options{})
	require.NoError(t, err)

	assert.Len(t, resp.Twitch.Results, 3)
	assert.Len(t, resp.YouTube.Results, 3)
	assert.Equal(t, 6, resp.Total)
	assert.Equal(t, PlatformTwitch, resp.Twitch.Platform)
	assert.Equal(t, PlatformYouTube, resp.YouTube.Platform)
	assert.Nil(t, resp.Diagnostics)
	assert.Greater(t, resp.Elapsed, time.Duration(0))
}

func TestSearchIsolatesPlatformFailure(t *testing.T) {
	twitch := &stubCap{tagErr: ErrTransient, nameErr: ErrTransient, keywordErr: ErrTransient}
	youtube := &stubCap{tag: []Candidate{vt("y1", "gura one"), vt("y2", "gura two"), vt("y3", "gura three")}}
	orch := NewOrchestrator(searchConfig(), Capabilities{Twitch: twitch, YouTube: youtube})

	resp, err := orch.Search(context.Background(), "gura", Options{Debug: true})
	require.NoError(t, err)

	assert.Empty(t, resp.Twitch.Results)
	assert.Len(t, resp.YouTube.Results, 3)
	assert.Equal(t, 3, resp.Total)

	require.NotNil(t, resp.Diagnostics)
	require.Len(t, resp.Diagnostics.Twitch.Stages, 3)
	assert.NotEmpty(t, resp.Diagnostics.Twitch.Stages[0].Failures)
}

func TestSearchDisabledPlatform(t *testing.T) {
	youtube := &stubCap{tag: []Candidate{vt("y1", "gura one")}}
	orch := NewOrchestrator(searchConfig(), Capabilities{YouTube: youtube})

	resp, err := orch.Search(context.Background(), "gura", Options{Debug: true})
	require.NoError(t, err)

	assert.Empty(t, resp.Twitch.Results)
	require.NotNil(t, resp.Diagnostics)
	assert.Equal(t, "platform disabled", resp.Diagnostics.Twitch.Aborted)
	assert.NotEmpty(t, resp.YouTube.Results)
}

func TestSearchDebugAttachesDiagnostics(t *testing.T) {
	twitch := &stubCap{tag: []Candidate{vt("t1", "gura one"), vt("t2", "gura two"), vt("t3", "gura three")}}
	orch := NewOrchestrator(searchConfig(), Capabilities{Twitch: twitch})

	resp, err := orch.Search(context.Background(), "gura", Options{Debug: true})
	require.NoError(t, err)
	require.NotNil(t, resp.Diagnostics)

	diag := resp.Diagnostics.Twitch
	require.NotEmpty(t, diag.Stages)
	assert.Equal(t, StageTags, diag.Stages[0].Stage)
	assert.Equal(t, 3, diag.Stages[0].Raw)
	assert.Equal(t, 3, diag.Stages[0].Accepted)
}

func TestSearchTimeoutYieldsEmptyEnvelope(t *testing.T) {
	cfg := searchConfig()
	cfg.Timeout = 20 * time.Millisecond

	slow := &slowCap{delay: 500 * time.Millisecond}
	orch := NewOrchestrator(cfg, Capabilities{Twitch: slow})

	resp, err := orch.Search(context.Background(), "gura", Options{Debug: true})
	require.NoError(t, err)

	assert.Empty(t, resp.Twitch.Results)
	require.NotNil(t, resp.Diagnostics)
	assert.NotEmpty(t, resp.Diagnostics.Twitch.Aborted)
}

func TestSearchClipChannelAcceptedAtTagStage(t *testing.T) {
	twitch := &stubCap{tag: []Candidate{{
		ID:          "clips",
		DisplayName: "GawrGuraClips",
		Description: "vtuber clips",
		Live:        true,
	}}}
	orch := NewOrchestrator(searchConfig(), Capabilities{Twitch: twitch})

	resp, err := orch.Search(context.Background(), "Gawr Gura", Options{})
	require.NoError(t, err)
	require.Len(t, resp.Twitch.Results, 1)

	got := resp.Twitch.Results[0]
	assert.Equal(t, MatchContains, got.MatchKind)
	assert.Equal(t, StageTags, got.Stage)
	assert.GreaterOrEqual(t, got.Score, 3.0) // keyword tier plus live bonus
}

func TestSearchFanChannelRejectedBelowThreshold(t *testing.T) {
	// Name matches but nothing marks it as a virtual persona.
	youtube := &stubCap{
		name: []Candidate{{ID: "fan", DisplayName: "Gura Gawr Fanchannel", Description: "clips and highlights"}},
	}
	cfg := searchConfig()
	orch := NewOrchestrator(cfg, Capabilities{YouTube: youtube})

	resp, err := orch.Search(context.Background(), "Gawr Gura", Options{})
	require.NoError(t, err)
	assert.Empty(t, resp.YouTube.Results)
	assert.False(t, resp.YouTube.Truncated)
	assert.Equal(t, 0, resp.Total)
}

// slowCap ignores cancellation and sleeps through every call, forcing
// the orchestrator down its timeout path.
type slowCap struct {
	delay time.Duration
}

func (s *slowCap) wait() ([]Candidate, error) {
	time.Sleep(s.delay)
	return nil, nil
}

func (s *slowCap) ByTag(ctx context.Context, tag string, limit int) ([]Candidate, error) {
	return s.wait()
}

func (s *slowCap) ByName(ctx context.Context, query string, limit int) ([]Candidate, error) {
	return s.wait()
}

func (s *slowCap) ByKeyword(ctx context.Context, keyword string, limit int) ([]Candidate, error) {
	return s.wait()
}
