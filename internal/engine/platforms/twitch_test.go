package platforms

import (
	"context"
	"errors"
	"testing"

	"github.com/anatolykoptev/go_vtuber/internal/engine"
	"github.com/anatolykoptev/go_vtuber/internal/engine/vtubers"
)

func TestHasTag(t *testing.T) {
	tests := []struct {
		name string
		tags []string
		want bool
	}{
		{"exact", []string{"VTuber", "English"}, true},
		{"case insensitive", []string{"vtuber"}, true},
		{"missing", []string{"Minecraft", "English"}, false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasTag(tt.tags, "VTUBER"); got != tt.want {
				t.Errorf("hasTag(%v) = %v, want %v", tt.tags, got, tt.want)
			}
		})
	}
}

func TestClassifyTwitch(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"retryable status exhausted", &engine.HTTPStatusError{StatusCode: 429}, vtubers.ErrTransient},
		{"server error exhausted", &engine.HTTPStatusError{StatusCode: 503}, vtubers.ErrTransient},
		{"network error", errors.New("dial tcp: connection refused"), vtubers.ErrTransient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyTwitch(tt.err); !errors.Is(got, tt.want) {
				t.Errorf("classifyTwitch(%v) = %v, want wrapped %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassifyTwitchPassesContextErrors(t *testing.T) {
	for _, err := range []error{context.Canceled, context.DeadlineExceeded} {
		if got := classifyTwitch(err); !errors.Is(got, err) {
			t.Errorf("classifyTwitch(%v) = %v, want unchanged", err, got)
		}
		if errors.Is(classifyTwitch(err), vtubers.ErrTransient) {
			t.Errorf("context error misclassified as transient")
		}
	}
}

func TestStatusError(t *testing.T) {
	tests := []struct {
		code int
		want error
	}{
		{401, vtubers.ErrAuth},
		{403, vtubers.ErrAuth},
		{400, vtubers.ErrTransient},
		{404, vtubers.ErrTransient},
	}
	for _, tt := range tests {
		got := statusError(vtubers.PlatformTwitch, tt.code, nil)
		if !errors.Is(got, tt.want) {
			t.Errorf("statusError(%d) = %v, want wrapped %v", tt.code, got, tt.want)
		}
	}
}

func TestLiveIDs(t *testing.T) {
	channels := []twitchChannel{
		{ID: "1", IsLive: true},
		{ID: "2", IsLive: false},
		{ID: "3", IsLive: true},
	}
	got := liveIDs(channels)
	if len(got) != 2 || got[0] != "1" || got[1] != "3" {
		t.Errorf("liveIDs = %v, want [1 3]", got)
	}
}
