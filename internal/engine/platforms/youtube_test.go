package platforms

import (
	"errors"
	"testing"

	"github.com/anatolykoptev/go_vtuber/internal/engine/vtubers"
)

func TestYTAPIError(t *testing.T) {
	tests := []struct {
		name string
		code int
		body string
		want error
	}{
		{
			"quota exceeded",
			403,
			`{"error":{"errors":[{"reason":"quotaExceeded"}]}}`,
			vtubers.ErrTransient,
		},
		{
			"rate limit",
			403,
			`{"error":{"errors":[{"reason":"rateLimitExceeded"}]}}`,
			vtubers.ErrTransient,
		},
		{
			"invalid key",
			400,
			`{"error":{"errors":[{"reason":"keyInvalid"}]}}`,
			vtubers.ErrAuth,
		},
		{
			"api not enabled",
			403,
			`{"error":{"errors":[{"reason":"accessNotConfigured"}]}}`,
			vtubers.ErrAuth,
		},
		{
			"plain 403 without envelope",
			403,
			`forbidden`,
			vtubers.ErrAuth,
		},
		{
			"plain 404",
			404,
			``,
			vtubers.ErrTransient,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ytAPIError(tt.code, []byte(tt.body))
			if !errors.Is(got, tt.want) {
				t.Errorf("ytAPIError(%d, %s) = %v, want wrapped %v", tt.code, tt.body, got, tt.want)
			}
		})
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"12345", 12345},
		{"0", 0},
		{"", 0},
		{"not-a-number", 0},
		{"-5", 0},
	}
	for _, tt := range tests {
		if got := parseCount(tt.in); got != tt.want {
			t.Errorf("parseCount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestKeysOrder(t *testing.T) {
	yt := &YouTube{apiKey: "primary", fallbackKey: "secondary"}
	keys := yt.keys()
	if len(keys) != 2 || keys[0] != "primary" || keys[1] != "secondary" {
		t.Errorf("keys = %v, want [primary secondary]", keys)
	}

	yt = &YouTube{fallbackKey: "secondary"}
	keys = yt.keys()
	if len(keys) != 1 || keys[0] != "secondary" {
		t.Errorf("keys without primary = %v, want [secondary]", keys)
	}

	yt = &YouTube{}
	if keys := yt.keys(); len(keys) != 0 {
		t.Errorf("keys with no config = %v, want empty", keys)
	}
}
