package platforms

import "testing"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", `{"a":1};more`, `{"a":1}`},
		{"nested", `{"a":{"b":{"c":1}}}trailing`, `{"a":{"b":{"c":1}}}`},
		{"braces in strings", `{"a":"}{"}rest`, `{"a":"}{"}`},
		{"escaped quotes", `{"a":"\"}"}rest`, `{"a":"\"}"}`},
		{"not an object", `[1,2,3]`, ""},
		{"unterminated", `{"a":1`, ""},
		{"empty", ``, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractJSON([]byte(tt.in))
			if string(got) != tt.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

const ytInitialDataFixture = `{
  "contents": {
    "sectionListRenderer": {
      "contents": [
        {
          "itemSectionRenderer": {
            "contents": [
              {
                "channelRenderer": {
                  "channelId": "UCabc123",
                  "title": {"simpleText": "Gawr Gura Ch."},
                  "descriptionSnippet": {"runs": [{"text": "VTuber from "}, {"text": "<b>hololive EN</b>"}]},
                  "videoCountText": {"simpleText": "4.5M subscribers"},
                  "thumbnail": {"thumbnails": [{"url": "//yt3.example/avatar.jpg"}]},
                  "ownerBadges": [{"metadataBadgeRenderer": {"style": "BADGE_STYLE_TYPE_VERIFIED"}}]
                }
              },
              {
                "videoRenderer": {"videoId": "ignored"}
              },
              {
                "channelRenderer": {
                  "channelId": "UCdef456",
                  "title": {"simpleText": "Small Indie VTuber"},
                  "videoCountText": {"simpleText": "987 subscribers"}
                }
              }
            ]
          }
        }
      ]
    }
  }
}`

func TestExtractChannels(t *testing.T) {
	channels := extractChannels([]byte(ytInitialDataFixture), 10)
	if len(channels) != 2 {
		t.Fatalf("got %d channels, want 2", len(channels))
	}

	first := channels[0]
	if first.ID != "UCabc123" {
		t.Errorf("ID = %q, want UCabc123", first.ID)
	}
	if first.DisplayName != "Gawr Gura Ch." {
		t.Errorf("DisplayName = %q", first.DisplayName)
	}
	if first.Description != "VTuber from hololive EN" {
		t.Errorf("Description = %q", first.Description)
	}
	if first.Subscribers != 4_500_000 {
		t.Errorf("Subscribers = %d, want 4500000", first.Subscribers)
	}
	if !first.Verified {
		t.Error("verified badge not detected")
	}
	if first.URL != "https://www.youtube.com/channel/UCabc123" {
		t.Errorf("URL = %q", first.URL)
	}

	second := channels[1]
	if second.ID != "UCdef456" || second.Subscribers != 987 || second.Verified {
		t.Errorf("second channel = %+v", second)
	}
}

func TestExtractChannelsRespectsLimit(t *testing.T) {
	channels := extractChannels([]byte(ytInitialDataFixture), 1)
	if len(channels) != 1 {
		t.Fatalf("got %d channels, want 1", len(channels))
	}
}

func TestParseApproxCount(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"4.5M subscribers", 4_500_000},
		{"1.2K subscribers", 1_200},
		{"987 subscribers", 987},
		{"1B subscribers", 1_000_000_000},
		{"2,345 subscribers", 2345},
		{"", 0},
		{"subscribers", 0},
	}
	for _, tt := range tests {
		if got := parseApproxCount(tt.in); got != tt.want {
			t.Errorf("parseApproxCount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
