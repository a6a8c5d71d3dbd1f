package platforms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_vtuber/internal/engine"
	"github.com/anatolykoptev/go_vtuber/internal/engine/vtubers"
)

const (
	ytInitialDataMarker = "var ytInitialData = "
	ytChannelsFilter    = "EgIQAg%3D%3D" // channels-only filter param
	ytScrapeMaxBody     = 4 * 1024 * 1024
)

// ytScraper is the keyless fallback: it fetches the YouTube results
// page and walks the embedded ytInitialData JSON for channelRenderer
// entries. No statistics beyond the rounded subscriber count are
// available this way. Prefers the browser TLS fingerprint; degrades to
// the plain HTTP client when no browser client was initialized.
type ytScraper struct {
	browser *engine.BrowserClient // may be nil
	http    *http.Client
}

// channelRenderer is the subset of the renderer the pipeline needs.
type channelRenderer struct {
	ChannelID string `json:"channelId"`
	Title     struct {
		SimpleText string `json:"simpleText"`
	} `json:"title"`
	DescriptionSnippet struct {
		Runs []struct {
			Text string `json:"text"`
		} `json:"runs"`
	} `json:"descriptionSnippet"`
	// Rounded display string like "1.2M subscribers".
	VideoCountText struct {
		SimpleText string `json:"simpleText"`
	} `json:"videoCountText"`
	Thumbnail struct {
		Thumbnails []struct {
			URL string `json:"url"`
		} `json:"thumbnails"`
	} `json:"thumbnail"`
	OwnerBadges []struct {
		MetadataBadgeRenderer struct {
			Style string `json:"style"`
		} `json:"metadataBadgeRenderer"`
	} `json:"ownerBadges"`
}

func (s *ytScraper) searchChannels(ctx context.Context, query string, limit int) ([]vtubers.Candidate, error) {
	engine.IncrYouTubeScrapeRequests()

	searchURL := "https://www.youtube.com/results?search_query=" + url.QueryEscape(query) + "&sp=" + ytChannelsFilter
	body, err := s.fetch(ctx, searchURL)
	if err != nil {
		return nil, err
	}
	if len(body) > ytScrapeMaxBody {
		body = body[:ytScrapeMaxBody]
	}

	idx := strings.Index(string(body), ytInitialDataMarker)
	if idx < 0 {
		return nil, fmt.Errorf("%w: ytInitialData not found in results page", vtubers.ErrTransient)
	}
	jsonData := extractJSON(body[idx+len(ytInitialDataMarker):])
	if jsonData == nil {
		return nil, fmt.Errorf("%w: failed to extract ytInitialData JSON", vtubers.ErrTransient)
	}
	return extractChannels(jsonData, limit), nil
}

func (s *ytScraper) fetch(ctx context.Context, searchURL string) ([]byte, error) {
	if s.browser != nil {
		body, status, err := s.browser.Do("GET", searchURL, engine.ChromeHeaders(), nil)
		if err != nil {
			return nil, fmt.Errorf("%w: youtube scrape: %v", vtubers.ErrTransient, err)
		}
		if status != 200 {
			return nil, fmt.Errorf("%w: youtube scrape status %d", vtubers.ErrTransient, status)
		}
		return body, nil
	}

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, "GET", searchURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.RandomUserAgent())
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		return s.http.Do(req)
	})
	if err != nil {
		return nil, classifyYouTube(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("%w: youtube scrape status %d", vtubers.ErrTransient, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, ytScrapeMaxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read youtube results page: %v", vtubers.ErrTransient, err)
	}
	return body, nil
}

// extractJSON extracts a complete JSON object starting at b[0] == '{' by tracking brace depth.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	var prev byte
	for i, c := range b {
		if inStr {
			if c == '"' && prev != '\\' {
				inStr = false
			}
		} else {
			switch c {
			case '"':
				inStr = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return b[:i+1]
				}
			}
		}
		prev = c
	}
	return nil
}

// extractChannels recursively walks ytInitialData JSON for channelRenderer entries.
func extractChannels(data []byte, limit int) []vtubers.Candidate {
	var results []vtubers.Candidate
	var walk func(v json.RawMessage)
	walk = func(v json.RawMessage) {
		if len(results) >= limit {
			return
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(v, &obj); err == nil {
			if raw, ok := obj["channelRenderer"]; ok {
				var cr channelRenderer
				if err := json.Unmarshal(raw, &cr); err == nil && cr.ChannelID != "" {
					results = append(results, rendererCandidate(cr))
					return
				}
			}
			for _, child := range obj {
				if len(results) >= limit {
					return
				}
				walk(child)
			}
			return
		}
		var arr []json.RawMessage
		if err := json.Unmarshal(v, &arr); err == nil {
			for _, item := range arr {
				if len(results) >= limit {
					return
				}
				walk(item)
			}
		}
	}
	walk(data)
	return results
}

func rendererCandidate(cr channelRenderer) vtubers.Candidate {
	var descParts []string
	for _, r := range cr.DescriptionSnippet.Runs {
		descParts = append(descParts, r.Text)
	}

	c := vtubers.Candidate{
		ID:          cr.ChannelID,
		DisplayName: cr.Title.SimpleText,
		// Snippet runs occasionally carry highlight markup.
		Description: engine.TruncateRunes(engine.CleanHTML(strings.Join(descParts, "")), 500, ""),
		URL:         "https://www.youtube.com/channel/" + cr.ChannelID,
		Subscribers: parseApproxCount(cr.VideoCountText.SimpleText),
	}
	if len(cr.Thumbnail.Thumbnails) > 0 {
		c.AvatarURL = cr.Thumbnail.Thumbnails[0].URL
	}
	for _, b := range cr.OwnerBadges {
		if strings.Contains(b.MetadataBadgeRenderer.Style, "VERIFIED") {
			c.Verified = true
		}
	}
	return c
}

// parseApproxCount parses rounded display counts like "1.2M subscribers"
// or "987 subscribers". Unparseable input means unknown.
func parseApproxCount(s string) int64 {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) == 0 {
		return 0
	}
	num := strings.ToUpper(fields[0])

	mult := int64(1)
	switch {
	case strings.HasSuffix(num, "K"):
		mult, num = 1_000, strings.TrimSuffix(num, "K")
	case strings.HasSuffix(num, "M"):
		mult, num = 1_000_000, strings.TrimSuffix(num, "M")
	case strings.HasSuffix(num, "B"):
		mult, num = 1_000_000_000, strings.TrimSuffix(num, "B")
	}

	f, err := strconv.ParseFloat(strings.ReplaceAll(num, ",", ""), 64)
	if err != nil || f < 0 {
		return 0
	}
	return int64(f * float64(mult))
}
