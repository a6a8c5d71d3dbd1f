package platforms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_vtuber/internal/engine"
	"github.com/anatolykoptev/go_vtuber/internal/engine/vtubers"
)

const (
	ytDataAPIBase = "https://www.googleapis.com/youtube/v3"

	// search.list caps maxResults at 50, channels.list at 50 IDs.
	ytMaxResults    = 50
	ytChannelsBatch = 50
)

// YouTube searches channels through the Data API v3, falling back to
// the secondary key on quota errors and to keyless scraping when no key
// works at all. Safe for concurrent use.
type YouTube struct {
	apiKey      string
	fallbackKey string
	http        *http.Client
	limiter     *rate.Limiter
	scraper     *ytScraper
}

// NewYouTube builds a Data API client. A nil client falls back to the
// engine-wide one from engine.Cfg; a nil browser makes the keyless
// fallback use that plain HTTP client instead of the
// browser-fingerprint one.
func NewYouTube(apiKey, fallbackKey string, client *http.Client, browser *engine.BrowserClient) *YouTube {
	if client == nil {
		client = engine.Cfg.HTTPClient
	}
	return &YouTube{
		apiKey:      apiKey,
		fallbackKey: fallbackKey,
		http:        client,
		limiter:     rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
		scraper:     &ytScraper{browser: browser, http: client},
	}
}

// --- Data API response types ---

type ytSearchResp struct {
	Items []ytSearchItem `json:"items"`
}

type ytSearchItem struct {
	ID struct {
		ChannelID string `json:"channelId"`
	} `json:"id"`
	Snippet struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		PublishedAt string `json:"publishedAt"`
	} `json:"snippet"`
}

type ytChannelsResp struct {
	Items []ytChannelItem `json:"items"`
}

type ytChannelItem struct {
	ID      string `json:"id"`
	Snippet struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		CustomURL   string `json:"customUrl"`
		Country     string `json:"country"`
		Thumbnails  struct {
			Default struct {
				URL string `json:"url"`
			} `json:"default"`
		} `json:"thumbnails"`
	} `json:"snippet"`
	Statistics struct {
		// The Data API serialises counts as decimal strings.
		ViewCount             string `json:"viewCount"`
		SubscriberCount       string `json:"subscriberCount"`
		HiddenSubscriberCount bool   `json:"hiddenSubscriberCount"`
	} `json:"statistics"`
}

// ytErrorResp is the Data API error envelope, used to tell quota
// exhaustion from bad credentials on a 403/400.
type ytErrorResp struct {
	Error struct {
		Errors []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

// ByTag searches channels using the tag as a plain query. YouTube has
// no channel tags, so text search is the closest capability.
func (y *YouTube) ByTag(ctx context.Context, tag string, limit int) ([]vtubers.Candidate, error) {
	return y.search(ctx, tag, limit)
}

// ByName searches channels by name.
func (y *YouTube) ByName(ctx context.Context, query string, limit int) ([]vtubers.Candidate, error) {
	return y.search(ctx, query, limit)
}

// ByKeyword searches channels for a broader keyword.
func (y *YouTube) ByKeyword(ctx context.Context, keyword string, limit int) ([]vtubers.Candidate, error) {
	return y.search(ctx, keyword, limit)
}

// search tries the primary key, then the fallback key on quota errors,
// then the keyless scraper. Scraped results skip statistics enrichment.
func (y *YouTube) search(ctx context.Context, query string, limit int) ([]vtubers.Candidate, error) {
	if limit <= 0 || limit > ytMaxResults {
		limit = ytMaxResults
	}

	var lastErr error
	for i, key := range y.keys() {
		if i > 0 {
			engine.IncrYouTubeKeyFallbacks()
			slog.Debug("youtube primary key failed, trying fallback", slog.Any("error", lastErr))
		}
		items, err := y.dataSearch(ctx, query, limit, key)
		if err == nil {
			return y.enrich(ctx, items, key)
		}
		lastErr = err
		if errors.Is(err, vtubers.ErrAuth) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			break
		}
	}

	if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
		return nil, lastErr
	}

	if lastErr != nil {
		slog.Debug("youtube data API unavailable, scraping", slog.Any("error", lastErr))
	}
	candidates, err := y.scraper.searchChannels(ctx, query, limit)
	if err == nil {
		return candidates, nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%v; scrape: %w", lastErr, err)
	}
	return nil, err
}

func (y *YouTube) keys() []string {
	var keys []string
	if y.apiKey != "" {
		keys = append(keys, y.apiKey)
	}
	if y.fallbackKey != "" {
		keys = append(keys, y.fallbackKey)
	}
	return keys
}

func (y *YouTube) dataSearch(ctx context.Context, query string, limit int, key string) ([]ytSearchItem, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "channel")
	params.Set("maxResults", strconv.Itoa(limit))
	params.Set("key", key)

	var result ytSearchResp
	if err := y.dataGet(ctx, "/search", params, &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

// enrich joins search hits with channels.list statistics. Enrichment
// failures degrade to snippet-only candidates.
func (y *YouTube) enrich(ctx context.Context, items []ytSearchItem, key string) ([]vtubers.Candidate, error) {
	byID := make(map[string]ytSearchItem, len(items))
	var ids []string
	for _, item := range items {
		if item.ID.ChannelID == "" {
			continue
		}
		byID[item.ID.ChannelID] = item
		ids = append(ids, item.ID.ChannelID)
	}

	details := make(map[string]ytChannelItem, len(ids))
	for start := 0; start < len(ids); start += ytChannelsBatch {
		end := min(start+ytChannelsBatch, len(ids))
		params := url.Values{}
		params.Set("part", "snippet,statistics")
		params.Set("id", strings.Join(ids[start:end], ","))
		params.Set("key", key)

		var result ytChannelsResp
		if err := y.dataGet(ctx, "/channels", params, &result); err != nil {
			slog.Debug("youtube channels.list failed", slog.Any("error", err))
			continue
		}
		for _, item := range result.Items {
			details[item.ID] = item
		}
	}

	out := make([]vtubers.Candidate, 0, len(ids))
	for _, id := range ids {
		item := byID[id]
		c := vtubers.Candidate{
			ID:          id,
			DisplayName: item.Snippet.Title,
			Description: item.Snippet.Description,
			URL:         "https://www.youtube.com/channel/" + id,
		}
		if d, ok := details[id]; ok {
			// channels.list carries the full description; search snippets truncate.
			c.Description = d.Snippet.Description
			c.AvatarURL = d.Snippet.Thumbnails.Default.URL
			c.Language = engine.NormLang(d.Snippet.Country)
			if d.Snippet.CustomURL != "" {
				c.URL = "https://www.youtube.com/" + d.Snippet.CustomURL
			}
			c.Viewers = parseCount(d.Statistics.ViewCount)
			if !d.Statistics.HiddenSubscriberCount {
				c.Subscribers = parseCount(d.Statistics.SubscriberCount)
			}
		}
		out = append(out, c)
	}
	return out, nil
}

// dataGet performs one Data API GET and decodes the body, classifying
// API errors onto the pipeline taxonomy.
func (y *YouTube) dataGet(ctx context.Context, path string, params url.Values, out any) error {
	if err := y.limiter.Wait(ctx); err != nil {
		return err
	}
	engine.IncrYouTubeAPIRequests()

	apiURL := ytDataAPIBase + path + "?" + params.Encode()
	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentBot)
		return y.http.Do(req)
	})
	if err != nil {
		engine.IncrYouTubeAPIErrors()
		return classifyYouTube(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		engine.IncrYouTubeAPIErrors()
		return ytAPIError(resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		engine.IncrYouTubeAPIErrors()
		return fmt.Errorf("decode youtube %s: %w", path, err)
	}
	return nil
}

// ytAPIError distinguishes quota exhaustion (transient, worth a key
// fallback) from credential problems on the same status codes.
func ytAPIError(code int, body []byte) error {
	var envelope ytErrorResp
	_ = json.Unmarshal(body, &envelope)
	for _, e := range envelope.Error.Errors {
		switch e.Reason {
		case "quotaExceeded", "dailyLimitExceeded", "rateLimitExceeded", "userRateLimitExceeded":
			return fmt.Errorf("%w: youtube quota: %s", vtubers.ErrTransient, e.Reason)
		case "keyInvalid", "keyExpired", "accessNotConfigured", "forbidden":
			return fmt.Errorf("%w: youtube key: %s", vtubers.ErrAuth, e.Reason)
		}
	}
	return statusError(vtubers.PlatformYouTube, code, body)
}

func classifyYouTube(err error) error {
	var httpErr *engine.HTTPStatusError
	if errors.As(err, &httpErr) {
		return fmt.Errorf("%w: youtube %d after retries", vtubers.ErrTransient, httpErr.StatusCode)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: youtube: %v", vtubers.ErrTransient, err)
}

// parseCount parses the Data API's decimal-string counters; malformed
// or empty values mean unknown.
func parseCount(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
