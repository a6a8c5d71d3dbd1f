// Package platforms implements the Twitch and YouTube search backends
// behind the vtubers.Capability interface. Each client owns its auth,
// retries, and rate limiting.
package platforms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_vtuber/internal/engine"
	"github.com/anatolykoptev/go_vtuber/internal/engine/vtubers"
)

const (
	twitchOAuthURL = "https://id.twitch.tv/oauth2/token"
	twitchAPIBase  = "https://api.twitch.tv/helix"

	// Helix caps both endpoints at 100 entries per call.
	twitchMaxFirst   = 100
	twitchUsersBatch = 100

	// Refresh the app token this long before Twitch expires it.
	twitchTokenMargin = 5 * time.Minute
)

// Twitch searches channels through the Helix API using an app access
// token (client-credentials grant). Safe for concurrent use.
type Twitch struct {
	clientID     string
	clientSecret string
	http         *http.Client
	limiter      *rate.Limiter

	token struct {
		sync.Mutex
		value     string
		expiresAt time.Time
	}
}

// NewTwitch builds a Helix client. A nil client falls back to the
// engine-wide one from engine.Cfg. The limiter stays well under the
// 800-points-per-minute app-token bucket.
func NewTwitch(clientID, clientSecret string, client *http.Client) *Twitch {
	if client == nil {
		client = engine.Cfg.HTTPClient
	}
	return &Twitch{
		clientID:     clientID,
		clientSecret: clientSecret,
		http:         client,
		limiter:      rate.NewLimiter(rate.Every(100*time.Millisecond), 5),
	}
}

// --- Helix response types ---

type twitchTokenResp struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type twitchSearchResp struct {
	Data []twitchChannel `json:"data"`
}

type twitchChannel struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	Login       string   `json:"broadcaster_login"`
	Language    string   `json:"broadcaster_language"`
	Title       string   `json:"title"`
	Tags        []string `json:"tags"`
	IsLive      bool     `json:"is_live"`
	Thumbnail   string   `json:"thumbnail_url"`
	StartedAt   string   `json:"started_at"` // RFC3339, empty when offline
}

type twitchUsersResp struct {
	Data []twitchUser `json:"data"`
}

type twitchUser struct {
	ID              string `json:"id"`
	Description     string `json:"description"`
	BroadcasterType string `json:"broadcaster_type"` // "partner", "affiliate", or ""
	ProfileImageURL string `json:"profile_image_url"`
}

type twitchStreamsResp struct {
	Data []twitchStream `json:"data"`
}

type twitchStream struct {
	UserID      string `json:"user_id"`
	ViewerCount int64  `json:"viewer_count"`
}

// ByTag searches live channels and keeps those actually carrying the tag.
// Helix has no tag-scoped endpoint, so the tag doubles as the query and
// the returned tag list is filtered client-side.
func (t *Twitch) ByTag(ctx context.Context, tag string, limit int) ([]vtubers.Candidate, error) {
	channels, err := t.searchChannels(ctx, tag, limit, true)
	if err != nil {
		return nil, err
	}
	tagged := channels[:0]
	for _, ch := range channels {
		if hasTag(ch.Tags, tag) {
			tagged = append(tagged, ch)
		}
	}
	return t.enrich(ctx, tagged)
}

// ByName searches channels by name, live or not.
func (t *Twitch) ByName(ctx context.Context, query string, limit int) ([]vtubers.Candidate, error) {
	channels, err := t.searchChannels(ctx, query, limit, false)
	if err != nil {
		return nil, err
	}
	return t.enrich(ctx, channels)
}

// ByKeyword searches live channels for a broader keyword.
func (t *Twitch) ByKeyword(ctx context.Context, keyword string, limit int) ([]vtubers.Candidate, error) {
	channels, err := t.searchChannels(ctx, keyword, limit, true)
	if err != nil {
		return nil, err
	}
	return t.enrich(ctx, channels)
}

func (t *Twitch) searchChannels(ctx context.Context, query string, limit int, liveOnly bool) ([]twitchChannel, error) {
	if limit <= 0 || limit > twitchMaxFirst {
		limit = twitchMaxFirst
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("first", fmt.Sprintf("%d", limit))
	if liveOnly {
		params.Set("live_only", "true")
	}

	var result twitchSearchResp
	if err := t.helixGet(ctx, "/search/channels", params, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// enrich joins search hits with /users (descriptions, partner status)
// and /streams (live viewer counts) and converts to candidates.
// Enrichment failures degrade to un-enriched candidates.
func (t *Twitch) enrich(ctx context.Context, channels []twitchChannel) ([]vtubers.Candidate, error) {
	users := t.lookupUsers(ctx, channelIDs(channels))
	viewers := t.lookupViewers(ctx, liveIDs(channels))

	out := make([]vtubers.Candidate, 0, len(channels))
	for _, ch := range channels {
		c := vtubers.Candidate{
			ID:          ch.ID,
			DisplayName: ch.DisplayName,
			Title:       ch.Title,
			Tags:        ch.Tags,
			URL:         "https://www.twitch.tv/" + ch.Login,
			Language:    engine.NormLang(ch.Language),
			Live:        ch.IsLive,
			Viewers:     viewers[ch.ID],
		}
		if ch.IsLive && ch.StartedAt != "" {
			if ts, err := time.Parse(time.RFC3339, ch.StartedAt); err == nil {
				c.LastActive = ts
			}
		}
		if u, ok := users[ch.ID]; ok {
			c.Description = u.Description
			c.AvatarURL = u.ProfileImageURL
			c.Verified = u.BroadcasterType != ""
		}
		out = append(out, c)
	}
	return out, nil
}

// lookupUsers fetches user records in batches of 100. Failures are
// logged by the caller's diagnostics indirectly; here they just leave
// the map sparse.
func (t *Twitch) lookupUsers(ctx context.Context, ids []string) map[string]twitchUser {
	users := make(map[string]twitchUser, len(ids))
	for start := 0; start < len(ids); start += twitchUsersBatch {
		end := min(start+twitchUsersBatch, len(ids))
		params := url.Values{}
		for _, id := range ids[start:end] {
			params.Add("id", id)
		}
		var result twitchUsersResp
		if err := t.helixGet(ctx, "/users", params, &result); err != nil {
			continue
		}
		for _, u := range result.Data {
			users[u.ID] = u
		}
	}
	return users
}

// lookupViewers fetches live viewer counts for the given user IDs.
func (t *Twitch) lookupViewers(ctx context.Context, ids []string) map[string]int64 {
	viewers := make(map[string]int64, len(ids))
	for start := 0; start < len(ids); start += twitchUsersBatch {
		end := min(start+twitchUsersBatch, len(ids))
		params := url.Values{}
		for _, id := range ids[start:end] {
			params.Add("user_id", id)
		}
		var result twitchStreamsResp
		if err := t.helixGet(ctx, "/streams", params, &result); err != nil {
			continue
		}
		for _, s := range result.Data {
			viewers[s.UserID] = s.ViewerCount
		}
	}
	return viewers
}

// helixGet performs one authenticated Helix GET and decodes the body.
// A 401 invalidates the cached token and retries once with a fresh one.
func (t *Twitch) helixGet(ctx context.Context, path string, params url.Values, out any) error {
	retried := false
	for {
		if err := t.limiter.Wait(ctx); err != nil {
			return err
		}
		engine.IncrTwitchAPIRequests()

		token, err := t.appToken(ctx)
		if err != nil {
			engine.IncrTwitchAPIErrors()
			return err
		}

		apiURL := twitchAPIBase + path + "?" + params.Encode()
		resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
			req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
			if err != nil {
				return nil, err
			}
			req.Header.Set("Client-Id", t.clientID)
			req.Header.Set("Authorization", "Bearer "+token)
			req.Header.Set("User-Agent", engine.UserAgentBot)
			return t.http.Do(req)
		})
		if err != nil {
			engine.IncrTwitchAPIErrors()
			return classifyTwitch(err)
		}

		if resp.StatusCode == http.StatusUnauthorized && !retried {
			resp.Body.Close()
			t.invalidateToken()
			retried = true
			continue
		}
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			engine.IncrTwitchAPIErrors()
			return statusError(vtubers.PlatformTwitch, resp.StatusCode, body)
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			engine.IncrTwitchAPIErrors()
			return fmt.Errorf("decode helix %s: %w", path, err)
		}
		return nil
	}
}

// appToken returns the cached app access token, refreshing it under the
// lock when missing or close to expiry.
func (t *Twitch) appToken(ctx context.Context) (string, error) {
	t.token.Lock()
	defer t.token.Unlock()

	if t.token.value != "" && time.Until(t.token.expiresAt) > twitchTokenMargin {
		return t.token.value, nil
	}
	engine.IncrTwitchTokenRefreshes()

	form := url.Values{}
	form.Set("client_id", t.clientID)
	form.Set("client_secret", t.clientSecret)
	form.Set("grant_type", "client_credentials")

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, "POST", twitchOAuthURL, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return t.http.Do(req)
	})
	if err != nil {
		return "", classifyTwitch(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: twitch oauth %d: %s", vtubers.ErrAuth, resp.StatusCode, string(body))
	}

	var tok twitchTokenResp
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("decode twitch token: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: twitch oauth returned empty token", vtubers.ErrAuth)
	}

	t.token.value = tok.AccessToken
	t.token.expiresAt = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return t.token.value, nil
}

func (t *Twitch) invalidateToken() {
	t.token.Lock()
	t.token.value = ""
	t.token.Unlock()
}

// classifyTwitch maps exhausted-retry and transport errors onto the
// pipeline taxonomy.
func classifyTwitch(err error) error {
	var httpErr *engine.HTTPStatusError
	if errors.As(err, &httpErr) {
		return fmt.Errorf("%w: twitch %d after retries", vtubers.ErrTransient, httpErr.StatusCode)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: twitch: %v", vtubers.ErrTransient, err)
}

// statusError maps a non-retryable HTTP status onto the taxonomy.
func statusError(platform vtubers.Platform, code int, body []byte) error {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s %d: %s", vtubers.ErrAuth, platform, code, string(body))
	default:
		return fmt.Errorf("%w: %s %d: %s", vtubers.ErrTransient, platform, code, string(body))
	}
}

func hasTag(tags []string, want string) bool {
	for _, tag := range tags {
		if strings.EqualFold(tag, want) {
			return true
		}
	}
	return false
}

func channelIDs(channels []twitchChannel) []string {
	ids := make([]string, 0, len(channels))
	for _, ch := range channels {
		ids = append(ids, ch.ID)
	}
	return ids
}

func liveIDs(channels []twitchChannel) []string {
	var ids []string
	for _, ch := range channels {
		if ch.IsLive {
			ids = append(ids, ch.ID)
		}
	}
	return ids
}
