package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	TwitchClientID        string
	TwitchClientSecret    string
	YouTubeAPIKey         string
	YouTubeAPIKeyFallback string
	SearchTimeout         time.Duration
	StageLimit            int
	ResultCap             int
	TargetMin             int
	HTTPClient            *http.Client
	BrowserClient         *BrowserClient // nil = keyless YouTube fallback disabled
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (platforms).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	cfg = c
	Cfg = &cfg
}
