// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "recipe-finder/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for the page downloader.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// HostInterval is the minimum delay between requests to one host
	// (default 4s). Jitter up to HostJitter is added on top.
	HostInterval time.Duration `json:"host_interval" yaml:"host_interval"`

	// HostJitter is the maximum random addition to HostInterval (default 4s).
	HostJitter time.Duration `json:"host_jitter" yaml:"host_jitter"`

	// MaxRetries is the retry budget for HTTP 429 responses (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// CrawlConfig holds settings for the pipeline daemon.
type CrawlConfig struct {
	Fetch FetchConfig `yaml:",inline"`

	// DownloadWorkers bounds concurrent page downloads (default 4).
	DownloadWorkers int `json:"download_workers" yaml:"download_workers"`

	// StageWorkers bounds the pages claimed per poll by the CPU-bound
	// stages (extraction, parsing, following; default 4).
	StageWorkers int `json:"stage_workers" yaml:"stage_workers"`

	// PollInterval is how often idle stages re-check the store for
	// claimable pages (default 1s).
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`

	// StatsInterval is how often a statistics snapshot is recorded
	// (default 30s).
	StatsInterval time.Duration `json:"stats_interval" yaml:"stats_interval"`
}

// StoreConfig holds settings for the SQLite store.
type StoreConfig struct {
	// DataDir is the base directory holding the database (default "data").
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// MaxResults is the default cap on search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// RefineConfig holds settings for LLM gap-filling of incomplete recipes.
type RefineConfig struct {
	// Model is the chat model identifier (e.g. "gpt-4o-mini").
	Model string `json:"model" yaml:"model"`

	// APIKey authenticates against the OpenAI-compatible API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the API endpoint, for self-hosted gateways.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// MaxConcurrent bounds parallel completion requests (default 2).
	MaxConcurrent int `json:"max_concurrent" yaml:"max_concurrent"`
}
