// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "novelist-almanac/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries bounds retries on rate-limited responses. Zero uses the default.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// WikiConfig holds settings for the MediaWiki API client.
type WikiConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// APIURL is the Action API endpoint (default https://ja.wikipedia.org/w/api.php).
	APIURL string `json:"api_url" yaml:"api_url" mapstructure:"api_url"`

	// SectionKeyword selects the births section by heading text (default 誕生日).
	SectionKeyword string `json:"section_keyword" yaml:"section_keyword" mapstructure:"section_keyword"`
}

// SearchConfig holds settings for the search stage.
type SearchConfig struct {
	// Keyword is matched against each person's description (default 小説家).
	Keyword string `json:"keyword" yaml:"keyword" mapstructure:"keyword"`

	// MaxResults caps the number of cards (default 30).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// ThumbnailSize is the requested thumbnail width in pixels (default 96).
	ThumbnailSize int `json:"thumbnail_size" yaml:"thumbnail_size" mapstructure:"thumbnail_size"`

	// Concurrency bounds parallel thumbnail lookups (default 4).
	Concurrency int `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency"`
}

// LibraryConfig holds settings for the local SQLite library.
type LibraryConfig struct {
	// Dir is the directory containing almanac.db and exports.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// MaxResults is the default maximum number of query results (default 50).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// OutputFormat selects how search results are rendered.
type OutputFormat string

const (
	FormatCards OutputFormat = "cards"
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatHTML  OutputFormat = "html"
)

// RenderConfig holds settings for the renderer.
type RenderConfig struct {
	// Format selects the output format.
	Format OutputFormat `json:"format" yaml:"format" mapstructure:"format"`

	// PlaceholderImage is used when a card has no thumbnail.
	PlaceholderImage string `json:"placeholder_image" yaml:"placeholder_image" mapstructure:"placeholder_image"`
}

// Config groups all stage configurations.
type Config struct {
	Wiki    WikiConfig    `json:"wiki" yaml:"wiki" mapstructure:"wiki"`
	Search  SearchConfig  `json:"search" yaml:"search" mapstructure:"search"`
	Library LibraryConfig `json:"library" yaml:"library" mapstructure:"library"`
	Render  RenderConfig  `json:"render" yaml:"render" mapstructure:"render"`
}
