// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/novelist-almanac/internal/extract"
	"github.com/pdiddy/novelist-almanac/internal/render"
	"github.com/pdiddy/novelist-almanac/internal/secrets"
	"github.com/pdiddy/novelist-almanac/internal/wiki"
	"github.com/pdiddy/novelist-almanac/pkg/types"
)

const envPrefix = "NOVELIST_ALMANAC"

// setDefaults registers every configuration key so that config files and
// NOVELIST_ALMANAC_* variables can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "warn")

	v.SetDefault("wiki.api_url", wiki.DefaultAPIURL)
	v.SetDefault("wiki.section_keyword", wiki.DefaultSectionKeyword)
	v.SetDefault("wiki.timeout", "30s")
	v.SetDefault("wiki.user_agent", "")
	v.SetDefault("wiki.max_retries", 0)

	v.SetDefault("search.keyword", extract.DefaultKeyword)
	v.SetDefault("search.max_results", extract.DefaultLimit)
	v.SetDefault("search.thumbnail_size", wiki.DefaultThumbnailSize)
	v.SetDefault("search.concurrency", 4)

	v.SetDefault("library.dir", "library")
	v.SetDefault("library.max_results", 50)

	v.SetDefault("render.format", string(types.FormatCards))
	v.SetDefault("render.placeholder_image", render.DefaultPlaceholder)
}

// bindFlag ties a viper key to a flag. Binding only fails for a nil flag,
// which is a programming error.
func bindFlag(key string, f *pflag.Flag) {
	if err := viper.BindPFlag(key, f); err != nil {
		panic(fmt.Sprintf("binding flag for %s: %v", key, err))
	}
}

// configFrom decodes v into a Config and fills the User-Agent from the
// build version and the wikipedia-contact secret.
func configFrom(v *viper.Viper, secretValues map[string]string) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	ua := cfg.Wiki.UserAgent
	if ua == "" {
		ua = "novelist-almanac/" + version
	}
	cfg.Wiki.UserAgent = secrets.UserAgent(ua, secretValues)
	return cfg, nil
}

// loadConfig returns the configuration for the current invocation.
func loadConfig() (types.Config, error) {
	return configFrom(viper.GetViper(), loadedSecrets)
}
