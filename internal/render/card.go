// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render turns search results into author cards for the terminal,
// JSON, or a standalone HTML page.
package render

import (
	"fmt"
	"net/url"

	"github.com/pdiddy/novelist-almanac/internal/search"
	"github.com/pdiddy/novelist-almanac/pkg/types"
)

const (
	// DefaultPlaceholder is shown when a card has no thumbnail.
	DefaultPlaceholder = "img/book-placeholder.png"

	defaultRole     = "小説家"
	placeholderAlt  = "著者の画像"
	wikipediaBase   = "https://ja.wikipedia.org/wiki/"
	amazonSearchURL = "https://www.amazon.co.jp/s?k="
	wikipediaLabel  = "Wikipediaで見る"
	amazonLabel     = "Amazonで検索"
)

// View holds the display strings of one card.
type View struct {
	Name         string `json:"name"`
	Birth        string `json:"birth"`
	Role         string `json:"role"`
	ImageURL     string `json:"image_url"`
	ImageAlt     string `json:"image_alt"`
	HasImage     bool   `json:"has_image"`
	WikipediaURL string `json:"wikipedia_url"`
	AmazonURL    string `json:"amazon_url"`
}

// NewView builds the display strings for c. placeholder replaces a missing
// thumbnail; empty means DefaultPlaceholder.
func NewView(c types.Card, placeholder string) View {
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	v := View{
		Name:         c.Name,
		Birth:        BirthLine(c),
		Role:         c.Description,
		ImageURL:     c.ThumbnailURL,
		ImageAlt:     c.Name + "の写真",
		HasImage:     c.ThumbnailURL != "",
		WikipediaURL: WikipediaURL(c.Name),
		AmazonURL:    AmazonURL(c.Name),
	}
	if v.Role == "" {
		v.Role = defaultRole
	}
	if !v.HasImage {
		v.ImageURL = placeholder
		v.ImageAlt = placeholderAlt
	}
	return v
}

// BirthLine formats "1909/06/19 生まれ", or "06/19 生まれ" without a year.
func BirthLine(c types.Card) string {
	if c.HasYear() {
		return fmt.Sprintf("%s/%s 生まれ", c.Year, c.Date)
	}
	return fmt.Sprintf("%s 生まれ", c.Date)
}

// WikipediaURL links to the person's article.
func WikipediaURL(name string) string {
	return wikipediaBase + url.PathEscape(name)
}

// AmazonURL searches Amazon Japan for the person's name.
func AmazonURL(name string) string {
	return amazonSearchURL + url.QueryEscape(name)
}

// Heading is the title shown above the cards, e.g. "12月8日 生まれの小説家".
func Heading(d types.BirthDate) string {
	return fmt.Sprintf("%d月%d日 生まれの小説家", d.Month, d.Day)
}

// Count is the hit count label, e.g. "3件".
func Count(n int) string {
	return fmt.Sprintf("%d件", n)
}

// Message explains an empty result, or returns "" when there are cards.
func Message(s search.Status) string {
	switch s {
	case search.StatusNoSection:
		return "誕生日セクションが見つかりませんでした。"
	case search.StatusNoMatch:
		return "該当する小説家が見つかりませんでした。"
	default:
		return ""
	}
}

// ErrorMessage is shown when a search fails.
const ErrorMessage = "検索中にエラーが発生"
