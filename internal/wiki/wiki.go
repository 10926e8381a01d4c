// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package wiki talks to the MediaWiki Action API of Japanese Wikipedia: it
// lists a date page's sections, fetches the births section as HTML, and
// looks up page thumbnails.
package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/novelist-almanac/internal/httputil"
	"github.com/pdiddy/novelist-almanac/pkg/types"
)

const (
	// DefaultAPIURL is the Japanese Wikipedia Action API endpoint.
	DefaultAPIURL = "https://ja.wikipedia.org/w/api.php"

	// DefaultSectionKeyword identifies the births section heading.
	DefaultSectionKeyword = "誕生日"

	// DefaultThumbnailSize matches the card image width.
	DefaultThumbnailSize = 96

	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "novelist-almanac/0.1"
)

// ErrSectionNotFound is returned when a date page has no births section or
// the section has no content.
var ErrSectionNotFound = errors.New("births section not found")

// APIError is an error object returned by the Action API.
type APIError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wikipedia API error %s: %s", e.Code, e.Info)
}

// Section is one entry of a page's table of contents.
type Section struct {
	Line   string `json:"line"`
	Index  string `json:"index"`
	Level  string `json:"level"`
	Number string `json:"number"`
	Anchor string `json:"anchor"`
}

// Client queries the Action API. The zero value is not usable; build one
// with NewClient.
type Client struct {
	HTTP           *http.Client
	APIURL         string
	UserAgent      string
	SectionKeyword string
	MaxRetries     int
	Logger         *zap.Logger
}

// NewClient returns a client for cfg, filling unset fields with defaults.
func NewClient(cfg types.WikiConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		HTTP:           &http.Client{Timeout: timeout},
		APIURL:         cfg.APIURL,
		UserAgent:      cfg.UserAgent,
		SectionKeyword: cfg.SectionKeyword,
		MaxRetries:     cfg.MaxRetries,
		Logger:         logger,
	}
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.SectionKeyword == "" {
		c.SectionKeyword = DefaultSectionKeyword
	}
	return c
}

// PageTitle returns the date page title, e.g. "12月8日".
func PageTitle(month, day int) string {
	return fmt.Sprintf("%d月%d日", month, day)
}

// Sections lists the sections of page. A missing page yields no sections.
func (c *Client) Sections(ctx context.Context, page string) ([]Section, error) {
	params := url.Values{
		"action": {"parse"},
		"page":   {page},
		"prop":   {"sections"},
	}

	var resp struct {
		Parse *struct {
			Sections []Section `json:"sections"`
		} `json:"parse"`
	}
	if err := c.get(ctx, params, &resp); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Code == "missingtitle" {
			return []Section{}, nil
		}
		return nil, fmt.Errorf("listing sections of %s: %w", page, err)
	}
	if resp.Parse == nil || resp.Parse.Sections == nil {
		return []Section{}, nil
	}
	return resp.Parse.Sections, nil
}

// FindSection returns the first section whose heading contains keyword.
func FindSection(sections []Section, keyword string) (Section, bool) {
	for _, s := range sections {
		if s.Line != "" && strings.Contains(s.Line, keyword) {
			return s, true
		}
	}
	return Section{}, false
}

// SectionHTML returns the rendered HTML of one section of page.
func (c *Client) SectionHTML(ctx context.Context, page, index string) (string, error) {
	params := url.Values{
		"action":  {"parse"},
		"page":    {page},
		"prop":    {"text"},
		"section": {index},
	}

	var resp struct {
		Parse *struct {
			Text map[string]string `json:"text"`
		} `json:"parse"`
	}
	if err := c.get(ctx, params, &resp); err != nil {
		return "", fmt.Errorf("fetching section %s of %s: %w", index, page, err)
	}
	if resp.Parse == nil {
		return "", nil
	}
	return resp.Parse.Text["*"], nil
}

// BirthSectionHTML fetches the births section of page. It returns
// ErrSectionNotFound when the page has no such section or it is empty.
func (c *Client) BirthSectionHTML(ctx context.Context, page string) (string, error) {
	sections, err := c.Sections(ctx, page)
	if err != nil {
		return "", err
	}

	target, ok := FindSection(sections, c.SectionKeyword)
	if !ok {
		c.Logger.Info("no births section", zap.String("page", page), zap.Int("sections", len(sections)))
		return "", ErrSectionNotFound
	}

	html, err := c.SectionHTML(ctx, page, target.Index)
	if err != nil {
		return "", err
	}
	if html == "" {
		return "", ErrSectionNotFound
	}
	c.Logger.Debug("fetched births section",
		zap.String("page", page),
		zap.String("section", target.Index),
		zap.Int("bytes", len(html)))
	return html, nil
}

// Thumbnail returns the page image URL for title at the given width, or ""
// when the page does not exist or has no image.
func (c *Client) Thumbnail(ctx context.Context, title string, size int) (string, error) {
	if size <= 0 {
		size = DefaultThumbnailSize
	}
	params := url.Values{
		"action":      {"query"},
		"titles":      {title},
		"prop":        {"pageimages"},
		"pithumbsize": {strconv.Itoa(size)},
		"redirects":   {"1"},
	}

	var resp struct {
		Query *struct {
			Pages map[string]struct {
				Title     string `json:"title"`
				Thumbnail *struct {
					Source string `json:"source"`
				} `json:"thumbnail"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := c.get(ctx, params, &resp); err != nil {
		return "", fmt.Errorf("looking up thumbnail for %s: %w", title, err)
	}
	if resp.Query == nil || len(resp.Query.Pages) == 0 {
		return "", nil
	}

	page := resp.Query.Pages[firstPageKey(resp.Query.Pages)]
	if page.Thumbnail == nil {
		return "", nil
	}
	return page.Thumbnail.Source, nil
}

// firstPageKey orders page IDs numerically, so real pages come before the
// negative placeholder IDs the API gives missing titles.
func firstPageKey[V any](pages map[string]V) string {
	keys := make([]string, 0, len(pages))
	for k := range pages {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		switch {
		case errA != nil || errB != nil:
			return keys[i] < keys[j]
		case (a < 0) != (b < 0):
			return a >= 0
		default:
			return a < b
		}
	})
	return keys[0]
}

// get issues a GET to the API with params and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	params.Set("format", "json")
	reqURL := c.APIURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.Logger.Debug("wikipedia request", zap.String("url", reqURL))

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, c.MaxRetries, c.Logger)
	if err != nil {
		return fmt.Errorf("wikipedia API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wikipedia API returned HTTP %d", resp.StatusCode)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return fmt.Errorf("parsing wikipedia response: %w", err)
	}

	var envelope struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != nil {
		return envelope.Error
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parsing wikipedia response: %w", err)
	}
	return nil
}
