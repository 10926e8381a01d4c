// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search runs a birthday search: it fetches the births section for a
// month and day, extracts the people listed there, keeps the novelists, and
// enriches each one with a thumbnail.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/novelist-almanac/internal/extract"
	"github.com/pdiddy/novelist-almanac/internal/wiki"
	"github.com/pdiddy/novelist-almanac/pkg/types"
)

const (
	defaultConcurrency   = 4
	defaultThumbnailSize = wiki.DefaultThumbnailSize
)

// ErrInvalidDate is returned for a month outside 1-12 or a day outside 1-31.
var ErrInvalidDate = errors.New("invalid date")

// Source supplies page content. *wiki.Client implements it; tests supply a
// fake.
type Source interface {
	BirthSectionHTML(ctx context.Context, page string) (string, error)
	Thumbnail(ctx context.Context, title string, size int) (string, error)
}

// Status describes how a search ended.
type Status string

const (
	// StatusFound means at least one card was produced.
	StatusFound Status = "found"
	// StatusNoSection means the date page has no births section.
	StatusNoSection Status = "no_section"
	// StatusNoMatch means the section lists nobody matching the keyword.
	StatusNoMatch Status = "no_match"
)

// Result is the outcome of one search.
type Result struct {
	Date   types.BirthDate `json:"date" yaml:"date"`
	Status Status          `json:"status" yaml:"status"`
	Cards  []types.Card    `json:"cards" yaml:"cards"`

	// Extracted counts every person parsed from the section before filtering.
	Extracted int `json:"extracted" yaml:"extracted"`
}

// NewDate validates month and day. The ranges follow the date picker: any
// day 1-31 is accepted for any month, and the page lookup decides whether
// the date exists.
func NewDate(month, day int) (types.BirthDate, error) {
	if month < 1 || month > 12 {
		return types.BirthDate{}, fmt.Errorf("%w: month %d is not between 1 and 12", ErrInvalidDate, month)
	}
	if day < 1 || day > 31 {
		return types.BirthDate{}, fmt.Errorf("%w: day %d is not between 1 and 31", ErrInvalidDate, day)
	}
	return types.BirthDate{Month: month, Day: day}, nil
}

// Today returns the month and day of now in its location.
func Today(now time.Time) types.BirthDate {
	return types.BirthDate{Month: int(now.Month()), Day: now.Day()}
}

// Search runs the pipeline for date. Progress lines ("3件") are written to
// w as cards complete. A missing births section or an empty match is
// reported through Result.Status, not as an error. A thumbnail lookup
// failure leaves that card without an image.
func Search(ctx context.Context, src Source, date types.BirthDate, cfg types.SearchConfig, logger *zap.Logger, w io.Writer) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := NewDate(date.Month, date.Day); err != nil {
		return Result{}, err
	}
	result := Result{Date: date, Cards: []types.Card{}}

	page := wiki.PageTitle(date.Month, date.Day)
	fmt.Fprintf(w, "searching %s\n", page)

	html, err := src.BirthSectionHTML(ctx, page)
	if errors.Is(err, wiki.ErrSectionNotFound) {
		result.Status = StatusNoSection
		return result, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("fetching births section for %s: %w", page, err)
	}

	people := extract.Extract(html)
	result.Extracted = len(people)

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = extract.DefaultLimit
	}
	matches := extract.FilterByKeyword(people, cfg.Keyword, maxResults)
	logger.Info("extracted people",
		zap.String("page", page),
		zap.Int("people", len(people)),
		zap.Int("matches", len(matches)))

	if len(matches) == 0 {
		result.Status = StatusNoMatch
		return result, nil
	}

	cards, err := enrich(ctx, src, date, matches, cfg, logger, w)
	if err != nil {
		return Result{}, err
	}
	result.Cards = cards
	result.Status = StatusFound
	return result, nil
}

// enrich looks up thumbnails with bounded concurrency. Cards keep the order
// of people regardless of completion order.
func enrich(ctx context.Context, src Source, date types.BirthDate, people []types.PersonRecord, cfg types.SearchConfig, logger *zap.Logger, w io.Writer) ([]types.Card, error) {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	size := cfg.ThumbnailSize
	if size <= 0 {
		size = defaultThumbnailSize
	}

	cards := make([]types.Card, len(people))
	var (
		mu   sync.Mutex
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, p := range people {
		i, p := i, p
		cards[i] = types.Card{PersonRecord: p, Date: date}
		g.Go(func() error {
			thumb, err := src.Thumbnail(gctx, p.Name, size)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				logger.Warn("thumbnail lookup failed", zap.String("name", p.Name), zap.Error(err))
			}
			cards[i].ThumbnailURL = thumb

			mu.Lock()
			done++
			fmt.Fprintf(w, "%d件\n", done)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("enriching cards: %w", err)
	}
	return cards, nil
}
