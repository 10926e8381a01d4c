// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/novelist-almanac/pkg/types"
)

// QueryOptions holds parameters for library queries.
type QueryOptions struct {
	// Query matches a substring of the name or description.
	Query string

	// Month and Day filter by date. Zero means any.
	Month int
	Day   int

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// Entry is a stored card with its position on the date page.
type Entry struct {
	types.Card `yaml:",inline"`
	Position   int `json:"position" yaml:"position"`
}

// Query returns stored cards ordered by month, day, and page position.
func (s *Store) Query(ctx context.Context, opts QueryOptions) ([]Entry, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT month, day, position, year, name, description, raw_text, thumbnail_url
		FROM novelists WHERE 1=1`)

	if opts.Month > 0 {
		qb.WriteString(` AND month = ?`)
		args = append(args, opts.Month)
	}
	if opts.Day > 0 {
		qb.WriteString(` AND day = ?`)
		args = append(args, opts.Day)
	}
	if opts.Query != "" {
		pattern := "%" + escapeLike(opts.Query) + "%"
		qb.WriteString(` AND (name LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}

	qb.WriteString(` ORDER BY month, day, position LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying library: %w", err)
	}
	defer rows.Close()

	results := []Entry{}
	for rows.Next() {
		var (
			e                          Entry
			year, desc, raw, thumbnail sql.NullString
		)
		if err := rows.Scan(
			&e.Date.Month, &e.Date.Day, &e.Position,
			&year, &e.Name, &desc, &raw, &thumbnail,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		e.Year = year.String
		e.Description = desc.String
		e.RawText = raw.String
		e.ThumbnailURL = thumbnail.String
		results = append(results, e)
	}
	return results, rows.Err()
}

// escapeLike escapes LIKE wildcards so the query matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// DateSummary describes one saved search.
type DateSummary struct {
	Date      types.BirthDate `json:"date" yaml:"date"`
	Extracted int             `json:"extracted" yaml:"extracted"`
	Saved     int             `json:"saved" yaml:"saved"`
	FetchedAt time.Time       `json:"fetched_at" yaml:"fetched_at"`
}

// Dates lists saved searches in calendar order.
func (s *Store) Dates(ctx context.Context) ([]DateSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT d.month, d.day, d.extracted, d.fetched_at, COUNT(n.id)
		FROM dates d
		LEFT JOIN novelists n ON n.month = d.month AND n.day = d.day
		GROUP BY d.month, d.day
		ORDER BY d.month, d.day`)
	if err != nil {
		return nil, fmt.Errorf("listing dates: %w", err)
	}
	defer rows.Close()

	summaries := []DateSummary{}
	for rows.Next() {
		var (
			ds      DateSummary
			fetched string
		)
		if err := rows.Scan(&ds.Date.Month, &ds.Date.Day, &ds.Extracted, &fetched, &ds.Saved); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, fetched); err == nil {
			ds.FetchedAt = t
		}
		summaries = append(summaries, ds)
	}
	return summaries, rows.Err()
}
