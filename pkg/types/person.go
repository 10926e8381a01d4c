// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the novelist-almanac pipeline:
// person records extracted from a births section, the cards built from them,
// and the configuration each stage reads.
package types

import "fmt"

// PersonRecord is one birth entry parsed from a date page's list item.
// Records are built once during extraction and never modified afterwards.
type PersonRecord struct {
	// Year is the birth year as 1-4 digits. Empty when the entry carried no
	// leading year.
	Year string `json:"year,omitempty" yaml:"year,omitempty"`

	// Name is the display name with footnote markers such as "[1]" removed.
	// Never empty.
	Name string `json:"name" yaml:"name"`

	// Description is the role or occupation text, possibly empty.
	Description string `json:"description" yaml:"description"`

	// RawText is the list item's text with whitespace runs collapsed.
	RawText string `json:"raw_text" yaml:"raw_text"`
}

// HasYear reports whether the record carries a birth year.
func (p PersonRecord) HasYear() bool {
	return p.Year != ""
}

// BirthDate identifies a calendar month and day without a year.
type BirthDate struct {
	Month int `json:"month" yaml:"month"`
	Day   int `json:"day" yaml:"day"`
}

// String returns the date as "MM/DD".
func (d BirthDate) String() string {
	return fmt.Sprintf("%02d/%02d", d.Month, d.Day)
}

// Card is a PersonRecord enriched for display: the date searched and an
// optional thumbnail image.
type Card struct {
	PersonRecord `yaml:",inline"`

	// Date is the month and day that was searched.
	Date BirthDate `json:"date" yaml:"date"`

	// ThumbnailURL is the Wikipedia page image, empty when none exists.
	ThumbnailURL string `json:"thumbnail_url,omitempty" yaml:"thumbnail_url,omitempty"`
}
