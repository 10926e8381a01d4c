// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract parses the list items of a Wikipedia births section into
// PersonRecords.
//
// Each list item is tried against an ordered set of rules and the first rule
// that recognizes the item wins:
//
//	year rule    "1867年 - 夏目漱石（日本の小説家）" or "1909年 - 太宰治、日本の小説家"
//	link rule    first <a> text is the name, the rest of the text is the description
//
// Items that no rule recognizes, or that yield an empty name, are dropped.
// Extraction never fails; it is safe for concurrent use.
package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/novelist-almanac/pkg/types"
)

// DefaultKeyword selects novelists by description.
const DefaultKeyword = "小説家"

// DefaultLimit is the maximum number of records kept by FilterByKeyword callers
// that do not choose their own.
const DefaultLimit = 30

var (
	// A leading year, anything up to a dash, then the entry body. The dash may
	// be a hyphen-minus, a full-width hyphen, or an en dash.
	yearPattern = regexp.MustCompile(`^(\d{1,4})年[^-－–]*[-－–]\s*(.+)$`)

	// "name（description）" with ASCII or full-width parentheses. The name is
	// the shortest prefix so nested parentheses stay in the description.
	parenPattern = regexp.MustCompile(`^(.+?)[（(](.+)[）)]$`)

	commaPattern    = regexp.MustCompile(`[、,]`)
	footnotePattern = regexp.MustCompile(`\[\d+\]`)
)

// descriptionJoiner rejoins comma-separated description parts.
const descriptionJoiner = "、"

// listItem is a parsed <li> with its normalized text.
type listItem struct {
	sel  *goquery.Selection
	text string
}

// parsed is the outcome of a rule before footnote cleanup.
type parsed struct {
	year string
	name string
	desc string
}

// rule recognizes one layout of list item. ok=false passes the item to the
// next rule; ok=true ends the search even when the name is empty.
type rule func(item listItem) (p parsed, ok bool)

// rules are tried in order.
var rules = []rule{
	yearRule,
	linkRule,
}

// Extract returns the person records found in the list items of html, in
// document order. Empty or list-free input yields an empty slice.
func Extract(html string) []types.PersonRecord {
	records := []types.PersonRecord{}
	if strings.TrimSpace(html) == "" {
		return records
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return records
	}

	doc.Find("li").Each(func(_ int, li *goquery.Selection) {
		if rec, ok := parseItem(li); ok {
			records = append(records, rec)
		}
	})
	return records
}

// parseItem applies the rules to one list item.
func parseItem(li *goquery.Selection) (types.PersonRecord, bool) {
	item := listItem{sel: li, text: NormalizeSpace(li.Text())}

	for _, r := range rules {
		p, ok := r(item)
		if !ok {
			continue
		}
		if p.name == "" {
			return types.PersonRecord{}, false
		}
		name := StripFootnotes(p.name)
		if name == "" {
			return types.PersonRecord{}, false
		}
		return types.PersonRecord{
			Year:        p.year,
			Name:        name,
			Description: p.desc,
			RawText:     item.text,
		}, true
	}
	return types.PersonRecord{}, false
}

// yearRule handles "<year>年 - <body>" entries. The body is either
// "name（description）" or "name、description、...".
func yearRule(item listItem) (parsed, bool) {
	m := yearPattern.FindStringSubmatch(item.text)
	if m == nil {
		return parsed{}, false
	}
	p := parsed{year: m[1]}
	rest := m[2]

	if pm := parenPattern.FindStringSubmatch(rest); pm != nil {
		p.name = strings.TrimSpace(pm[1])
		p.desc = strings.TrimSpace(pm[2])
		return p, true
	}

	parts := commaPattern.Split(rest, -1)
	p.name = strings.TrimSpace(parts[0])
	p.desc = strings.TrimSpace(strings.Join(parts[1:], descriptionJoiner))
	return p, true
}

// linkRule takes the first link's text as the name. The description is the
// item text with the first occurrence of the name removed, so separators
// around the name are kept.
func linkRule(item listItem) (parsed, bool) {
	a := item.sel.Find("a").First()
	if a.Length() == 0 {
		return parsed{}, false
	}
	name := strings.TrimSpace(a.Text())
	return parsed{
		name: name,
		desc: strings.TrimSpace(strings.Replace(item.text, name, "", 1)),
	}, true
}

// NormalizeSpace collapses every run of Unicode whitespace to one space and
// trims the result.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StripFootnotes removes citation markers such as "[1]" anywhere in name.
func StripFootnotes(name string) string {
	return strings.TrimSpace(footnotePattern.ReplaceAllString(name, ""))
}

// FilterByKeyword keeps records whose description contains keyword, in order,
// up to limit records. A limit of zero or less keeps every match; an empty
// keyword uses DefaultKeyword.
func FilterByKeyword(records []types.PersonRecord, keyword string, limit int) []types.PersonRecord {
	if keyword == "" {
		keyword = DefaultKeyword
	}
	out := []types.PersonRecord{}
	for _, r := range records {
		if limit > 0 && len(out) >= limit {
			break
		}
		if strings.Contains(r.Description, keyword) {
			out = append(out, r)
		}
	}
	return out
}
