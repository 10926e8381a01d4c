// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/pdiddy/novelist-almanac/internal/search"
	"github.com/pdiddy/novelist-almanac/pkg/types"
)

// Write renders res to w in the configured format (cards by default).
func Write(w io.Writer, res search.Result, cfg types.RenderConfig) error {
	switch cfg.Format {
	case types.FormatCards, "":
		return Cards(w, res, cfg.PlaceholderImage)
	case types.FormatTable:
		return Table(w, res)
	case types.FormatJSON:
		return JSON(w, res, cfg.PlaceholderImage)
	case types.FormatHTML:
		return HTML(w, res, cfg.PlaceholderImage)
	default:
		return fmt.Errorf("unsupported format %q: use cards, table, json, or html", cfg.Format)
	}
}

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			MarginBottom(1)
	nameStyle    = lipgloss.NewStyle().Bold(true)
	headingStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// Cards writes one bordered box per card.
func Cards(w io.Writer, res search.Result, placeholder string) error {
	fmt.Fprintln(w, headingStyle.Render(Heading(res.Date)))
	fmt.Fprintln(w, Count(len(res.Cards)))
	if msg := Message(res.Status); msg != "" {
		fmt.Fprintln(w, msg)
		return nil
	}
	fmt.Fprintln(w)

	for _, c := range res.Cards {
		v := NewView(c, placeholder)
		image := v.ImageURL
		if !v.HasImage {
			image = faintStyle.Render(image)
		}
		body := lipgloss.JoinVertical(lipgloss.Left,
			nameStyle.Render(v.Name),
			v.Birth,
			v.Role,
			image,
			wikipediaLabel+": "+v.WikipediaURL,
			amazonLabel+": "+v.AmazonURL,
		)
		if _, err := fmt.Fprintln(w, cardStyle.Render(body)); err != nil {
			return err
		}
	}
	return nil
}

const (
	tableNameWidth = 20
	tableRoleWidth = 40
)

// Table writes a compact table whose columns stay aligned with full-width
// characters.
func Table(w io.Writer, res search.Result) error {
	fmt.Fprintf(w, "%s  %s\n", Heading(res.Date), Count(len(res.Cards)))
	if msg := Message(res.Status); msg != "" {
		fmt.Fprintln(w, msg)
		return nil
	}

	CardTable(w, res.Cards)
	return nil
}

// CardTable writes the column header and one row per card.
func CardTable(w io.Writer, cards []types.Card) {
	fmt.Fprintf(w, "%-4s  %s  %s  %s\n",
		"#", pad("生年月日", 16), pad("名前", tableNameWidth), "肩書き")
	fmt.Fprintln(w, strings.Repeat("-", 4+2+16+2+tableNameWidth+2+tableRoleWidth))

	for i, c := range cards {
		v := NewView(c, "")
		birth := strings.TrimSuffix(v.Birth, " 生まれ")
		fmt.Fprintf(w, "%-4d  %-16s  %s  %s\n",
			i+1, birth, pad(v.Name, tableNameWidth), runewidth.Truncate(v.Role, tableRoleWidth, "..."))
	}
}

// Records writes extracted records without dates or thumbnails. The
// description is printed as found, with no role fallback.
func Records(w io.Writer, records []types.PersonRecord) {
	fmt.Fprintf(w, "%-4s  %s  %s  %s\n",
		"#", pad("生年", 6), pad("名前", tableNameWidth), "説明")
	fmt.Fprintln(w, strings.Repeat("-", 4+2+6+2+tableNameWidth+2+tableRoleWidth))

	for i, r := range records {
		fmt.Fprintf(w, "%-4d  %s  %s  %s\n",
			i+1, pad(r.Year, 6), pad(r.Name, tableNameWidth), runewidth.Truncate(r.Description, tableRoleWidth, "..."))
	}
	fmt.Fprintf(w, "\n%d records\n", len(records))
}

// pad truncates or right-fills s to width display cells.
func pad(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "..."), width)
}

// jsonCard pairs a card with its display strings.
type jsonCard struct {
	types.Card
	View View `json:"view"`
}

// JSON writes the result with each card's display strings as indented JSON.
func JSON(w io.Writer, res search.Result, placeholder string) error {
	out := struct {
		Heading string          `json:"heading"`
		Count   string          `json:"count"`
		Status  string          `json:"status"`
		Message string          `json:"message,omitempty"`
		Date    types.BirthDate `json:"date"`
		Cards   []jsonCard      `json:"cards"`
	}{
		Heading: Heading(res.Date),
		Count:   Count(len(res.Cards)),
		Status:  string(res.Status),
		Message: Message(res.Status),
		Date:    res.Date,
		Cards:   make([]jsonCard, len(res.Cards)),
	}
	for i, c := range res.Cards {
		out.Cards[i] = jsonCard{Card: c, View: NewView(c, placeholder)}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="utf-8">
<title>{{.Heading}}</title>
</head>
<body>
<h1 id="resultDate">{{.Heading}}</h1>
<p id="resultCount">{{.Count}}</p>
{{- if .Message}}
<p id="emptyMessage">{{.Message}}</p>
{{- end}}
<section id="cardsContainer">
{{- range .Views}}
<article class="author-card">
<div class="author-thumb"><img src="{{.ImageURL}}" alt="{{.ImageAlt}}"></div>
<div class="author-body">
<h2 class="author-name">{{.Name}}</h2>
<p class="author-birth">{{.Birth}}</p>
<p class="author-role">{{.Role}}</p>
<p class="author-wiki"><a href="{{.WikipediaURL}}" target="_blank" rel="noopener noreferrer">Wikipediaで見る</a></p>
<p class="author-amazon"><a href="{{.AmazonURL}}" target="_blank" rel="noopener noreferrer">Amazonで検索</a></p>
</div>
</article>
{{- end}}
</section>
</body>
</html>
`))

// HTML writes a standalone page of author cards.
func HTML(w io.Writer, res search.Result, placeholder string) error {
	data := struct {
		Heading string
		Count   string
		Message string
		Views   []View
	}{
		Heading: Heading(res.Date),
		Count:   Count(len(res.Cards)),
		Message: Message(res.Status),
		Views:   make([]View, len(res.Cards)),
	}
	for i, c := range res.Cards {
		data.Views[i] = NewView(c, placeholder)
	}
	return pageTemplate.Execute(w, data)
}
