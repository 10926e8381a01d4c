// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/novelist-almanac/internal/wiki"
	"github.com/pdiddy/novelist-almanac/pkg/types"
)

// --- fake source ---

type fakeSource struct {
	html       string
	sectionErr error
	thumbs     map[string]string
	thumbErrs  map[string]error
	delay      time.Duration

	mu        sync.Mutex
	pages     []string
	lookups   []string
	inFlight  int
	maxFlight int
}

func (f *fakeSource) BirthSectionHTML(_ context.Context, page string) (string, error) {
	f.mu.Lock()
	f.pages = append(f.pages, page)
	f.mu.Unlock()
	return f.html, f.sectionErr
}

func (f *fakeSource) Thumbnail(ctx context.Context, title string, size int) (string, error) {
	f.mu.Lock()
	f.lookups = append(f.lookups, fmt.Sprintf("%s@%d", title, size))
	f.inFlight++
	if f.inFlight > f.maxFlight {
		f.maxFlight = f.inFlight
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if err := f.thumbErrs[title]; err != nil {
		return "", err
	}
	return f.thumbs[title], nil
}

const birthsHTML = `<ul>
<li>1867年 - 夏目漱石（日本の小説家・評論家）</li>
<li>1880年 - 誰か、政治家</li>
<li>1909年 - 太宰治、日本の小説家</li>
<li><a href="/wiki/森鷗外">森鷗外</a>、小説家・軍医</li>
<li>身元不明の人物</li>
</ul>`

func testCfg() types.SearchConfig {
	return types.SearchConfig{
		Keyword:       "小説家",
		MaxResults:    30,
		ThumbnailSize: 96,
		Concurrency:   2,
	}
}

func dec8() types.BirthDate { return types.BirthDate{Month: 12, Day: 8} }

// --- dates ---

func TestNewDate(t *testing.T) {
	tests := []struct {
		name       string
		month, day int
		wantErr    bool
	}{
		{"ordinary", 12, 8, false},
		{"first", 1, 1, false},
		{"day 31 allowed for any month", 2, 31, false},
		{"month zero", 0, 1, true},
		{"month thirteen", 13, 1, true},
		{"day zero", 1, 0, true},
		{"day thirty-two", 1, 32, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDate(tt.month, tt.day)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, types.BirthDate{Month: tt.month, Day: tt.day}, d)
		})
	}
}

func TestToday(t *testing.T) {
	now := time.Date(2026, time.February, 9, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, types.BirthDate{Month: 2, Day: 9}, Today(now))
}

// --- Search ---

func TestSearch_Found(t *testing.T) {
	src := &fakeSource{
		html: birthsHTML,
		thumbs: map[string]string{
			"夏目漱石": "https://img/soseki.jpg",
			"太宰治":  "https://img/dazai.jpg",
		},
	}
	var buf bytes.Buffer

	res, err := Search(context.Background(), src, dec8(), testCfg(), nil, &buf)
	require.NoError(t, err)

	assert.Equal(t, StatusFound, res.Status)
	assert.Equal(t, 4, res.Extracted)
	assert.Equal(t, []string{"12月8日"}, src.pages)

	require.Len(t, res.Cards, 3)
	assert.Equal(t, "夏目漱石", res.Cards[0].Name)
	assert.Equal(t, "1867", res.Cards[0].Year)
	assert.Equal(t, "https://img/soseki.jpg", res.Cards[0].ThumbnailURL)
	assert.Equal(t, "太宰治", res.Cards[1].Name)
	assert.Equal(t, "森鷗外", res.Cards[2].Name)
	assert.Equal(t, "", res.Cards[2].ThumbnailURL)
	for _, c := range res.Cards {
		assert.Equal(t, dec8(), c.Date)
	}

	out := buf.String()
	assert.Contains(t, out, "searching 12月8日")
	assert.Contains(t, out, "3件")
}

func TestSearch_KeepsOrderUnderConcurrency(t *testing.T) {
	var items strings.Builder
	items.WriteString("<ul>")
	var want []string
	for i := 0; i < 12; i++ {
		name := fmt.Sprintf("作家%02d", i)
		want = append(want, name)
		fmt.Fprintf(&items, "<li>19%02d年 - %s、小説家</li>", i, name)
	}
	items.WriteString("</ul>")

	src := &fakeSource{html: items.String(), delay: 5 * time.Millisecond}
	cfg := testCfg()
	cfg.Concurrency = 3

	res, err := Search(context.Background(), src, dec8(), cfg, nil, &bytes.Buffer{})
	require.NoError(t, err)

	var got []string
	for _, c := range res.Cards {
		got = append(got, c.Name)
	}
	assert.Equal(t, want, got)
	assert.LessOrEqual(t, src.maxFlight, 3)
	assert.Len(t, src.lookups, 12)
}

func TestSearch_MaxResults(t *testing.T) {
	src := &fakeSource{html: birthsHTML}
	cfg := testCfg()
	cfg.MaxResults = 2

	res, err := Search(context.Background(), src, dec8(), cfg, nil, &bytes.Buffer{})
	require.NoError(t, err)
	require.Len(t, res.Cards, 2)
	assert.Equal(t, "夏目漱石", res.Cards[0].Name)
	assert.Equal(t, "太宰治", res.Cards[1].Name)
}

func TestSearch_DefaultsApplied(t *testing.T) {
	src := &fakeSource{html: birthsHTML}

	res, err := Search(context.Background(), src, dec8(), types.SearchConfig{}, nil, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Len(t, res.Cards, 3)
	for _, l := range src.lookups {
		assert.True(t, strings.HasSuffix(l, "@96"), l)
	}
}

func TestSearch_NoSection(t *testing.T) {
	src := &fakeSource{sectionErr: wiki.ErrSectionNotFound}

	res, err := Search(context.Background(), src, dec8(), testCfg(), nil, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, StatusNoSection, res.Status)
	assert.Empty(t, res.Cards)
	assert.Empty(t, src.lookups)
}

func TestSearch_NoMatch(t *testing.T) {
	src := &fakeSource{html: `<ul><li>1880年 - 誰か、政治家</li></ul>`}

	res, err := Search(context.Background(), src, dec8(), testCfg(), nil, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, StatusNoMatch, res.Status)
	assert.Equal(t, 1, res.Extracted)
	assert.NotNil(t, res.Cards)
	assert.Empty(t, res.Cards)
}

func TestSearch_FetchError(t *testing.T) {
	src := &fakeSource{sectionErr: errors.New("connection refused")}

	_, err := Search(context.Background(), src, dec8(), testCfg(), nil, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSearch_InvalidDate(t *testing.T) {
	src := &fakeSource{html: birthsHTML}

	_, err := Search(context.Background(), src, types.BirthDate{Month: 13, Day: 1}, testCfg(), nil, &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrInvalidDate)
	assert.Empty(t, src.pages)
}

func TestSearch_ThumbnailFailureKeepsCard(t *testing.T) {
	src := &fakeSource{
		html:      birthsHTML,
		thumbs:    map[string]string{"太宰治": "https://img/dazai.jpg"},
		thumbErrs: map[string]error{"夏目漱石": errors.New("HTTP 500")},
	}

	res, err := Search(context.Background(), src, dec8(), testCfg(), nil, &bytes.Buffer{})
	require.NoError(t, err)
	require.Len(t, res.Cards, 3)
	assert.Equal(t, "", res.Cards[0].ThumbnailURL)
	assert.Equal(t, "https://img/dazai.jpg", res.Cards[1].ThumbnailURL)
}

func TestSearch_ContextCancelled(t *testing.T) {
	src := &fakeSource{html: birthsHTML, delay: time.Second}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := Search(ctx, src, dec8(), testCfg(), nil, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
