// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wiki

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/novelist-almanac/internal/httputil"
	"github.com/pdiddy/novelist-almanac/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

const sectionsJSON = `{
  "parse": {
    "title": "12月8日",
    "pageid": 4242,
    "sections": [
      {"toclevel": 1, "level": "2", "line": "できごと", "number": "1", "index": "1", "anchor": "できごと"},
      {"toclevel": 1, "level": "2", "line": "誕生日", "number": "2", "index": "2", "anchor": "誕生日"},
      {"toclevel": 1, "level": "2", "line": "忌日", "number": "3", "index": "3", "anchor": "忌日"}
    ]
  }
}`

const sectionTextJSON = `{
  "parse": {
    "title": "12月8日",
    "pageid": 4242,
    "text": {"*": "<div class=\"mw-parser-output\"><ul><li>1909年 - 太宰治、日本の小説家</li></ul></div>"}
  }
}`

const thumbnailJSON = `{
  "batchcomplete": "",
  "query": {
    "pages": {
      "1234": {
        "pageid": 1234, "ns": 0, "title": "太宰治",
        "thumbnail": {"source": "https://upload.wikimedia.org/dazai.jpg", "width": 96, "height": 128},
        "pageimage": "Dazai.jpg"
      }
    }
  }
}`

// newTestClient returns a client pointed at a server running handler.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	c := NewClient(types.WikiConfig{
		HTTPConfig: types.HTTPConfig{UserAgent: "test/0.1", MaxRetries: 2},
		APIURL:     ts.URL,
	}, nil)
	c.HTTP = ts.Client()
	return c
}

// dateServer answers sections and text queries the way the API does.
func dateServer(t *testing.T, sections, text string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "json", q.Get("format"))
		assert.Equal(t, "test/0.1", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")

		switch {
		case q.Get("action") == "parse" && q.Get("prop") == "sections":
			fmt.Fprint(w, sections)
		case q.Get("action") == "parse" && q.Get("prop") == "text":
			assert.Equal(t, "2", q.Get("section"))
			fmt.Fprint(w, text)
		default:
			t.Errorf("unexpected request %s", r.URL)
			w.WriteHeader(http.StatusBadRequest)
		}
	}
}

func TestPageTitle(t *testing.T) {
	assert.Equal(t, "12月8日", PageTitle(12, 8))
	assert.Equal(t, "1月1日", PageTitle(1, 1))
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(types.WikiConfig{}, nil)
	assert.Equal(t, DefaultAPIURL, c.APIURL)
	assert.Equal(t, DefaultSectionKeyword, c.SectionKeyword)
	assert.Equal(t, defaultUserAgent, c.UserAgent)
	assert.Equal(t, defaultTimeout, c.HTTP.Timeout)
	assert.NotNil(t, c.Logger)
}

func TestSections(t *testing.T) {
	c := newTestClient(t, dateServer(t, sectionsJSON, sectionTextJSON))

	sections, err := c.Sections(context.Background(), "12月8日")
	require.NoError(t, err)
	require.Len(t, sections, 3)
	assert.Equal(t, "誕生日", sections[1].Line)
	assert.Equal(t, "2", sections[1].Index)
}

func TestSections_MissingParse(t *testing.T) {
	c := newTestClient(t, dateServer(t, `{"batchcomplete": ""}`, ""))

	sections, err := c.Sections(context.Background(), "2月31日")
	require.NoError(t, err)
	assert.Empty(t, sections)
}

func TestSections_MissingTitle(t *testing.T) {
	c := newTestClient(t, dateServer(t,
		`{"error": {"code": "missingtitle", "info": "The page you specified doesn't exist."}}`, ""))

	sections, err := c.Sections(context.Background(), "13月1日")
	require.NoError(t, err)
	assert.Empty(t, sections)
}

func TestSections_APIError(t *testing.T) {
	c := newTestClient(t, dateServer(t,
		`{"error": {"code": "internal_api_error", "info": "boom"}}`, ""))

	_, err := c.Sections(context.Background(), "12月8日")
	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "internal_api_error", apiErr.Code)
}

func TestFindSection(t *testing.T) {
	sections := []Section{
		{Line: "できごと", Index: "1"},
		{Line: "", Index: "2"},
		{Line: "誕生日（日本）", Index: "3"},
		{Line: "誕生日", Index: "4"},
	}
	s, ok := FindSection(sections, "誕生日")
	require.True(t, ok)
	assert.Equal(t, "3", s.Index)

	_, ok = FindSection(sections, "忌日")
	assert.False(t, ok)
}

func TestBirthSectionHTML(t *testing.T) {
	c := newTestClient(t, dateServer(t, sectionsJSON, sectionTextJSON))

	html, err := c.BirthSectionHTML(context.Background(), "12月8日")
	require.NoError(t, err)
	assert.Contains(t, html, "太宰治")
}

func TestBirthSectionHTML_NotFound(t *testing.T) {
	tests := []struct {
		name     string
		sections string
		text     string
	}{
		{
			name:     "no births heading",
			sections: `{"parse": {"sections": [{"line": "できごと", "index": "1"}]}}`,
		},
		{
			name:     "no sections",
			sections: `{"parse": {"sections": []}}`,
		},
		{
			name:     "empty section text",
			sections: sectionsJSON,
			text:     `{"parse": {"text": {"*": ""}}}`,
		},
		{
			name:     "missing text",
			sections: sectionsJSON,
			text:     `{"parse": {}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, dateServer(t, tt.sections, tt.text))
			_, err := c.BirthSectionHTML(context.Background(), "12月8日")
			assert.ErrorIs(t, err, ErrSectionNotFound)
		})
	}
}

func TestBirthSectionHTML_HTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.BirthSectionHTML(context.Background(), "12月8日")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSectionNotFound)
	assert.Contains(t, err.Error(), "HTTP 502")
}

func TestBirthSectionHTML_RetriesThrottled(t *testing.T) {
	var calls int32
	inner := dateServer(t, sectionsJSON, sectionTextJSON)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		inner(w, r)
	})

	html, err := c.BirthSectionHTML(context.Background(), "12月8日")
	require.NoError(t, err)
	assert.Contains(t, html, "太宰治")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestBirthSectionHTML_MalformedJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"parse":`)
	})

	_, err := c.BirthSectionHTML(context.Background(), "12月8日")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing wikipedia response")
}

func TestThumbnail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"page with thumbnail", thumbnailJSON, "https://upload.wikimedia.org/dazai.jpg"},
		{"missing page", `{"query": {"pages": {"-1": {"ns": 0, "title": "X", "missing": ""}}}}`, ""},
		{"page without image", `{"query": {"pages": {"77": {"pageid": 77, "title": "X"}}}}`, ""},
		{"no query", `{"batchcomplete": ""}`, ""},
		{"empty pages", `{"query": {"pages": {}}}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				assert.Equal(t, "query", q.Get("action"))
				assert.Equal(t, "pageimages", q.Get("prop"))
				assert.Equal(t, "96", q.Get("pithumbsize"))
				assert.Equal(t, "太宰治", q.Get("titles"))
				fmt.Fprint(w, tt.body)
			})

			got, err := c.Thumbnail(context.Background(), "太宰治", 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestThumbnail_CustomSize(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "200", r.URL.Query().Get("pithumbsize"))
		fmt.Fprint(w, thumbnailJSON)
	})

	_, err := c.Thumbnail(context.Background(), "太宰治", 200)
	require.NoError(t, err)
}

func TestFirstPageKey(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want string
	}{
		{"single", []string{"5"}, "5"},
		{"numeric order", []string{"30", "4", "100"}, "4"},
		{"real page before missing", []string{"-1", "12"}, "12"},
		{"only missing", []string{"-2", "-1"}, "-2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages := make(map[string]int, len(tt.keys))
			for _, k := range tt.keys {
				pages[k] = 0
			}
			assert.Equal(t, tt.want, firstPageKey(pages))
		})
	}
}
