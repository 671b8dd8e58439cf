package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"edu-news/internal/edu_news/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rssFeed(n int, title func(i int) string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>test</title>`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<item><title>%s</title><link>https://example.com/%d</link><description>&lt;p&gt;body %d&lt;/p&gt;</description><pubDate>Mon, 02 Mar 2026 09:00:00 +0000</pubDate></item>`,
			title(i), i, i)
	}
	b.WriteString(`</channel></rss>`)
	return b.String()
}

func TestHTTPFetcher_CapsAtTwenty(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssFeed(25, func(i int) string { return fmt.Sprintf("item %d", i) })))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.Client(), "", time.Second)
	items, err := f.Fetch(context.Background(), source.Feed{Name: "test", URL: srv.URL})
	require.NoError(t, err)

	require.Len(t, items, MaxItemsPerFeed)
	assert.Equal(t, "item 0", items[0].Title)
	assert.Equal(t, "item 19", items[19].Title)
	assert.Equal(t, "https://example.com/0", items[0].Link)
	assert.Equal(t, "<p>body 0</p>", items[0].Summary)
	require.NotNil(t, items[0].Published)
	assert.Equal(t, 2026, items[0].Published.Year())
	assert.Equal(t, defaultUserAgent, gotUA)
}

func TestHTTPFetcher_FilterAfterSlice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(rssFeed(25, func(i int) string {
			if i%2 == 0 {
				return fmt.Sprintf("AI story %d", i)
			}
			return fmt.Sprintf("other %d", i)
		})))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.Client(), "ua", time.Second)
	items, err := f.Fetch(context.Background(), source.Feed{
		Name:   "filtered",
		URL:    srv.URL,
		Filter: source.TitleContainsAny(false, "AI"),
	})
	require.NoError(t, err)

	// only the first 20 parsed items are considered, 10 of them pass
	require.Len(t, items, 10)
	for _, it := range items {
		assert.True(t, strings.HasPrefix(it.Title, "AI story"))
	}
}

func TestHTTPFetcher_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken" {
			_, _ = w.Write([]byte("this is not a feed"))
			return
		}
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.Client(), "", time.Second)

	_, err := f.Fetch(context.Background(), source.Feed{URL: srv.URL + "/missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")

	_, err = f.Fetch(context.Background(), source.Feed{URL: srv.URL + "/broken"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestHTTPFetcher_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.Client(), "", 50*time.Millisecond)
	_, err := f.Fetch(context.Background(), source.Feed{URL: srv.URL})
	require.Error(t, err)
}
