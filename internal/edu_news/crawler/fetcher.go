package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"edu-news/internal/edu_news/source"

	"github.com/mmcdole/gofeed"
)

const defaultUserAgent = "edu-news-crawler/1.0"

// Item is a parsed feed entry before normalization.
type Item struct {
	Title     string
	Summary   string
	Content   string
	Link      string
	Published *time.Time
}

// FeedFetcher retrieves and parses one feed.
type FeedFetcher interface {
	Fetch(ctx context.Context, feed source.Feed) ([]Item, error)
}

// HTTPFetcher fetches RSS/Atom feeds over HTTP and parses them with gofeed.
type HTTPFetcher struct {
	HTTPClient *http.Client
	UserAgent  string
	Timeout    time.Duration // per fetch; 0 leaves only the client timeout
	MaxItems   int
}

func NewHTTPFetcher(client *http.Client, userAgent string, timeout time.Duration) *HTTPFetcher {
	if client == nil {
		client = &http.Client{}
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &HTTPFetcher{
		HTTPClient: client,
		UserAgent:  userAgent,
		Timeout:    timeout,
		MaxItems:   MaxItemsPerFeed,
	}
}

// Fetch returns at most MaxItems items in feed order, after the feed's title
// filter has been applied.
func (f *HTTPFetcher) Fetch(ctx context.Context, feed source.Feed) ([]Item, error) {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", feed.URL, err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", feed.URL, resp.Status)
	}

	parsed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", feed.URL, err)
	}

	limit := f.MaxItems
	if limit <= 0 {
		limit = MaxItemsPerFeed
	}
	raw := parsed.Items
	if len(raw) > limit {
		raw = raw[:limit]
	}

	out := make([]Item, 0, len(raw))
	for _, it := range raw {
		if it == nil {
			continue
		}
		if feed.Filter != nil && !feed.Filter(it.Title) {
			continue
		}
		item := Item{
			Title:   it.Title,
			Summary: it.Description,
			Content: it.Content,
			Link:    it.Link,
		}
		switch {
		case it.PublishedParsed != nil:
			item.Published = it.PublishedParsed
		case it.UpdatedParsed != nil:
			item.Published = it.UpdatedParsed
		}
		out = append(out, item)
	}
	return out, nil
}
