package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"edu-news/internal/edu_news/metrics"
	"edu-news/internal/edu_news/model"
	"edu-news/internal/edu_news/source"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultConcurrency = 4

// SourceError is a failed fetch of one feed. It never aborts sibling feeds.
type SourceError struct {
	Country model.Country
	Source  string
	Err     error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s source %s: %v", e.Country, e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// CountryResult holds the normalized articles of one country in registry order.
type CountryResult struct {
	Country      model.Country
	Articles     []model.RawNews
	SourceErrors []*SourceError
}

// CountryCrawler fetches every feed of one registry.
type CountryCrawler struct {
	Log         *zap.Logger
	Registry    source.Registry
	Fetcher     FeedFetcher
	Concurrency int // 1 fetches sequentially
	Now         func() time.Time
}

func NewCountryCrawler(log *zap.Logger, reg source.Registry, fetcher FeedFetcher, concurrency int) *CountryCrawler {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &CountryCrawler{
		Log:         log.With(zap.String("component", "crawler"), zap.String("country", string(reg.Country))),
		Registry:    reg,
		Fetcher:     fetcher,
		Concurrency: concurrency,
		Now:         time.Now,
	}
}

func (c *CountryCrawler) Country() model.Country { return c.Registry.Country }

// CrawlAll fetches all feeds with bounded concurrency and merges results in
// registry order. The returned error covers faults outside per-source
// isolation only.
func (c *CountryCrawler) CrawlAll(ctx context.Context) (CountryResult, error) {
	res := CountryResult{Country: c.Registry.Country}

	entries := c.Registry.Entries()
	if len(entries) == 0 {
		return res, errors.New("no feeds registered")
	}
	if c.Fetcher == nil {
		return res, errors.New("no fetcher configured")
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}

	perSource := make([][]model.RawNews, len(entries))
	perErr := make([]error, len(entries))

	var g errgroup.Group
	g.SetLimit(max(c.Concurrency, 1))
	for i, e := range entries {
		i, e := i, e
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					perErr[i] = fmt.Errorf("panic: %v", r)
				}
			}()

			items, err := c.Fetcher.Fetch(ctx, e.Feed)
			if err != nil {
				perErr[i] = err
				return nil
			}
			fetchedAt := now()
			articles := make([]model.RawNews, 0, len(items))
			for _, it := range items {
				articles = append(articles, Normalize(it, e, fetchedAt))
			}
			perSource[i] = articles
			return nil
		})
	}
	_ = g.Wait()

	for i, e := range entries {
		if err := perErr[i]; err != nil {
			metrics.SourceFetchesTotal.WithLabelValues(string(e.Country), e.Name, "error").Inc()
			c.Log.Warn("Failed to crawl source",
				zap.String("source", e.Name),
				zap.String("url", e.URL),
				zap.Error(err),
			)
			res.SourceErrors = append(res.SourceErrors, &SourceError{Country: e.Country, Source: e.Name, Err: err})
			continue
		}
		metrics.SourceFetchesTotal.WithLabelValues(string(e.Country), e.Name, "success").Inc()
		c.Log.Debug("Crawled source",
			zap.String("source", e.Name),
			zap.Int("items", len(perSource[i])),
		)
		res.Articles = append(res.Articles, perSource[i]...)
	}

	if err := ctx.Err(); err != nil {
		return res, fmt.Errorf("crawl %s: %w", c.Registry.Country, err)
	}
	return res, nil
}
