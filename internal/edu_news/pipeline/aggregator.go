package pipeline

import (
	"context"
	"fmt"
	"time"

	"edu-news/internal/edu_news/crawler"
	"edu-news/internal/edu_news/metrics"
	"edu-news/internal/edu_news/model"

	"go.uber.org/zap"
)

// CountrySource crawls every feed of one country.
type CountrySource interface {
	Country() model.Country
	CrawlAll(ctx context.Context) (crawler.CountryResult, error)
}

// Publisher announces a finished run.
type Publisher interface {
	PublishCrawlSummary(ctx context.Context, s model.CrawlSummary) error
}

type Aggregator struct {
	Log       *zap.Logger
	Countries []CountrySource // crawled one after another, in this order
	Gateway   *Gateway
	Publisher Publisher // optional
}

func NewAggregator(log *zap.Logger, gw *Gateway, countries ...CountrySource) *Aggregator {
	return &Aggregator{
		Log:       log.With(zap.String("component", "aggregator")),
		Countries: countries,
		Gateway:   gw,
	}
}

// CrawlAllNews runs one aggregation. It never panics and never fails: every
// problem ends up in the summary's Errors, and exactly one crawl log is
// written per call.
func (a *Aggregator) CrawlAllNews(ctx context.Context) (summary model.CrawlSummary) {
	start := time.Now()
	summary.Errors = []string{}

	defer func() {
		if r := recover(); r != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("aggregation aborted: %v", r))
		}
		summary.Success = len(summary.Errors) == 0

		a.Gateway.LogRun(ctx, summary)
		a.publish(ctx, summary)

		metrics.CrawlRunsTotal.WithLabelValues(runStatus(summary.Success)).Inc()
		metrics.CrawlRunDuration.Observe(time.Since(start).Seconds())
		a.Log.Info("Crawl finished",
			zap.Bool("success", summary.Success),
			zap.Int("totalNews", summary.TotalNews),
			zap.Int("newNews", summary.NewNews),
			zap.Int("errors", len(summary.Errors)),
			zap.Duration("took", time.Since(start)),
		)
	}()

	a.Log.Info("Crawl started", zap.Int("countries", len(a.Countries)))

	var all []model.RawNews
	for _, c := range a.Countries {
		res, err := a.crawlCountry(ctx, c)
		for _, se := range res.SourceErrors {
			summary.Errors = append(summary.Errors, se.Error())
		}
		if err != nil {
			msg := fmt.Sprintf("%s crawl failed: %v", c.Country(), err)
			a.Log.Error("Country crawl failed", zap.String("country", string(c.Country())), zap.Error(err))
			summary.Errors = append(summary.Errors, msg)
		}
		a.Log.Info("Collected news",
			zap.String("country", string(c.Country())),
			zap.Int("articles", len(res.Articles)),
			zap.Int("sourceErrors", len(res.SourceErrors)),
		)
		all = append(all, res.Articles...)
	}

	unique := Deduplicate(all)
	summary.TotalNews = len(unique)
	for _, n := range unique {
		metrics.ArticlesCollected.WithLabelValues(string(n.Country)).Inc()
	}
	a.Log.Info("Deduplicated news", zap.Int("collected", len(all)), zap.Int("unique", len(unique)))

	n, err := a.Gateway.Save(ctx, unique)
	summary.NewNews = n
	metrics.ArticlesInserted.Add(float64(n))
	if err != nil {
		a.Log.Error("Failed to persist news", zap.Error(err))
		summary.Errors = append(summary.Errors, fmt.Sprintf("persist failed: %v", err))
	}
	return summary
}

// crawlCountry turns a panic in the country crawl into an error.
func (a *Aggregator) crawlCountry(ctx context.Context, c CountrySource) (res crawler.CountryResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return c.CrawlAll(ctx)
}

func (a *Aggregator) publish(ctx context.Context, s model.CrawlSummary) {
	if a.Publisher == nil {
		return
	}
	if err := a.Publisher.PublishCrawlSummary(ctx, s); err != nil {
		a.Log.Warn("Failed to publish crawl summary", zap.Error(err))
	}
}

// Deduplicate keeps the first article for every url, preserving order.
func Deduplicate(articles []model.RawNews) []model.RawNews {
	seen := make(map[string]struct{}, len(articles))
	out := make([]model.RawNews, 0, len(articles))
	for _, a := range articles {
		if _, ok := seen[a.URL]; ok {
			continue
		}
		seen[a.URL] = struct{}{}
		out = append(out, a)
	}
	return out
}

func runStatus(ok bool) string {
	if ok {
		return "success"
	}
	return "partial"
}
