package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"edu-news/internal/edu_news/model"

	"go.uber.org/zap"
)

// Crawler is one aggregation run.
type Crawler interface {
	CrawlAllNews(ctx context.Context) model.CrawlSummary
}

var DefaultAnchors = []int{0, 3, 6, 9, 12, 15, 18, 21}

const baseRetryDelay = 15 * time.Second

// Worker runs a crawl at start and then at every anchor hour in Location.
// A run that collected nothing and reported errors is retried in the
// background up to MaxRetries times.
type Worker struct {
	Log        *zap.Logger
	Crawler    Crawler
	Location   *time.Location
	Anchors    []int // local hours
	MaxRetries int
	RetryDelay time.Duration // first retry delay, doubled each attempt

	mu      sync.Mutex
	retryWg sync.WaitGroup
}

// nextAnchor returns the first anchor at or after now, as UTC.
func nextAnchor(now time.Time, loc *time.Location, anchors []int) time.Time {
	if len(anchors) == 0 {
		anchors = DefaultAnchors
	}
	hours := append([]int(nil), anchors...)
	sort.Ints(hours)

	local := now.In(loc)
	for _, h := range hours {
		t := time.Date(local.Year(), local.Month(), local.Day(), h, 0, 0, 0, loc)
		if !t.Before(local) {
			return t.UTC()
		}
	}
	// all passed -> first anchor tomorrow
	next := time.Date(local.Year(), local.Month(), local.Day()+1, hours[0], 0, 0, 0, loc)
	return next.UTC()
}

// retryDelay is base * 2^(n-1).
func retryDelay(base time.Duration, n int) time.Duration {
	if base <= 0 {
		base = baseRetryDelay
	}
	d := base
	for i := 1; i < n; i++ {
		d *= 2
	}
	return d
}

func (w *Worker) Run(ctx context.Context) {
	loc := w.Location
	if loc == nil {
		loc = time.Local
	}

	w.runOnce(ctx)

	for {
		next := nextAnchor(time.Now(), loc, w.Anchors)
		sleep := time.Until(next)
		if sleep < 0 {
			sleep = 0
		}
		w.Log.Info("Next crawl scheduled", zap.Time("at", next.In(loc)))

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			w.Log.Info("Waiting for retry goroutines to complete...")
			w.retryWg.Wait()
			w.Log.Info("Scheduler stopped")
			return
		case <-timer.C:
			w.runOnce(ctx)
		}
	}
}

func (w *Worker) runOnce(ctx context.Context) {
	if w.crawl(ctx) || w.MaxRetries <= 0 {
		return
	}

	w.retryWg.Add(1)
	go func() {
		defer w.retryWg.Done()
		w.retryLoop(ctx)
	}()
}

func (w *Worker) retryLoop(ctx context.Context) {
	for attempt := 1; attempt <= w.MaxRetries; attempt++ {
		delay := retryDelay(w.RetryDelay, attempt)
		w.Log.Info("Retrying crawl", zap.Int("attempt", attempt), zap.Duration("delay", delay))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		if w.crawl(ctx) {
			return
		}
	}
	w.Log.Error("Crawl still failing after retries", zap.Int("maxRetries", w.MaxRetries))
}

// crawl reports false only for a run that stored nothing because every
// source failed. An overlapping run is skipped and counts as done.
func (w *Worker) crawl(ctx context.Context) bool {
	if !w.mu.TryLock() {
		w.Log.Warn("Previous crawl still running, skipping")
		return true
	}
	defer w.mu.Unlock()

	summary := w.Crawler.CrawlAllNews(ctx)
	if summary.Success {
		return true
	}
	w.Log.Warn("Crawl completed with errors",
		zap.Int("totalNews", summary.TotalNews),
		zap.Int("newNews", summary.NewNews),
		zap.Strings("errors", summary.Errors),
	)
	return summary.TotalNews > 0
}
