package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"edu-news/internal/edu_news/model"
	"edu-news/internal/edu_news/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const logWriteTimeout = 5 * time.Second

// Gateway moves a run's articles into the store and records the run.
type Gateway struct {
	Log   *zap.Logger
	Store store.Store
	Now   func() time.Time
}

func NewGateway(log *zap.Logger, st store.Store) *Gateway {
	return &Gateway{
		Log:   log.With(zap.String("component", "gateway")),
		Store: st,
		Now:   time.Now,
	}
}

func (g *Gateway) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

// Save checks each article by url and inserts the absent ones in one batch.
// The check and the insert are separate store calls; two concurrent runs can
// both pass the check, and the loser's duplicate is rejected by the store
// without being counted.
func (g *Gateway) Save(ctx context.Context, articles []model.RawNews) (int, error) {
	fresh := make([]model.RawNews, 0, len(articles))
	for _, a := range articles {
		exists, err := g.Store.ExistsByURL(ctx, a.URL)
		if err != nil {
			return 0, fmt.Errorf("check url %s: %w", a.URL, err)
		}
		if !exists {
			fresh = append(fresh, a)
		}
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	crawledAt := g.now().UTC()
	for i := range fresh {
		fresh[i].CrawledAt = crawledAt
	}

	n, err := g.Store.InsertRawNews(ctx, fresh)
	if err != nil {
		return n, fmt.Errorf("batch insert: %w", err)
	}
	g.Log.Info("Saved raw news",
		zap.Int("checked", len(articles)),
		zap.Int("candidates", len(fresh)),
		zap.Int("inserted", n),
	)
	return n, nil
}

// LogRun appends one crawl log. Failures are logged only.
func (g *Gateway) LogRun(ctx context.Context, s model.CrawlSummary) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), logWriteTimeout)
	defer cancel()

	entry := model.CrawlLog{
		ID:        uuid.NewString(),
		Source:    model.CrawlSourceAll,
		CrawledAt: g.now().UTC(),
		Success:   s.Success,
		NewsCount: s.NewNews,
		Error:     strings.Join(s.Errors, "; "),
	}
	if err := g.Store.AppendCrawlLog(ctx, entry); err != nil {
		g.Log.Warn("Failed to append crawl log", zap.Error(err))
	}
}
