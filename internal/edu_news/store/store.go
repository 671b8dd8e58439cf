package store

import (
	"context"
	"errors"

	"edu-news/internal/edu_news/model"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict is a write refused because of the current state: a status
	// change out of order or a second derived article for one raw article.
	ErrConflict = errors.New("conflict")
)

// Store is the document store the pipeline writes to and the API reads from.
type Store interface {
	// ExistsByURL reports whether a raw article with this url is stored.
	ExistsByURL(ctx context.Context, url string) (bool, error)
	// InsertRawNews writes all articles in one batch and returns how many were
	// actually inserted. Articles whose id or url is already taken are skipped.
	InsertRawNews(ctx context.Context, articles []model.RawNews) (int, error)
	AppendCrawlLog(ctx context.Context, log model.CrawlLog) error

	TodayNews(ctx context.Context, q model.NewsQuery) ([]model.RawNews, error)
	GetRawNews(ctx context.Context, id string) (*model.RawNews, error)
	// UpdateStatus sets the raw article's status. When from is given the
	// current status must be one of them, otherwise ErrConflict.
	UpdateStatus(ctx context.Context, id string, to model.Status, from ...model.Status) error
	ListCrawlLogs(ctx context.Context, limit int) ([]model.CrawlLog, error)

	// SaveFeynman returns ErrConflict when rawNewsId already has an article.
	SaveFeynman(ctx context.Context, a model.FeynmanArticle) error
	GetFeynman(ctx context.Context, id string) (*model.FeynmanArticle, error)
	FeynmanByRawNews(ctx context.Context, rawID string) (*model.FeynmanArticle, error)

	Close(ctx context.Context) error
}

func queryLimit(n int) int {
	if n <= 0 || n > model.DefaultQueryLimit {
		return model.DefaultQueryLimit
	}
	return n
}
