package store

import (
	"context"
	"os"
	"testing"
	"time"

	"edu-news/internal/edu_news/helper"
	"edu-news/internal/edu_news/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real server only when MONGO_TEST_URI is set.
func TestMongoStore_Integration(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbName := "edu_news_test_" + uuid.NewString()[:8]
	stores, err := helper.ConnectMongo(ctx, helper.MongoOptions{URI: uri, DBName: dbName})
	require.NoError(t, err)
	s := NewMongoStore(stores)
	defer func() {
		_ = stores.DB.Drop(context.Background())
		_ = s.Close(context.Background())
	}()

	now := time.Now().UTC().Truncate(time.Millisecond)
	n, err := s.InsertRawNews(ctx, []model.RawNews{
		rawNews("a", "https://x/a", now),
		rawNews("b", "https://x/b", now.Add(time.Second)),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// duplicate url slips past the existence check: rejected, not counted, no error
	n, err = s.InsertRawNews(ctx, []model.RawNews{
		rawNews("a2", "https://x/a", now),
		rawNews("c", "https://x/c", now),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ok, err := s.ExistsByURL(ctx, "https://x/b")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.TodayNews(ctx, model.NewsQuery{Since: now.Add(-time.Minute)})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "b", got[0].ID)

	require.NoError(t, s.UpdateStatus(ctx, "c", model.StatusSelected, model.StatusPending))
	assert.ErrorIs(t, s.UpdateStatus(ctx, "c", model.StatusSelected, model.StatusPending), ErrConflict)
	assert.ErrorIs(t, s.UpdateStatus(ctx, "nope", model.StatusSelected), ErrNotFound)
	assert.ErrorIs(t, s.UpdateStatus(ctx, "nope", model.StatusSelected, model.StatusPending), ErrNotFound)

	f := model.FeynmanArticle{ID: uuid.NewString(), RawNewsID: "c", Status: model.ArticleDraft}
	require.NoError(t, s.SaveFeynman(ctx, f))
	byRaw, err := s.FeynmanByRawNews(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, f.ID, byRaw.ID)
	f.ID = uuid.NewString()
	assert.ErrorIs(t, s.SaveFeynman(ctx, f), ErrConflict)

	require.NoError(t, s.AppendCrawlLog(ctx, model.CrawlLog{ID: uuid.NewString(), Source: model.CrawlSourceAll, CrawledAt: now, Success: true}))
	logs, err := s.ListCrawlLogs(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}
