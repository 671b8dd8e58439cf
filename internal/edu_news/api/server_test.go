package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"edu-news/internal/edu_news/feynman"
	"edu-news/internal/edu_news/model"
	"edu-news/internal/edu_news/queue"
	"edu-news/internal/edu_news/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubCrawler struct{ calls int }

func (c *stubCrawler) CrawlAllNews(context.Context) model.CrawlSummary {
	c.calls++
	return model.CrawlSummary{Success: true, TotalNews: 4, NewNews: 2, Errors: []string{}}
}

type stubProcessor struct {
	err  error
	lang string
}

func (p *stubProcessor) Process(_ context.Context, rawID, lang string) (*model.FeynmanArticle, error) {
	p.lang = lang
	if p.err != nil {
		return nil, p.err
	}
	return &model.FeynmanArticle{ID: "f1", RawNewsID: rawID, Status: model.ArticleDraft}, nil
}

var fixedNow = time.Date(2026, 5, 4, 6, 0, 0, 0, time.UTC) // 15:00 KST

func newTestServer(t *testing.T) (*Server, *store.BadgerStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.NewBadgerStore("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	seed := []model.RawNews{
		{ID: "kr1", Title: "AI 교육", URL: "https://a.kr/1", Category: model.CategoryAIEducation, Country: model.CountryKR, Status: model.StatusPending, CrawledAt: fixedNow.Add(-time.Hour), Keywords: []string{}},
		{ID: "us1", Title: "AI news", URL: "https://a.com/1", Category: model.CategoryAI, Country: model.CountryUS, Status: model.StatusPending, CrawledAt: fixedNow.Add(-2 * time.Hour), Keywords: []string{}},
		{ID: "old", Title: "old", URL: "https://a.com/old", Category: model.CategoryAI, Country: model.CountryUS, Status: model.StatusPending, CrawledAt: fixedNow.Add(-48 * time.Hour), Keywords: []string{}},
	}
	n, err := st.InsertRawNews(context.Background(), seed)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	return &Server{
		Log:       zap.NewNop(),
		Store:     st,
		Crawler:   &stubCrawler{},
		Processor: &stubProcessor{},
		Now:       func() time.Time { return fixedNow },
	}, st
}

func do(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	w := do(s.Router(), http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestTodayNews(t *testing.T) {
	s, _ := newTestServer(t)
	r := s.Router()

	var body struct {
		Data  []model.RawNews `json:"data"`
		Count int             `json:"count"`
	}

	w := do(r, http.MethodGet, "/news/today")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, 2, body.Count)
	assert.Equal(t, "kr1", body.Data[0].ID) // newest first

	w = do(r, http.MethodGet, "/news/today?country=US")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "us1", body.Data[0].ID)

	w = do(r, http.MethodGet, "/news/today?category=Sports")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetNews(t *testing.T) {
	s, _ := newTestServer(t)
	r := s.Router()

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/news/kr1").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/news/nope").Code)
}

func TestSelectNews_Enqueues(t *testing.T) {
	s, st := newTestServer(t)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	q, err := queue.NewRedisQueue(context.Background(), mr.Addr(), "", 0, "")
	require.NoError(t, err)
	defer q.Close()
	s.Queue = q

	w := do(s.Router(), http.MethodPost, "/news/us1/select?lang=ko")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"queued":true`)

	n, err := st.GetRawNews(context.Background(), "us1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusSelected, n.Status)

	job, err := q.Pop(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "us1", job.RawNewsID)
	assert.Equal(t, "ko", job.Lang)

	assert.Equal(t, http.StatusNotFound, do(s.Router(), http.MethodPost, "/news/nope/select").Code)

	// already selected
	assert.Equal(t, http.StatusConflict, do(s.Router(), http.MethodPost, "/news/us1/select").Code)
	depth, err := q.Len(context.Background())
	require.NoError(t, err)
	assert.Zero(t, depth)
}

func TestSelectNews_RejectsUnknownLang(t *testing.T) {
	s, st := newTestServer(t)

	w := do(s.Router(), http.MethodPost, "/news/kr1/select?lang=fr")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	n, err := st.GetRawNews(context.Background(), "kr1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, n.Status)
}

type staticProvider struct{ calls int }

func (p *staticProvider) Name() string { return "static" }

func (p *staticProvider) Complete(context.Context, feynman.Request) (feynman.Completion, error) {
	p.calls++
	return feynman.Completion{Content: `{"feynmanTitle":"Why grading bots guess","feynmanContent":"Body","questions":["a","b","c"]}`}, nil
}

func TestLifecycleDoesNotRunBackwards(t *testing.T) {
	s, st := newTestServer(t)
	provider := &staticProvider{}
	s.Processor = feynman.NewService(zap.NewNop(), st, feynman.NewTransformer(zap.NewNop(), provider, nil))
	r := s.Router()
	ctx := context.Background()

	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/news/kr1/feynman").Code)
	n, err := st.GetRawNews(ctx, "kr1")
	require.NoError(t, err)
	require.Equal(t, model.StatusProcessed, n.Status)

	require.NoError(t, st.UpdateStatus(ctx, "kr1", model.StatusPublished, model.StatusProcessed))

	assert.Equal(t, http.StatusConflict, do(r, http.MethodPost, "/news/kr1/select").Code)
	assert.Equal(t, http.StatusConflict, do(r, http.MethodPost, "/news/kr1/feynman").Code)
	assert.Equal(t, 1, provider.calls)

	n, err = st.GetRawNews(ctx, "kr1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPublished, n.Status)
}

func TestGenerate(t *testing.T) {
	s, _ := newTestServer(t)
	p := s.Processor.(*stubProcessor)
	r := s.Router()

	w := do(r, http.MethodPost, "/news/kr1/feynman?lang=en")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "en", p.lang)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/news/kr1/feynman?lang=fr").Code)

	p.err = fmt.Errorf("load raw news x: %w", store.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPost, "/news/x/feynman").Code)

	p.err = fmt.Errorf("raw news kr1 is processed: %w", store.ErrConflict)
	assert.Equal(t, http.StatusConflict, do(r, http.MethodPost, "/news/kr1/feynman").Code)

	p.err = &feynman.GenerationError{PrimaryErr: errors.New("timeout"), FallbackErr: feynman.ErrInvalidArticle}
	assert.Equal(t, http.StatusBadGateway, do(r, http.MethodPost, "/news/kr1/feynman").Code)
}

func TestGetFeynman(t *testing.T) {
	s, st := newTestServer(t)
	require.NoError(t, st.SaveFeynman(context.Background(), model.FeynmanArticle{ID: "f9", RawNewsID: "kr1", Status: model.ArticleDraft}))

	r := s.Router()
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/feynman/f9").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/feynman/nope").Code)
}

func TestCrawlAndLogs(t *testing.T) {
	s, st := newTestServer(t)
	r := s.Router()

	w := do(r, http.MethodPost, "/crawl")
	require.Equal(t, http.StatusOK, w.Code)
	var summary model.CrawlSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.NewNews)
	assert.Equal(t, 1, s.Crawler.(*stubCrawler).calls)

	require.NoError(t, st.AppendCrawlLog(context.Background(), model.CrawlLog{ID: "l1", Source: model.CrawlSourceAll, CrawledAt: fixedNow, Success: true}))
	w = do(r, http.MethodGet, "/crawl-logs?limit=5")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"l1"`)
}
